package chat

import (
	"context"
	"strings"
	"time"

	chatmodel "chatapp/module/chat/model"
	"chatapp/module/chat/store"
	"chatapp/logger"
	"chatapp/tools/errs"
	"chatapp/tools/ids"
)

// Router is the delivery core: it persists the durable side effect of each
// action, then pushes a best-effort notification to the affected
// counterpart. Persistence strictly precedes any push, so a failed write
// never produces a false notification; an unreachable recipient never
// fails the operation.
type Router struct {
	conv   store.ConversationStore
	social store.SocialStore
	reg    *Registry

	// RequireFriendship gates SendMessage on an existing friendship. The
	// original backend accepted sends between any two users; default off.
	requireFriendship bool
}

func NewRouter(conv store.ConversationStore, social store.SocialStore, reg *Registry, requireFriendship bool) *Router {
	return &Router{conv: conv, social: social, reg: reg, requireFriendship: requireFriendship}
}

func (r *Router) push(userID string, kind EventKind, payload any) {
	data, err := MarshalEvent(kind, payload)
	if err != nil {
		logger.Errorf("[router] %v", err)
		return
	}
	if !r.reg.Push(userID, data) {
		logger.Debug("[router] push skipped, user offline: " + userID)
	}
}

// SendMessage persists a new message and notifies the recipient if online.
// The persisted message is returned so the sender's client can reconcile
// its optimistic local copy.
func (r *Router) SendMessage(ctx context.Context, senderID, recipientID, content string) (*chatmodel.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errs.ErrInvalidArgument.WithDetail("empty content")
	}
	if _, err := r.social.GetUser(ctx, recipientID); err != nil {
		return nil, err
	}
	if r.requireFriendship {
		friends, err := r.social.AreFriends(ctx, senderID, recipientID)
		if err != nil {
			return nil, err
		}
		if !friends {
			return nil, errs.ErrForbidden.WithDetail("not friends")
		}
	}

	msg := &chatmodel.Message{
		ID:          ids.GenerateString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.conv.Insert(ctx, msg); err != nil {
		return nil, err
	}

	r.push(recipientID, EvtReceiveMessage, msg)
	return msg, nil
}

// EditMessage updates content (sender only) and notifies the recipient.
func (r *Router) EditMessage(ctx context.Context, requesterID, messageID, content string) (*chatmodel.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errs.ErrInvalidArgument.WithDetail("empty content")
	}
	msg, err := r.conv.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != requesterID {
		return nil, errs.ErrForbidden.WithDetail("only the sender may edit")
	}

	updated, err := r.conv.UpdateContent(ctx, messageID, content)
	if err != nil {
		return nil, err
	}

	r.push(msg.RecipientID, EvtMessageEdited, updated)
	return updated, nil
}

// DeleteMessage hard-deletes (sender only) and notifies the recipient.
func (r *Router) DeleteMessage(ctx context.Context, requesterID, messageID string) error {
	msg, err := r.conv.Get(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != requesterID {
		return errs.ErrForbidden.WithDetail("only the sender may delete")
	}

	if err := r.conv.Delete(ctx, messageID); err != nil {
		return err
	}

	r.push(msg.RecipientID, EvtMessageDeleted, MessageDeletedPayload{MessageID: messageID})
	return nil
}

// NotifyFriendRequestSent runs after the social graph durably recorded a
// pending request.
func (r *Router) NotifyFriendRequestSent(ctx context.Context, senderID, recipientID string) {
	sender, err := r.social.GetUser(ctx, senderID)
	if err != nil {
		logger.Infof("[router] notify request sent: %v", err)
		return
	}
	r.push(recipientID, EvtNewFriendRequest, NewFriendRequestPayload{From: sender.Username})
}

// NotifyFriendRequestAccepted tells the original sender their request went
// through, with the new friend's public identity.
func (r *Router) NotifyFriendRequestAccepted(ctx context.Context, senderID, recipientID string) {
	recipient, err := r.social.GetUser(ctx, recipientID)
	if err != nil {
		logger.Infof("[router] notify request accepted: %v", err)
		return
	}
	r.push(senderID, EvtRequestAccepted, RequestAcceptedPayload{NewFriend: recipient.Public()})
}

// RemoveFriend tears down the friendship: unlink both friend lists, drop
// the originating request record, cascade-delete the conversation, and
// only then notify the removed side. The cascade must complete before the
// push so a client refreshing on friend_removed never sees stale messages.
func (r *Router) RemoveFriend(ctx context.Context, requesterID, friendID string) error {
	if _, err := r.social.GetUser(ctx, friendID); err != nil {
		return err
	}
	if err := r.social.RemoveFriendship(ctx, requesterID, friendID); err != nil {
		return err
	}
	if err := r.social.DeleteRequestByPair(ctx, requesterID, friendID); err != nil {
		return err
	}
	if err := r.conv.DeleteByPair(ctx, requesterID, friendID); err != nil {
		return err
	}

	r.push(friendID, EvtFriendRemoved, FriendRemovedPayload{RemovedByID: requesterID})
	return nil
}

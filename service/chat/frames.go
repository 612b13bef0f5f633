package chat

import (
	"encoding/json"
	"fmt"

	usermodel "chatapp/module/user/model"
)

// Wire protocol: every frame is a JSON object {type, payload}. Client to
// server: authenticate, send_message. Everything else flows server to
// client.
type EventKind string

const (
	EvtAuthenticate EventKind = "authenticate"
	EvtSendMessage  EventKind = "send_message"

	EvtMessageSent      EventKind = "message_sent" // echo of the persisted message to the sender
	EvtReceiveMessage   EventKind = "receive_message"
	EvtMessageEdited    EventKind = "message_edited"
	EvtMessageDeleted   EventKind = "message_deleted"
	EvtNewFriendRequest EventKind = "new_friend_request"
	EvtRequestAccepted  EventKind = "request_accepted"
	EvtFriendRemoved    EventKind = "friend_removed"
	EvtUserOnline       EventKind = "user_online"
	EvtUserOffline      EventKind = "user_offline"
)

type Frame struct {
	Type    EventKind       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func ParseFrame(raw []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("unmarshal frame: %w", err)
	}
	if f.Type == "" {
		return nil, fmt.Errorf("frame missing type")
	}
	return &f, nil
}

// MarshalEvent builds an outbound frame. Marshal errors can only come from
// programmer mistakes (unmarshalable payload types), so callers treat them
// as fatal for the triggering operation.
func MarshalEvent(kind EventKind, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return json.Marshal(Frame{Type: kind, Payload: body})
}

// ---- client->server payloads ----

type AuthPayload struct {
	Username string `json:"username"`
}

type SendMessagePayload struct {
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

// ---- server->client payloads ----

type PresencePayload struct {
	Username string `json:"username"`
}

type MessageDeletedPayload struct {
	MessageID string `json:"messageId"`
}

type NewFriendRequestPayload struct {
	From string `json:"from"` // sender's username
}

type RequestAcceptedPayload struct {
	NewFriend usermodel.PublicUser `json:"newFriend"`
}

type FriendRemovedPayload struct {
	RemovedByID string `json:"removedById"`
}

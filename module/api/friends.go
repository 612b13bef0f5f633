package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	midsec "chatapp/middleware/security"
	chatmodel "chatapp/module/chat/model"
	"chatapp/tools/errs"
	"chatapp/tools/ids"
)

func (a *API) handleSendFriendRequest(c *gin.Context) {
	var in struct {
		RecipientID string `json:"recipientId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.RecipientID == "" {
		fail(c, errs.ErrInvalidArgument.WithDetail("recipientId is required"))
		return
	}
	ctx := c.Request.Context()
	uid := midsec.UserID(c)
	if in.RecipientID == uid {
		fail(c, errs.ErrInvalidArgument.WithDetail("cannot befriend yourself"))
		return
	}
	if _, err := a.social.GetUser(ctx, in.RecipientID); err != nil {
		fail(c, err)
		return
	}

	req := &chatmodel.FriendRequest{
		ID:          ids.GenerateString(),
		SenderID:    uid,
		RecipientID: in.RecipientID,
		Status:      chatmodel.RequestPending,
		CreateTime:  time.Now().UTC(),
	}
	if err := a.social.CreateFriendRequest(ctx, req); err != nil {
		fail(c, err)
		return
	}
	// request is durable; now the realtime nudge
	a.router.NotifyFriendRequestSent(ctx, uid, in.RecipientID)
	c.JSON(http.StatusCreated, gin.H{"message": "friend request sent"})
}

func (a *API) handlePendingRequests(c *gin.Context) {
	ctx := c.Request.Context()
	reqs, err := a.social.ListPendingRequests(ctx, midsec.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(reqs))
	for _, r := range reqs {
		sender, err := a.social.GetUser(ctx, r.SenderID)
		if err != nil {
			continue
		}
		out = append(out, gin.H{
			"id":     r.ID,
			"sender": sender.Public(),
			"status": r.Status,
		})
	}
	c.JSON(http.StatusOK, out)
}

// loadAddressedRequest fetches a request and checks the requester is the
// addressed recipient; only they may accept or decline.
func (a *API) loadAddressedRequest(c *gin.Context) (*chatmodel.FriendRequest, bool) {
	req, err := a.social.GetFriendRequest(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	if req.RecipientID != midsec.UserID(c) {
		fail(c, errs.ErrForbidden.WithDetail("not the addressed recipient"))
		return nil, false
	}
	if req.Status != chatmodel.RequestPending {
		// pending -> accepted|declined are terminal, no second transition
		fail(c, errs.ErrConflict.WithDetail("request already "+req.Status))
		return nil, false
	}
	return req, true
}

func (a *API) handleAcceptRequest(c *gin.Context) {
	req, ok := a.loadAddressedRequest(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := a.social.SetRequestStatus(ctx, req.ID, chatmodel.RequestAccepted); err != nil {
		fail(c, err)
		return
	}
	if err := a.social.AddFriendship(ctx, req.SenderID, req.RecipientID); err != nil {
		fail(c, err)
		return
	}
	a.router.NotifyFriendRequestAccepted(ctx, req.SenderID, req.RecipientID)
	c.JSON(http.StatusOK, gin.H{"message": "friend request accepted"})
}

func (a *API) handleDeclineRequest(c *gin.Context) {
	req, ok := a.loadAddressedRequest(c)
	if !ok {
		return
	}
	if err := a.social.SetRequestStatus(c.Request.Context(), req.ID, chatmodel.RequestDeclined); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend request declined"})
}

func (a *API) handleRemoveFriend(c *gin.Context) {
	var in struct {
		FriendID string `json:"friendId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.FriendID == "" {
		fail(c, errs.ErrInvalidArgument.WithDetail("friendId is required"))
		return
	}
	if err := a.router.RemoveFriend(c.Request.Context(), midsec.UserID(c), in.FriendID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend and conversation removed"})
}

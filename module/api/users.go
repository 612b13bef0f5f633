package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	midsec "chatapp/middleware/security"
	usermodel "chatapp/module/user/model"
)

func (a *API) handleListUsers(c *gin.Context) {
	users, err := a.social.ListUsers(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]usermodel.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	c.JSON(http.StatusOK, out)
}

// handleMe returns the requester with their friend list populated to
// public identities. Friend ids that no longer resolve are skipped.
func (a *API) handleMe(c *gin.Context) {
	ctx := c.Request.Context()
	u, err := a.social.GetUser(ctx, midsec.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	friends := make([]usermodel.PublicUser, 0, len(u.Friends))
	for _, fid := range u.Friends {
		f, err := a.social.GetUser(ctx, fid)
		if err != nil {
			continue
		}
		friends = append(friends, f.Public())
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       u.ID,
		"username": u.Username,
		"friends":  friends,
	})
}

package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	midsec "chatapp/middleware/security"
	"chatapp/module/chat/store"
	userservice "chatapp/module/user/service"
	"chatapp/service/chat"
	"chatapp/tools/errs"
	jwtlib "chatapp/tools/security"
)

// API is the HTTP collaborator surface around the delivery core. Every
// route that mutates core state routes through the Router so the affected
// counterpart gets its realtime notification.
type API struct {
	users  *userservice.Service
	social store.SocialStore
	conv   store.ConversationStore
	router *chat.Router
	jwt    jwtlib.Options
}

func New(users *userservice.Service, social store.SocialStore, conv store.ConversationStore, router *chat.Router, jwt jwtlib.Options) *API {
	return &API{users: users, social: social, conv: conv, router: router, jwt: jwt}
}

func (a *API) RegisterRoutes(r *gin.Engine, gw *chat.Gateway) {
	r.GET("/ws", gw.HandleWS)

	g := r.Group("/api")
	g.POST("/register", a.handleRegister)
	g.POST("/login", a.handleLogin)

	auth := g.Group("", midsec.Middleware(a.jwt))
	auth.GET("/users", a.handleListUsers)
	auth.GET("/users/me", a.handleMe)

	auth.POST("/friend-requests/send", a.handleSendFriendRequest)
	auth.GET("/friend-requests/pending", a.handlePendingRequests)
	auth.POST("/friend-requests/:requestId/accept", a.handleAcceptRequest)
	auth.POST("/friend-requests/:requestId/decline", a.handleDeclineRequest)
	auth.POST("/friends/remove", a.handleRemoveFriend)

	auth.GET("/messages/:friendId", a.handleMessageHistory)
	auth.PUT("/messages/:messageId", a.handleEditMessage)
	auth.DELETE("/messages/:messageId", a.handleDeleteMessage)
}

func fail(c *gin.Context, err error) {
	msg := "internal error"
	var ce *errs.CodeError
	if errors.As(err, &ce) {
		msg = ce.Msg
		if ce.Detail != "" {
			msg = ce.Detail
		}
	}
	c.JSON(errs.HTTPStatus(err), gin.H{"message": msg})
}

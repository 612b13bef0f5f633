package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	midsec "chatapp/middleware/security"
	chatmodel "chatapp/module/chat/model"
	"chatapp/tools/errs"
)

func (a *API) handleMessageHistory(c *gin.Context) {
	msgs, err := a.conv.ListByPair(c.Request.Context(), midsec.UserID(c), c.Param("friendId"))
	if err != nil {
		fail(c, err)
		return
	}
	if msgs == nil {
		msgs = []chatmodel.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

func (a *API) handleEditMessage(c *gin.Context) {
	var in struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, errs.ErrInvalidArgument.WithDetail("content is required"))
		return
	}
	msg, err := a.router.EditMessage(c.Request.Context(), midsec.UserID(c), c.Param("messageId"), in.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (a *API) handleDeleteMessage(c *gin.Context) {
	if err := a.router.DeleteMessage(c.Request.Context(), midsec.UserID(c), c.Param("messageId")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}

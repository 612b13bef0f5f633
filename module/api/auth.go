package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatapp/tools/errs"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) handleRegister(c *gin.Context) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, errs.ErrInvalidArgument.WithDetail("username and password are required"))
		return
	}
	if _, err := a.users.Register(c.Request.Context(), in.Username, in.Password); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user registered"})
}

func (a *API) handleLogin(c *gin.Context) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, errs.ErrInvalidArgument.WithDetail("username and password are required"))
		return
	}
	token, u, err := a.users.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": u.Public()})
}

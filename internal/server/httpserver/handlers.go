package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lanzath/authapi/internal/server/services"
)

func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) signup(c *gin.Context) {
	var req services.SignupInput
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		validationFailed(c, map[string]string{"body": "The request body could not be parsed."})
		return
	}

	user, err := s.sessions.Signup(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (s *HTTPServer) login(c *gin.Context) {
	var req services.LoginInput
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		validationFailed(c, map[string]string{"body": "The request body could not be parsed."})
		return
	}

	res, err := s.sessions.Login(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) logout(c *gin.Context) {
	msg, err := s.sessions.Logout(c.Request.Context(), c.GetString(bearerKey))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: msg})
}

func (s *HTTPServer) user(c *gin.Context) {
	user, err := s.sessions.CurrentUser(c.Request.Context(), c.GetString(bearerKey))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

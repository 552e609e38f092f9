package handler

import (
	"net/http"

	"admin-backend/internal/auth/credentials"
	"admin-backend/internal/session"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID, err := h.credentialService.Register(
		c.Request.Context(),
		req.Email,
		req.Password,
		req.DisplayName,
	)

	if err != nil {
		switch err {
		case credentials.ErrAlreadyRegistered:
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	started, err := h.sessions.Start(c.Request.Context(), session.StartParams{
		UserID:      userID,
		Subject:     "local:" + userID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	session.SetCookies(c.Writer, started, h.cookieOpts)

	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}

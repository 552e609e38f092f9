package handler

import (
	"context"
	"net/http"

	"admin-backend/internal/session"

	"github.com/gin-gonic/gin"
)

// CredentialService is the local email+password fallback. Sessions it
// produces are indistinguishable from provider-issued ones.
type CredentialService interface {
	Register(ctx context.Context, email, password, displayName string) (userID string, err error)
	Authenticate(ctx context.Context, email, password string) (userID, displayName string, err error)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID, displayName, err := h.credentialService.Authenticate(
		c.Request.Context(),
		req.Email,
		req.Password,
	)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	started, err := h.sessions.Start(c.Request.Context(), session.StartParams{
		UserID:      userID,
		Subject:     "local:" + userID,
		Email:       req.Email,
		DisplayName: displayName,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	session.SetCookies(c.Writer, started, h.cookieOpts)

	c.JSON(http.StatusOK, gin.H{"status": "logged_in"})
}

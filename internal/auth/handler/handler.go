package handler

import (
	"net/http"

	"admin-backend/internal/auth/provider"
	"admin-backend/internal/directory"
	"admin-backend/internal/logger"
	"admin-backend/internal/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	providers         *provider.Registry
	sessions          *session.Service
	directory         directory.Directory
	credentialService CredentialService
	cookieOpts        session.CookieOptions
}

func NewHandler(
	registry *provider.Registry,
	sessions *session.Service,
	dir directory.Directory,
	credentials CredentialService,
	cookieOpts session.CookieOptions,
) *Handler {
	return &Handler{
		providers:         registry,
		sessions:          sessions,
		directory:         dir,
		credentialService: credentials,
		cookieOpts:        cookieOpts,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.callback)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/logout", h.Logout)
}

func (h *Handler) oauthLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state := generateState(c)
	_, codeChallenge := generatePKCE(c)

	authURL := p.AuthCodeURL(state, codeChallenge)
	c.Redirect(http.StatusFound, authURL)
}

func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	errParam := c.Query("error")
	errDesc := c.Query("error_description")

	if errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     errDesc,
		})
		c.Redirect(http.StatusFound, "/login")
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oidc callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing pkce verifier",
		})
		return
	}

	identity, err := p.ExchangeCode(
		c.Request.Context(),
		code,
		codeVerifier,
	)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	user, err := h.directory.FindOrCreate(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to resolve user",
		})
		return
	}

	started, err := h.sessions.Start(c.Request.Context(), session.StartParams{
		UserID:      user.ID,
		Subject:     identity.ProviderUserID,
		Email:       identity.Email,
		DisplayName: identity.Name,
		RawTags:     identity.RawTags,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create session",
		})
		return
	}

	session.SetCookies(c.Writer, started, h.cookieOpts)

	logger.Info("login succeeded", map[string]any{
		"user_id":  user.ID,
		"provider": providerName,
		"store":    started.SessionID != "",
		"ip":       c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{
		"status": "authenticated",
	})
}

func (h *Handler) Logout(c *gin.Context) {
	// Same candidate extraction as resolution, so logout works no matter
	// which transport carried the credential. Only store references are
	// revocable; a self-contained token just loses its cookie.
	if candidate, ok := session.ResolveCandidate(c.Request); ok {
		h.sessions.Destroy(c.Request.Context(), candidate)
	}

	// After a normal login both cookies are present and resolution picks
	// the token, which Destroy cannot revoke. The store half still has to
	// die here, or the sid stays resolvable until TTL.
	if sid, err := c.Request.Cookie(session.IDCookieName); err == nil && sid.Value != "" {
		h.sessions.Destroy(c.Request.Context(), sid.Value)
	}

	session.ClearCookies(c.Writer, h.cookieOpts)

	// Idempotent response
	c.Status(http.StatusNoContent)
}

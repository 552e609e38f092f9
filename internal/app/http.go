package app

import (
	"context"
	"net/http"

	"admin-backend/internal/auth/credentials"
	"admin-backend/internal/auth/handler"
	"admin-backend/internal/auth/provider"
	"admin-backend/internal/auth/provider/google"
	"admin-backend/internal/auth/provider/keycloak"
	"admin-backend/internal/config"
	"admin-backend/internal/directory"
	"admin-backend/internal/middleware"
	"admin-backend/internal/policy"
	"admin-backend/internal/session"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	var sessionStore session.Store
	if infra.Redis != nil {
		sessionStore = session.NewRedisStore(infra.Redis.Client)
	} else {
		memStore := session.NewMemoryStore()
		memStore.StartSweeper(cfg.SessionTTL / 24)
		sessionStore = memStore
	}

	userDirectory := directory.NewPostgresDirectory(infra.DB)

	elevationPolicy := policy.NewPostgresPolicy(infra.DB)
	if err := elevationPolicy.Seed(ctx, cfg.AdminEmails); err != nil {
		return nil, nil, err
	}

	sessions := session.NewService(
		sessionStore,
		userDirectory,
		elevationPolicy,
		cfg.SessionTTL,
		cfg.StoreTimeout,
	)

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	keycloakProvider, err := keycloak.New(
		ctx,
		cfg.KeycloakIssuer,
		cfg.KeycloakClientID,
		cfg.KeycloakRedirectURL,
		cfg.KeycloakPublicBaseURL,
	)
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewRegistry(
		googleProvider,
		keycloakProvider,
	)

	cookieOpts := session.CookieOptions{
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.CrossSiteEmbed {
		cookieOpts.SameSite = http.SameSiteNoneMode
	}

	authHandler := handler.NewHandler(
		registry,
		sessions,
		userDirectory,
		credentials.NewService(infra.DB),
		cookieOpts,
	)

	authMiddleware := middleware.NewAuthMiddleware(sessions)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireSession(authMiddleware))

	api.GET("/me", func(c *gin.Context) {
		ident, _ := middleware.IdentityFromContext(c.Request.Context())
		c.JSON(200, gin.H{
			"id":           ident.ID,
			"subject":      ident.Subject,
			"email":        ident.Email,
			"display_name": ident.DisplayName,
			"tags":         ident.Tags,
			"is_elevated":  ident.IsElevated,
		})
	})

	admin := router.Group("/admin")
	admin.Use(middleware.GinRequireElevated(authMiddleware))

	admin.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		if closer, ok := sessionStore.(*session.MemoryStore); ok {
			_ = closer.Close()
		}
		return infra.DB.Close()
	}, nil
}

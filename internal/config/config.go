package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	// RedisAddr selects the session store backend: when set, sessions are
	// kept in Redis; when empty, an in-process store is used instead.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// SessionTTL is the absolute session lifetime. It is shared by the
	// store's native expiry and the expiry embedded in issued tokens.
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	StoreTimeout time.Duration `env:"SESSION_STORE_TIMEOUT" envDefault:"2s"`

	// CrossSiteEmbed relaxes SameSite so the admin UI can run inside a
	// cross-origin iframe. Session cookies are always Secure; the __Host-
	// prefix leaves no choice.
	CrossSiteEmbed bool `env:"CROSS_SITE_EMBED" envDefault:"false"`

	// AdminEmails seeds the elevation policy table at startup.
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	KeycloakIssuer        string `env:"KEYCLOAK_ISSUER"`
	KeycloakClientID      string `env:"KEYCLOAK_CLIENT_ID"`
	KeycloakRedirectURL   string `env:"KEYCLOAK_REDIRECT_URL"`
	KeycloakPublicBaseURL string `env:"KEYCLOAK_PUBLIC_BASE_URL"`
}

func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

package app

import (
	"time"

	"github.com/estol/auth-service/internal/pkg/logger"
	"github.com/estol/auth-service/internal/platform/envutil"
	"github.com/estol/auth-service/internal/services"
)

type Config struct {
	Port       string
	BaseURL    string
	BcryptCost int
	SessionTTL time.Duration

	Google    services.OAuthConfig
	Microsoft services.OAuthConfig
}

func LoadConfig(log *logger.Logger) Config {
	port := envutil.String("PORT", "8080")
	baseURL := envutil.String("BASE_URL", "http://localhost:"+port)
	bcryptCost := envutil.Int("BCRYPT_COST", 10)
	sessionTTLSeconds := envutil.Int("SESSION_TTL", 86400)

	cfg := Config{
		Port:       port,
		BaseURL:    baseURL,
		BcryptCost: bcryptCost,
		SessionTTL: time.Duration(sessionTTLSeconds) * time.Second,
		Google: services.OAuthConfig{
			ClientID:     envutil.String("GOOGLE_CLIENT_ID", ""),
			ClientSecret: envutil.String("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  baseURL + "/auth/google/callback",
		},
		Microsoft: services.OAuthConfig{
			ClientID:     envutil.String("MICROSOFT_CLIENT_ID", ""),
			ClientSecret: envutil.String("MICROSOFT_CLIENT_SECRET", ""),
			RedirectURL:  baseURL + "/auth/microsoft/callback",
		},
	}

	if cfg.Google.ClientID == "" {
		log.Warn("GOOGLE_CLIENT_ID is not set, google login disabled")
	}
	if cfg.Microsoft.ClientID == "" {
		log.Warn("MICROSOFT_CLIENT_ID is not set, microsoft login disabled")
	}
	return cfg
}

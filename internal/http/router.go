package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/estol/auth-service/internal/http/handlers"
	httpMW "github.com/estol/auth-service/internal/http/middleware"
	"github.com/estol/auth-service/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthHandler    *httpH.AuthHandler
	UserHandler    *httpH.UserHandler
	HealthHandler  *httpH.HealthHandler
	AuthMiddleware *httpMW.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Federated login (public, browser-driven)
	if cfg.AuthHandler != nil {
		oauth := r.Group("/auth")
		{
			oauth.GET("/:provider", cfg.AuthHandler.OAuthRedirect)
			oauth.GET("/:provider/callback", cfg.AuthHandler.OAuthCallback)
		}
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}
	}

	return r
}

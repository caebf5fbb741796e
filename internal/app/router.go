package app

import (
	"github.com/gin-gonic/gin"

	httpserver "github.com/estol/auth-service/internal/http"
	"github.com/estol/auth-service/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return httpserver.NewRouter(httpserver.RouterConfig{
		Log:            log,
		AuthHandler:    handlers.Auth,
		UserHandler:    handlers.User,
		HealthHandler:  handlers.Health,
		AuthMiddleware: middleware.Auth,
	})
}

package app

import (
	httpH "github.com/estol/auth-service/internal/http/handlers"
	"github.com/estol/auth-service/internal/pkg/logger"
)

type Handlers struct {
	Auth   *httpH.AuthHandler
	User   *httpH.UserHandler
	Health *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:   httpH.NewAuthHandler(log, services.Registration, services.Sessions, services.Strategies, services.OAuthClients),
		User:   httpH.NewUserHandler(),
		Health: httpH.NewHealthHandler(),
	}
}

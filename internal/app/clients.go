package app

import (
	"fmt"

	redisclient "github.com/estol/auth-service/internal/clients/redis"
	"github.com/estol/auth-service/internal/pkg/logger"
)

type Clients struct {
	Sessions redisclient.SessionStore
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	store, err := redisclient.NewSessionStore(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis session store: %w", err)
	}
	return Clients{Sessions: store}, nil
}

func (c Clients) Close() {
	if c.Sessions != nil {
		c.Sessions.Close()
	}
}

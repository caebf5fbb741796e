package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/estol/auth-service/internal/pkg/logger"
	"github.com/estol/auth-service/internal/services"
)

type Services struct {
	Registration services.RegistrationService
	Sessions     services.SessionService
	Handles      services.UsernameResolver
	Linker       services.IdentityLinker

	// Strategies is the full verifier list, built once at startup; the
	// handler dispatches into it by name.
	Strategies   []services.LoginStrategy
	OAuthClients []services.OAuthClient
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	handles := services.NewUsernameResolver(repos.User)
	linker := services.NewIdentityLinker(repos.User, repos.UserIdentity, handles)
	registration := services.NewRegistrationService(repos.User)
	sessions := services.NewSessionService(repos.User, clients.Sessions, cfg.SessionTTL)

	strategies := []services.LoginStrategy{
		services.NewLocalStrategy(repos.User),
	}
	var oauthClients []services.OAuthClient

	httpClient := &http.Client{Timeout: 10 * time.Second}

	if cfg.Google.ClientID != "" {
		verifier, err := services.NewGoogleVerifier(httpClient, cfg.Google.ClientID)
		if err != nil {
			return Services{}, fmt.Errorf("init google verifier: %w", err)
		}
		client, err := services.NewGoogleOAuthClient(cfg.Google, httpClient, verifier)
		if err != nil {
			return Services{}, fmt.Errorf("init google oauth client: %w", err)
		}
		strategies = append(strategies, services.NewGoogleStrategy(linker))
		oauthClients = append(oauthClients, client)
	}

	if cfg.Microsoft.ClientID != "" {
		client, err := services.NewMicrosoftOAuthClient(cfg.Microsoft, httpClient)
		if err != nil {
			return Services{}, fmt.Errorf("init microsoft oauth client: %w", err)
		}
		strategies = append(strategies, services.NewMicrosoftStrategy(linker))
		oauthClients = append(oauthClients, client)
	}

	return Services{
		Registration: registration,
		Sessions:     sessions,
		Handles:      handles,
		Linker:       linker,
		Strategies:   strategies,
		OAuthClients: oauthClients,
	}, nil
}

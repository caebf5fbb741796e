package services

import (
	"context"

	types "github.com/estol/auth-service/internal/domain"
)

// ExternalProfile is the slice of a provider profile the core consumes.
type ExternalProfile struct {
	Provider    string
	Sub         string
	Email       string
	DisplayName string
}

// LoginInput is the tagged input of a login attempt. Local attempts fill
// Identifier and Password; federated attempts fill Profile.
type LoginInput struct {
	Identifier string
	Password   string
	Profile    *ExternalProfile
}

// LoginStrategy authenticates one kind of login attempt. The concrete
// strategies (local, google, microsoft) are constructed once at process start
// and handed to the routing layer as an explicit list; there is no global
// registry.
type LoginStrategy interface {
	Name() string
	AttemptLogin(ctx context.Context, in LoginInput) (*types.User, error)
}

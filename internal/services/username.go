package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	userRepo "github.com/estol/auth-service/internal/data/repos/user"
	"github.com/estol/auth-service/internal/pkg/dbctx"
)

// UsernameResolver turns a display name into a unique handle. It is a pure
// decision over the store's exists check; it never writes.
type UsernameResolver interface {
	Resolve(ctx context.Context, displayName string) (string, error)
}

type usernameResolver struct {
	users userRepo.UserRepo
}

func NewUsernameResolver(users userRepo.UserRepo) UsernameResolver {
	return &usernameResolver{users: users}
}

// NormalizeHandle lower-cases a display name and joins words with
// underscores.
func NormalizeHandle(displayName string) string {
	return strings.ReplaceAll(strings.ToLower(displayName), " ", "_")
}

// Resolve returns the normalized handle when it is unused. On collision it
// appends a random uuid suffix, so repeated collisions never loop and
// concurrent registrations colliding on the same suffix are vanishingly
// unlikely rather than impossible.
func (r *usernameResolver) Resolve(ctx context.Context, displayName string) (string, error) {
	candidate := NormalizeHandle(displayName)
	exists, err := r.users.UsernameExists(dbctx.New(ctx), candidate)
	if err != nil {
		return "", err
	}
	if !exists {
		return candidate, nil
	}
	return candidate + "_" + uuid.NewString(), nil
}

package authctx

import (
	"context"

	types "github.com/estol/auth-service/internal/domain"
)

type ctxKey struct{}

// WithPrincipal attaches the authenticated user to the request context.
func WithPrincipal(ctx context.Context, u *types.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// GetPrincipal returns the authenticated user, or nil for anonymous requests.
func GetPrincipal(ctx context.Context) *types.User {
	u, _ := ctx.Value(ctxKey{}).(*types.User)
	return u
}

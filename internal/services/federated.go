package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	authRepo "github.com/estol/auth-service/internal/data/repos/auth"
	userRepo "github.com/estol/auth-service/internal/data/repos/user"
	types "github.com/estol/auth-service/internal/domain"
	"github.com/estol/auth-service/internal/pkg/dbctx"
	errs "github.com/estol/auth-service/internal/pkg/errors"
)

// IdentityLinker resolves a federated login to a durable user record:
// an already-linked subject returns its user unchanged, a new subject gets a
// fresh user created atomically with its provider link.
type IdentityLinker interface {
	LinkOrCreate(ctx context.Context, provider, sub, displayName, email string) (*types.User, error)
}

type identityLinker struct {
	users   userRepo.UserRepo
	idents  authRepo.UserIdentityRepo
	handles UsernameResolver
}

func NewIdentityLinker(users userRepo.UserRepo, idents authRepo.UserIdentityRepo, handles UsernameResolver) IdentityLinker {
	return &identityLinker{users: users, idents: idents, handles: handles}
}

func (l *identityLinker) LinkOrCreate(ctx context.Context, provider, sub, displayName, email string) (*types.User, error) {
	if !types.KnownProvider(provider) {
		return nil, &errs.ValidationError{Field: "provider", Reason: fmt.Sprintf("unknown provider %q", provider)}
	}
	if sub == "" {
		return nil, &errs.ValidationError{Field: "provider_sub", Reason: "subject id is required"}
	}

	dbc := dbctx.New(ctx)

	ident, err := l.idents.GetByProviderSub(dbc, provider, sub)
	if err != nil {
		return nil, err
	}
	if ident != nil {
		return l.userForIdentity(dbc, ident)
	}

	handle, err := l.handles.Resolve(ctx, displayName)
	if err != nil {
		return nil, err
	}

	u := &types.User{
		ID:       uuid.New(),
		Username: handle,
		Email:    email,
	}
	link := &types.UserIdentity{
		ID:          uuid.New(),
		Provider:    provider,
		ProviderSub: sub,
		Email:       email,
	}
	created, err := l.users.Create(dbc, u, []*types.UserIdentity{link})
	if err != nil {
		// A concurrent request may have just created the same provider link;
		// that race is success-by-retry, not a failure.
		if errs.IsDuplicate(err) {
			if again, lookupErr := l.idents.GetByProviderSub(dbc, provider, sub); lookupErr == nil && again != nil {
				return l.userForIdentity(dbc, again)
			}
		}
		return nil, err
	}
	return created.Sanitized(), nil
}

func (l *identityLinker) userForIdentity(dbc dbctx.Context, ident *types.UserIdentity) (*types.User, error) {
	users, err := l.users.GetByIDs(dbc, []uuid.UUID{ident.UserID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("identity %s/%s points at missing user %s", ident.Provider, ident.ProviderSub, ident.UserID)
	}
	return users[0].Sanitized(), nil
}

// federatedStrategy adapts the linker to the LoginStrategy shape. The stored
// link is always tagged with the strategy's own provider, never a value from
// the profile, so a repeat login can never be broken by a cross-tagged link.
type federatedStrategy struct {
	provider string
	linker   IdentityLinker
}

func NewGoogleStrategy(linker IdentityLinker) LoginStrategy {
	return &federatedStrategy{provider: types.ProviderGoogle, linker: linker}
}

func NewMicrosoftStrategy(linker IdentityLinker) LoginStrategy {
	return &federatedStrategy{provider: types.ProviderMicrosoft, linker: linker}
}

func (s *federatedStrategy) Name() string { return s.provider }

func (s *federatedStrategy) AttemptLogin(ctx context.Context, in LoginInput) (*types.User, error) {
	if in.Profile == nil {
		return nil, &errs.ValidationError{Field: "profile", Reason: "federated login requires a provider profile"}
	}
	return s.linker.LinkOrCreate(ctx, s.provider, in.Profile.Sub, in.Profile.DisplayName, in.Profile.Email)
}

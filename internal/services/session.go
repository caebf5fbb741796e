package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/estol/auth-service/internal/clients/redis"
	userRepo "github.com/estol/auth-service/internal/data/repos/user"
	types "github.com/estol/auth-service/internal/domain"
	"github.com/estol/auth-service/internal/pkg/dbctx"
	errs "github.com/estol/auth-service/internal/pkg/errors"
)

// SessionService converts an authenticated user into an opaque session and
// back. Only the user id crosses into the session store; deserialization is
// a plain lookup by id with the password hash never materialized into the
// returned principal.
type SessionService interface {
	// Establish creates a session for the user and returns its opaque token.
	Establish(ctx context.Context, u *types.User) (string, error)
	// Resolve maps a session token back to its principal. An expired or
	// unknown token fails with ErrNotFound, never a crash.
	Resolve(ctx context.Context, token string) (*types.User, error)
	Destroy(ctx context.Context, token string) error

	// ToReference and FromReference are the serialize/deserialize pair: the
	// reference is the user id and nothing else.
	ToReference(u *types.User) uuid.UUID
	FromReference(ctx context.Context, id uuid.UUID) (*types.User, error)

	TTL() time.Duration
}

type sessionService struct {
	users userRepo.UserRepo
	store redisclient.SessionStore
	ttl   time.Duration
}

func NewSessionService(users userRepo.UserRepo, store redisclient.SessionStore, ttl time.Duration) SessionService {
	return &sessionService{users: users, store: store, ttl: ttl}
}

func (s *sessionService) Establish(ctx context.Context, u *types.User) (string, error) {
	token := uuid.NewString()
	if err := s.store.Put(ctx, token, s.ToReference(u), s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func (s *sessionService) Resolve(ctx context.Context, token string) (*types.User, error) {
	if token == "" {
		return nil, errs.ErrNotFound
	}
	id, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.FromReference(ctx, id)
}

func (s *sessionService) Destroy(ctx context.Context, token string) error {
	return s.store.Del(ctx, token)
}

func (s *sessionService) ToReference(u *types.User) uuid.UUID { return u.ID }

func (s *sessionService) FromReference(ctx context.Context, id uuid.UUID) (*types.User, error) {
	users, err := s.users.GetByIDs(dbctx.New(ctx), []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, errs.ErrNotFound
	}
	return users[0].Sanitized(), nil
}

func (s *sessionService) TTL() time.Duration { return s.ttl }

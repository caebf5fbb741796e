package services

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	userRepo "github.com/estol/auth-service/internal/data/repos/user"
	types "github.com/estol/auth-service/internal/domain"
	"github.com/estol/auth-service/internal/pkg/dbctx"
	errs "github.com/estol/auth-service/internal/pkg/errors"
)

type localStrategy struct {
	users userRepo.UserRepo
}

// NewLocalStrategy builds the credential verifier for username/email +
// password logins.
func NewLocalStrategy(users userRepo.UserRepo) LoginStrategy {
	return &localStrategy{users: users}
}

func (s *localStrategy) Name() string { return "local" }

// AttemptLogin distinguishes an unknown identifier (ErrNotRegistered) from a
// bad secret (ErrInvalidCredentials). On success the returned view has the
// password hash stripped; this is the only stripping pass in the pipeline.
func (s *localStrategy) AttemptLogin(ctx context.Context, in LoginInput) (*types.User, error) {
	u, err := s.users.GetByUsernameOrEmail(dbctx.New(ctx), in.Identifier)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.ErrNotRegistered
	}
	if !u.HasLocalCredential() {
		return nil, errs.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, errs.ErrInvalidCredentials
	}
	return u.Sanitized(), nil
}

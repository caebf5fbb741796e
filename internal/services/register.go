package services

import (
	"context"

	"github.com/google/uuid"

	userRepo "github.com/estol/auth-service/internal/data/repos/user"
	types "github.com/estol/auth-service/internal/domain"
	"github.com/estol/auth-service/internal/pkg/dbctx"
	errs "github.com/estol/auth-service/internal/pkg/errors"
)

// RegistrationService is the local-credential companion write path: it
// creates a user from a plaintext password. The store hashes the secret
// before persistence; no plaintext ever leaves this call.
type RegistrationService interface {
	Register(ctx context.Context, username, email, password string) (*types.User, error)
}

type registrationService struct {
	users userRepo.UserRepo
}

func NewRegistrationService(users userRepo.UserRepo) RegistrationService {
	return &registrationService{users: users}
}

func (s *registrationService) Register(ctx context.Context, username, email, password string) (*types.User, error) {
	if password == "" {
		return nil, &errs.ValidationError{Field: "password", Reason: "a password is required to register"}
	}
	u := &types.User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		Password: password,
	}
	created, err := s.users.Create(dbctx.New(ctx), u, nil)
	if err != nil {
		return nil, err
	}
	return created.Sanitized(), nil
}

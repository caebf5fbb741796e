package services

import (
	"context"
	"testing"

	errs "github.com/estol/auth-service/internal/pkg/errors"
)

func TestRegisterRequiresPassword(t *testing.T) {
	t.Parallel()

	svc := NewRegistrationService(&memUserRepo{s: newMemStore()})
	if _, err := svc.Register(context.Background(), "jane", "jane@example.com", ""); !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterCreatesUser(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := NewRegistrationService(&memUserRepo{s: store})

	u, err := svc.Register(context.Background(), "jane", "jane@example.com", "correct horse")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Username != "jane" || u.Email != "jane@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Password != "" || u.PasswordHash != "" {
		t.Fatalf("registered user must not carry credential material past the boundary")
	}
	if len(store.users) != 1 {
		t.Fatalf("expected one stored user, have %d", len(store.users))
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := NewRegistrationService(&memUserRepo{s: store})

	if _, err := svc.Register(context.Background(), "jane", "jane@example.com", "pw"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "jane", "other@example.com", "pw"); !errs.IsDuplicate(err) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

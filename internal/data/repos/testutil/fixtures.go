package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/estol/auth-service/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$seedseedseedseedseedseedseedseedseedseedseedseedsee",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedIdentity(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, provider, sub string) *types.UserIdentity {
	tb.Helper()
	ident := &types.UserIdentity{
		ID:          uuid.New(),
		UserID:      userID,
		Provider:    provider,
		ProviderSub: sub,
	}
	if err := tx.WithContext(ctx).Create(ident).Error; err != nil {
		tb.Fatalf("seed identity: %v", err)
	}
	return ident
}

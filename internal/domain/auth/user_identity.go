package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/estol/auth-service/internal/domain/user"
)

// Supported provider kinds. The provider stored on a link must be the
// provider that actually authenticated the request; nothing else ever
// writes this column.
const (
	ProviderGoogle    = "google"
	ProviderMicrosoft = "microsoft"
)

func KnownProvider(p string) bool {
	return p == ProviderGoogle || p == ProviderMicrosoft
}

type UserIdentity struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"index;not null" json:"user_id"`
	User        *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Provider    string     `gorm:"not null;column:provider;uniqueIndex:idx_user_identity_provider_sub,priority:1" json:"provider"`
	ProviderSub string     `gorm:"not null;column:provider_sub;uniqueIndex:idx_user_identity_provider_sub,priority:2" json:"provider_sub"`
	Email       string     `gorm:"column:email" json:"email"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserIdentity) TableName() string { return "user_identity" }

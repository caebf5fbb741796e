package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username string    `gorm:"uniqueIndex:idx_user_username;not null;column:username" json:"username"`
	Email    string    `gorm:"uniqueIndex:idx_user_email;not null;column:email" json:"email"`

	// PasswordHash is empty for users who only sign in through a provider.
	PasswordHash string `gorm:"column:password_hash" json:"-"`

	// Password carries a plaintext secret through a single write. The user
	// repo hashes it exactly once and clears it; it is never persisted or
	// serialized.
	Password string `gorm:"-" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "user" }

// HasLocalCredential reports whether the user can log in with a password.
func (u *User) HasLocalCredential() bool { return u.PasswordHash != "" }

// Sanitized returns a copy safe to hand past the service boundary.
func (u *User) Sanitized() *User {
	out := *u
	out.PasswordHash = ""
	out.Password = ""
	return &out
}

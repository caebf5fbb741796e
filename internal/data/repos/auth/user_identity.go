package auth

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/estol/auth-service/internal/domain"
	"github.com/estol/auth-service/internal/pkg/dbctx"
	"github.com/estol/auth-service/internal/pkg/logger"
)

// UserIdentityRepo stores federated provider links. Each (provider,
// provider_sub) pair is claimed by at most one user, enforced by a composite
// unique index.
type UserIdentityRepo interface {
	GetByProviderSub(dbc dbctx.Context, provider, sub string) (*types.UserIdentity, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserIdentity, error)
}

type userIdentityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserIdentityRepo(db *gorm.DB, baseLog *logger.Logger) UserIdentityRepo {
	return &userIdentityRepo{
		db:  db,
		log: baseLog.With("repo", "UserIdentityRepo"),
	}
}

// GetByProviderSub returns the link for a provider subject, or (nil, nil)
// when the subject has never been seen.
func (r *userIdentityRepo) GetByProviderSub(dbc dbctx.Context, provider, sub string) (*types.UserIdentity, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.UserIdentity
	err := txx.WithContext(dbc.Ctx).
		Where("provider = ? AND provider_sub = ?", provider, sub).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userIdentityRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserIdentity, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserIdentity
	if len(userIDs) == 0 {
		return out, nil
	}
	if err := txx.WithContext(dbc.Ctx).Where("user_id IN ?", userIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

package user

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	types "github.com/estol/auth-service/internal/domain"
	"github.com/estol/auth-service/internal/pkg/dbctx"
	errs "github.com/estol/auth-service/internal/pkg/errors"
	"github.com/estol/auth-service/internal/pkg/logger"
)

// emailPattern is a simple local-part@domain check, not a full RFC parse.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

const minUsernameLen = 3

// UserRepo is the durable store for user records. Every write validates
// format constraints and the authentication-method invariant: a user must
// carry a password hash or at least one provider link. Uniqueness is enforced
// by the database's unique indexes, so two concurrent creates of the same
// username, email or provider subject yield exactly one success and one
// DuplicateError.
type UserRepo interface {
	// Create persists a new user together with its provider links in a
	// single transaction. A plaintext in u.Password is hashed exactly once
	// and cleared before the row is written.
	Create(dbc dbctx.Context, u *types.User, links []*types.UserIdentity) (*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	// GetByUsernameOrEmail returns the user whose username or email matches
	// the identifier, or (nil, nil) when there is none.
	GetByUsernameOrEmail(dbc dbctx.Context, identifier string) (*types.User, error)
	UsernameExists(dbc dbctx.Context, username string) (bool, error)
	// Persist saves an existing user. It re-hashes only when a new plaintext
	// was supplied in u.Password; re-saving an unchanged record leaves the
	// stored hash byte-for-byte identical.
	Persist(dbc dbctx.Context, u *types.User) error
}

type userRepo struct {
	db         *gorm.DB
	log        *logger.Logger
	bcryptCost int
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger, bcryptCost int) UserRepo {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userRepo{
		db:         db,
		log:        baseLog.With("repo", "UserRepo"),
		bcryptCost: bcryptCost,
	}
}

func (r *userRepo) Create(dbc dbctx.Context, u *types.User, links []*types.UserIdentity) (*types.User, error) {
	if u == nil {
		return nil, &errs.ValidationError{Field: "user", Reason: "no user given"}
	}
	if err := validateFormat(u); err != nil {
		return nil, err
	}
	if u.Password == "" && u.PasswordHash == "" && len(links) == 0 {
		return nil, &errs.ValidationError{
			Field:  "authentication",
			Reason: "at least one of password or provider link is required",
		}
	}
	if err := r.hashIfModified(u); err != nil {
		return nil, err
	}

	write := func(tx *gorm.DB) error {
		if err := tx.WithContext(dbc.Ctx).Create(u).Error; err != nil {
			return translateDuplicate(err)
		}
		for _, link := range links {
			link.UserID = u.ID
			if err := tx.WithContext(dbc.Ctx).Create(link).Error; err != nil {
				return translateDuplicate(err)
			}
		}
		return nil
	}

	var err error
	if dbc.Tx != nil {
		err = write(dbc.Tx)
	} else {
		err = r.db.Transaction(write)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := txx.WithContext(dbc.Ctx).Where("id IN ?", userIDs).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userRepo) GetByUsernameOrEmail(dbc dbctx.Context, identifier string) (*types.User, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.User
	err := txx.WithContext(dbc.Ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) UsernameExists(dbc dbctx.Context, username string) (bool, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepo) Persist(dbc dbctx.Context, u *types.User) error {
	if u == nil || u.ID == uuid.Nil {
		return &errs.ValidationError{Field: "user", Reason: "user is not persisted"}
	}
	if err := validateFormat(u); err != nil {
		return err
	}
	if err := r.hashIfModified(u); err != nil {
		return err
	}

	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if u.PasswordHash == "" {
		var linkCount int64
		if err := txx.WithContext(dbc.Ctx).
			Model(&types.UserIdentity{}).
			Where("user_id = ?", u.ID).
			Count(&linkCount).Error; err != nil {
			return err
		}
		if linkCount == 0 {
			return &errs.ValidationError{
				Field:  "authentication",
				Reason: "at least one of password or provider link is required",
			}
		}
	}
	if err := txx.WithContext(dbc.Ctx).Save(u).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

// hashIfModified hashes exactly once per write where the secret changed.
// Hashing is keyed off "was a plaintext supplied", never off the presence of
// an existing hash.
func (r *userRepo) hashIfModified(u *types.User) error {
	if u.Password == "" {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), r.bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	u.Password = ""
	return nil
}

func validateFormat(u *types.User) error {
	if len(u.Username) < minUsernameLen {
		return &errs.ValidationError{
			Field:  "username",
			Reason: "must have at least 3 characters",
		}
	}
	if !emailPattern.MatchString(u.Email) {
		return &errs.ValidationError{
			Field:  "email",
			Reason: "must be a valid email address",
		}
	}
	return nil
}

// translateDuplicate maps a postgres unique violation to a DuplicateError
// naming the conflicting field. Other errors pass through unchanged.
func translateDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	name := strings.ToLower(pgErr.ConstraintName)
	switch {
	case strings.Contains(name, "username"):
		return &errs.DuplicateError{Field: "username"}
	case strings.Contains(name, "provider"):
		return &errs.DuplicateError{Field: "provider_sub"}
	case strings.Contains(name, "email"):
		return &errs.DuplicateError{Field: "email"}
	default:
		return &errs.DuplicateError{Field: "record"}
	}
}

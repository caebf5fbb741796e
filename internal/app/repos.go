package app

import (
	"gorm.io/gorm"

	authRepo "github.com/estol/auth-service/internal/data/repos/auth"
	userRepo "github.com/estol/auth-service/internal/data/repos/user"
	"github.com/estol/auth-service/internal/pkg/logger"
)

type Repos struct {
	User         userRepo.UserRepo
	UserIdentity authRepo.UserIdentityRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger, cfg Config) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         userRepo.NewUserRepo(db, log, cfg.BcryptCost),
		UserIdentity: authRepo.NewUserIdentityRepo(db, log),
	}
}

package domain

import (
	"github.com/estol/auth-service/internal/domain/auth"
	"github.com/estol/auth-service/internal/domain/user"
)

type User = user.User
type UserIdentity = auth.UserIdentity

const (
	ProviderGoogle    = auth.ProviderGoogle
	ProviderMicrosoft = auth.ProviderMicrosoft
)

func KnownProvider(p string) bool { return auth.KnownProvider(p) }

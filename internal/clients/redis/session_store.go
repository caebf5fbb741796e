package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	errs "github.com/estol/auth-service/internal/pkg/errors"
	"github.com/estol/auth-service/internal/pkg/logger"
	"github.com/estol/auth-service/internal/platform/envutil"
)

// SessionStore maps opaque session tokens to user ids. A Put is a single SET
// that completes or fails independently of the caller; there is no rollback.
type SessionStore interface {
	Put(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	Get(ctx context.Context, token string) (uuid.UUID, error)
	Del(ctx context.Context, token string) error
	Close() error
}

type sessionStore struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewSessionStore(log *logger.Logger) (SessionStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := envutil.String("REDIS_ADDR", "localhost:6379")

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &sessionStore{
		log:    log.With("client", "RedisSessionStore"),
		rdb:    rdb,
		prefix: "session:",
	}, nil
}

func (s *sessionStore) Put(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.prefix+token, userID.String(), ttl).Err()
}

func (s *sessionStore) Get(ctx context.Context, token string) (uuid.UUID, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+token).Result()
	if errors.Is(err, goredis.Nil) {
		return uuid.Nil, errs.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt session value: %w", err)
	}
	return id, nil
}

func (s *sessionStore) Del(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, s.prefix+token).Err()
}

func (s *sessionStore) Close() error {
	return s.rdb.Close()
}

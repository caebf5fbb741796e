package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/estol/auth-service/internal/domain"
	"github.com/estol/auth-service/internal/pkg/dbctx"
	errs "github.com/estol/auth-service/internal/pkg/errors"
)

// memStore is the shared in-memory backing for the fake repos. createHook,
// when set, runs right before a Create commits so tests can interleave a
// concurrent writer.
type memStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*types.User
	links      []*types.UserIdentity
	createHook func(s *memStore) error
}

func newMemStore() *memStore {
	return &memStore{users: map[uuid.UUID]*types.User{}}
}

func (s *memStore) addUser(u *types.User, links ...*types.UserIdentity) {
	cp := *u
	s.users[cp.ID] = &cp
	for _, link := range links {
		lcp := *link
		lcp.UserID = cp.ID
		s.links = append(s.links, &lcp)
	}
}

func (s *memStore) findLink(provider, sub string) *types.UserIdentity {
	for _, link := range s.links {
		if link.Provider == provider && link.ProviderSub == sub {
			cp := *link
			return &cp
		}
	}
	return nil
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(dbc dbctx.Context, u *types.User, links []*types.UserIdentity) (*types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if hook := r.s.createHook; hook != nil {
		r.s.createHook = nil
		if err := hook(r.s); err != nil {
			return nil, err
		}
	}
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return nil, &errs.DuplicateError{Field: "username"}
		}
		if existing.Email == u.Email {
			return nil, &errs.DuplicateError{Field: "email"}
		}
	}
	for _, link := range links {
		if r.s.findLink(link.Provider, link.ProviderSub) != nil {
			return nil, &errs.DuplicateError{Field: "provider_sub"}
		}
	}
	r.s.addUser(u, links...)
	return u, nil
}

func (r *memUserRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.User
	for _, id := range userIDs {
		if u, ok := r.s.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memUserRepo) GetByUsernameOrEmail(dbc dbctx.Context, identifier string) (*types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == identifier || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) UsernameExists(dbc dbctx.Context, username string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) Persist(dbc dbctx.Context, u *types.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *u
	r.s.users[cp.ID] = &cp
	return nil
}

type memIdentityRepo struct{ s *memStore }

func (r *memIdentityRepo) GetByProviderSub(dbc dbctx.Context, provider, sub string) (*types.UserIdentity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.findLink(provider, sub), nil
}

func (r *memIdentityRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserIdentity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.UserIdentity
	for _, link := range r.s.links {
		for _, id := range userIDs {
			if link.UserID == id {
				cp := *link
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

// memSessionStore is a map-backed stand-in for the redis session store.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]uuid.UUID
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]uuid.UUID{}}
}

func (s *memSessionStore) Put(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = userID
	return nil
}

func (s *memSessionStore) Get(ctx context.Context, token string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[token]
	if !ok {
		return uuid.Nil, errs.ErrNotFound
	}
	return id, nil
}

func (s *memSessionStore) Del(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *memSessionStore) Close() error { return nil }

package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-auth-gate/models"
)

// MemoryStore is an in-process [IdentityRepository] and [RoleRepository].
// It is selected by the "memory" storage driver and backs service tests.
// Contents are lost on restart.
type MemoryStore struct {
	mu         sync.RWMutex
	nextID     int64
	identities map[int64]models.Identity
	byUsername map[string]int64
	byEmail    map[string]int64
	roles      map[string]struct{}
	now        func() time.Time
}

// NewMemoryStore returns an empty store that knows the given roles. With no
// roles it knows USER and ADMIN, like a freshly migrated database.
func NewMemoryStore(roles ...string) *MemoryStore {
	if len(roles) == 0 {
		roles = []string{models.RoleUser, models.RoleAdmin}
	}

	s := &MemoryStore{
		nextID:     1,
		identities: make(map[int64]models.Identity),
		byUsername: make(map[string]int64),
		byEmail:    make(map[string]int64),
		roles:      make(map[string]struct{}, len(roles)),
		now:        time.Now,
	}
	for _, r := range roles {
		s.roles[r] = struct{}{}
	}

	return s
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lookup(s.byUsername, username)
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lookup(s.byEmail, email)
}

func (s *MemoryStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byUsername[strings.ToLower(username)]
	return ok, nil
}

// Create checks both unique keys and inserts under one write lock, so two
// racing creates for the same email cannot both succeed.
func (s *MemoryStore) Create(_ context.Context, identity models.Identity) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(identity.Roles) == 0 {
		return models.Identity{}, ErrRoleNotFound
	}
	for _, r := range identity.Roles {
		if _, ok := s.roles[r]; !ok {
			return models.Identity{}, ErrRoleNotFound
		}
	}

	usernameKey := strings.ToLower(identity.Username)
	emailKey := strings.ToLower(identity.Email)
	if _, taken := s.byUsername[usernameKey]; taken {
		return models.Identity{}, ErrUsernameAlreadyExists
	}
	if _, taken := s.byEmail[emailKey]; taken {
		return models.Identity{}, ErrEmailAlreadyExists
	}

	now := s.now()
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = now
	}
	identity.UpdatedAt = now
	identity.ID = s.nextID
	s.nextID++

	identity = clone(identity)
	s.identities[identity.ID] = identity
	s.byUsername[usernameKey] = identity.ID
	s.byEmail[emailKey] = identity.ID

	return clone(identity), nil
}

func (s *MemoryStore) UpdateTwoFactor(_ context.Context, id int64, secret string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.identities[id]
	if !ok {
		return ErrIdentityNotFound
	}

	identity.TwoFactorSecret = secret
	identity.TwoFactorEnabled = enabled
	identity.UpdatedAt = s.now()
	s.identities[id] = identity

	return nil
}

func (s *MemoryStore) RoleExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.roles[name]
	return ok, nil
}

// lookup must be called with s.mu held.
func (s *MemoryStore) lookup(index map[string]int64, key string) (models.Identity, error) {
	id, ok := index[strings.ToLower(key)]
	if !ok {
		return models.Identity{}, ErrIdentityNotFound
	}
	return clone(s.identities[id]), nil
}

func clone(identity models.Identity) models.Identity {
	identity.Roles = slices.Clone(identity.Roles)
	return identity
}

package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campus-id/portal-auth/internal/models"
)

// CredentialStore owns user records in memory. Identity uniqueness is
// enforced with exact, case-sensitive matches under a single store-wide lock
// so two concurrent registrations cannot race past the check.
type CredentialStore struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	byUsername map[string]string
	byEmail    map[string]string
	byPhone    map[string]string
	nowFn      func() time.Time
}

// NewCredentialStore constructs an empty CredentialStore. A nil nowFn
// defaults to time.Now.
func NewCredentialStore(nowFn func() time.Time) *CredentialStore {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &CredentialStore{
		users:      make(map[string]*models.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
		byPhone:    make(map[string]string),
		nowFn:      nowFn,
	}
}

// Create inserts a user with a fresh identifier and an already-hashed
// password. It fails with ErrDuplicateIdentity when any of username, email,
// or phone is taken.
func (s *CredentialStore) Create(username, email, phone, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[username]; taken {
		return models.User{}, ErrDuplicateIdentity
	}
	if _, taken := s.byEmail[email]; taken {
		return models.User{}, ErrDuplicateIdentity
	}
	if _, taken := s.byPhone[phone]; taken {
		return models.User{}, ErrDuplicateIdentity
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		CreatedAt:    s.nowFn(),
	}
	s.users[user.ID] = user
	s.byUsername[username] = user.ID
	s.byEmail[email] = user.ID
	s.byPhone[phone] = user.ID
	return *user, nil
}

// LookupByUsername returns the user owning the exact username.
func (s *CredentialStore) LookupByUsername(username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return *s.users[id], nil
}

// GetByID returns the user with the given identifier.
func (s *CredentialStore) GetByID(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return *user, nil
}

// Count returns the number of registered users.
func (s *CredentialStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

package auth

import (
	"sync"

	"github.com/campus-id/portal-auth/internal/models"
)

// SettingsStore holds per-user security settings. Reads of a never-configured
// user return defaults without persisting them; the first write stores the
// merged result.
type SettingsStore struct {
	mu       sync.RWMutex
	settings map[string]models.SecuritySettings
}

// NewSettingsStore constructs an empty SettingsStore.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{settings: make(map[string]models.SecuritySettings)}
}

// Get returns the user's settings, falling back to defaults when none are
// stored.
func (s *SettingsStore) Get(userID string) models.SecuritySettings {
	s.mu.RLock()
	stored, ok := s.settings[userID]
	s.mu.RUnlock()
	if !ok {
		return models.DefaultSecuritySettings()
	}
	return stored
}

// Update merges the patch into the user's current (or default) settings and
// stores the result.
func (s *SettingsStore) Update(userID string, patch models.SecuritySettingsPatch) {
	s.mu.Lock()
	current, ok := s.settings[userID]
	if !ok {
		current = models.DefaultSecuritySettings()
	}
	s.settings[userID] = patch.Apply(current)
	s.mu.Unlock()
}

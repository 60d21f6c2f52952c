package repository

import (
	"context"
	"sync"

	"pocketdesk/internal/domain"
)

// PostgresSettingsStore persists operator settings in the user_settings table
type PostgresSettingsStore struct {
	repo domain.UserSettingsRepository
}

// NewPostgresSettingsStore creates a settings store over repo
func NewPostgresSettingsStore(repo domain.UserSettingsRepository) *PostgresSettingsStore {
	return &PostgresSettingsStore{repo: repo}
}

// SaveSettings implements domain.SettingsStore
func (s *PostgresSettingsStore) SaveSettings(ctx context.Context, settings domain.Settings) error {
	_, err := s.repo.Upsert(ctx, settings)
	return err
}

// MemorySettingsStore keeps settings in process, for sessions without a
// database or provider
type MemorySettingsStore struct {
	mu    sync.Mutex
	saved map[string]domain.Settings
}

// NewMemorySettingsStore creates an empty in-memory store
func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{saved: make(map[string]domain.Settings)}
}

// SaveSettings implements domain.SettingsStore
func (s *MemorySettingsStore) SaveSettings(ctx context.Context, settings domain.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[settings.PocketOptionID] = settings
	return nil
}

// Get returns the settings saved for a pocket option id
func (s *MemorySettingsStore) Get(pocketOptionID string) (domain.Settings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.saved[pocketOptionID]
	return settings, ok
}

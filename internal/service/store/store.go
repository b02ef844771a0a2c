package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oshokin/work-alarm/internal/domain/alarm"
	"github.com/oshokin/work-alarm/internal/logger"
	repo "github.com/oshokin/work-alarm/internal/repository/settings"
)

// Store holds the last loaded or saved settings.
type Store struct {
	// repo handles persistent storage of the settings.
	repo repo.Repository
	// defaults is used when nothing usable is persisted.
	defaults *alarm.Settings
	// current is the in-memory copy of the settings.
	current *alarm.Settings
	// mu protects current.
	mu sync.RWMutex
}

// New creates a store backed by the repository. Defaults may be nil, in
// which case alarm.DefaultSettings is used.
func New(repository repo.Repository, defaults *alarm.Settings) *Store {
	if defaults == nil {
		defaults = alarm.DefaultSettings()
	}

	return &Store{
		repo:     repository,
		defaults: defaults.Clone(),
		current:  defaults.Clone(),
	}
}

// Load reads the persisted settings and makes them current. Missing and
// corrupt records are recovered locally with the defaults; read errors are
// logged and also fall back to the defaults.
func (s *Store) Load(ctx context.Context) *alarm.Settings {
	loaded := s.load(ctx)

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()

	return loaded.Clone()
}

func (s *Store) load(ctx context.Context) *alarm.Settings {
	if s.repo == nil {
		return s.defaults.Clone()
	}

	settings, err := s.repo.Load(ctx)

	switch {
	case err == nil && settings != nil:
		return settings
	case err == nil, errors.Is(err, repo.ErrNotFound):
		logger.Info(ctx, "No saved settings, using defaults")
	case errors.Is(err, alarm.ErrPersistenceCorrupt):
		logger.WarnKV(ctx, "Saved settings are corrupt, using defaults", "error", err)
	default:
		logger.ErrorKV(ctx, "Failed to read saved settings, using defaults", "error", err)
	}

	return s.defaults.Clone()
}

// Save persists the settings and makes them current. On failure the
// current settings are left untouched.
func (s *Store) Save(ctx context.Context, settings *alarm.Settings) error {
	if s.repo != nil {
		if err := s.repo.Save(ctx, settings); err != nil {
			return fmt.Errorf("persist settings: %w", err)
		}
	}

	s.mu.Lock()
	s.current = settings.Clone()
	s.mu.Unlock()

	return nil
}

// Current returns a copy of the current settings.
func (s *Store) Current() *alarm.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current.Clone()
}

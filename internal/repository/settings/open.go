package settings

import (
	"fmt"

	"github.com/oshokin/work-alarm/internal/config"
)

// Open creates the repository selected by the store configuration.
//
//nolint:ireturn // The backend is chosen at runtime.
func Open(cfg config.StoreConfig) (Repository, error) {
	switch cfg.Backend {
	case config.BackendBadger:
		return OpenBadger(BadgerOptions{Path: cfg.Path})
	case config.BackendFile, "":
		return NewFileRepository(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// OpenReadOnly opens the configured store for reading only. A Badger store
// that does not exist yet is reported as ErrNotFound and is not created.
//
//nolint:ireturn // The backend is chosen at runtime.
func OpenReadOnly(cfg config.StoreConfig) (Repository, error) {
	if cfg.Backend == config.BackendBadger {
		return OpenBadger(BadgerOptions{Path: cfg.Path, ReadOnly: true})
	}

	return Open(cfg)
}

package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/work-alarm/internal/config"
	"github.com/oshokin/work-alarm/internal/domain/alarm"
	"github.com/oshokin/work-alarm/internal/record"
)

// Repository defines persistence operations for the alarm settings.
type Repository interface {
	Load(ctx context.Context) (*alarm.Settings, error)
	Save(ctx context.Context, settings *alarm.Settings) error
	Close() error
}

// FileRepository persists the alarm settings to a JSON file on disk.
// JSON is produced and consumed via protojson through the record package
// to stay compatible with the control API messages.
type FileRepository struct {
	// path is the filesystem location of the JSON settings file.
	path string
	// mu protects concurrent access to the settings file.
	mu sync.Mutex
}

// ErrNotFound is returned when no settings have been saved yet.
var ErrNotFound = errors.New("settings not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the settings from disk.
func (r *FileRepository) Load(_ context.Context) (*alarm.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read settings file: %w", err)
	}

	return record.Unmarshal(contents)
}

// Save writes the settings to disk. The file is replaced atomically so a
// crash mid-write never leaves a truncated record behind.
func (r *FileRepository) Save(_ context.Context, settings *alarm.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := record.Marshal(settings)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}

	return nil
}

// Close is a no-op for the file backend.
func (r *FileRepository) Close() error {
	return nil
}

package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/work-alarm/internal/domain/alarm"
	"github.com/oshokin/work-alarm/internal/logger"
	"github.com/oshokin/work-alarm/internal/record"
)

// Key is the fixed key the settings record is stored under.
const Key = "work-alarm-schedule-v1"

// BadgerRepository persists the alarm settings in a Badger key-value store.
type BadgerRepository struct {
	// db is the open Badger database.
	db *badger.DB
}

// BadgerOptions configures the Badger backend.
type BadgerOptions struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in memory; used by tests.
	InMemory bool
	// ReadOnly opens an existing database without taking the write lock.
	// A missing database is reported as ErrNotFound instead of being created.
	ReadOnly bool
}

// OpenBadger opens or creates the Badger database.
func OpenBadger(opts BadgerOptions) (*BadgerRepository, error) {
	var badgerOpts badger.Options

	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := prepareBadgerDir(opts); err != nil {
			return nil, err
		}

		badgerOpts = badger.DefaultOptions(opts.Path).WithReadOnly(opts.ReadOnly)
	}

	// Badger is chatty at info level; only its warnings reach our log.
	badgerOpts = badgerOpts.WithLogger(badgerLogger{
		SugaredLogger: logger.Logger().Named("badger").WithOptions(logger.WithLevel(zapcore.WarnLevel)),
	})

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	return &BadgerRepository{db: db}, nil
}

func prepareBadgerDir(opts BadgerOptions) error {
	if !opts.ReadOnly {
		if err := os.MkdirAll(opts.Path, 0o700); err != nil {
			return fmt.Errorf("create badger directory: %w", err)
		}

		return nil
	}

	if _, err := os.Stat(filepath.Join(opts.Path, badger.ManifestFilename)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: no badger database in %s", ErrNotFound, opts.Path)
		}

		return fmt.Errorf("stat badger manifest: %w", err)
	}

	return nil
}

// Load reads the settings record.
func (r *BadgerRepository) Load(_ context.Context) (*alarm.Settings, error) {
	var data []byte

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(Key))
		if err != nil {
			return err
		}

		data, err = item.ValueCopy(nil)

		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read settings key: %w", err)
	}

	return record.Unmarshal(data)
}

// Save writes the settings record.
func (r *BadgerRepository) Save(_ context.Context, settings *alarm.Settings) error {
	data, err := record.Marshal(settings)
	if err != nil {
		return err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(Key), data)
	})
	if err != nil {
		return fmt.Errorf("write settings key: %w", err)
	}

	return nil
}

// Close releases the database.
func (r *BadgerRepository) Close() error {
	return r.db.Close()
}

// badgerLogger adapts a sugared zap logger to badger.Logger.
type badgerLogger struct {
	*zap.SugaredLogger
}

// Warningf logs at warn level; zap names it Warnf.
func (l badgerLogger) Warningf(format string, args ...any) {
	l.Warnf(format, args...)
}

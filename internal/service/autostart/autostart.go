package autostart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"

	"github.com/oshokin/work-alarm/internal/logger"
)

const (
	// AppName is the autostart entry name.
	AppName = "work-alarm-server"
	// DisplayName is shown by the desktop session.
	DisplayName = "Work Alarm"
)

// Entry is the session autostart entry of one executable.
type Entry struct {
	app *autostart.App
}

// New creates an entry that starts executable with args. An empty
// executable is resolved to the running binary.
func New(executable string, args ...string) (*Entry, error) {
	if executable == "" {
		path, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}

		executable = path
	}

	// Resolve symlinks if any.
	resolved, err := filepath.EvalSymlinks(executable)
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}

	return &Entry{
		app: &autostart.App{
			Name:        AppName,
			DisplayName: DisplayName,
			Exec:        append([]string{resolved}, args...),
		},
	}, nil
}

// Command returns the registered command line.
func (e *Entry) Command() []string {
	return append([]string(nil), e.app.Exec...)
}

// Enabled reports whether the entry is installed.
func (e *Entry) Enabled() bool {
	return e.app.IsEnabled()
}

// Install registers the entry. Installing twice is a no-op.
func (e *Entry) Install(ctx context.Context) error {
	if e.app.IsEnabled() {
		logger.Info(ctx, "Autostart already enabled")

		return nil
	}

	if err := e.app.Enable(); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}

	logger.InfoKV(ctx, "Autostart enabled", "command", e.app.Exec)

	return nil
}

// Uninstall removes the entry. Removing a missing entry is a no-op.
func (e *Entry) Uninstall(ctx context.Context) error {
	if !e.app.IsEnabled() {
		logger.Info(ctx, "Autostart already disabled")

		return nil
	}

	if err := e.app.Disable(); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}

	logger.Info(ctx, "Autostart disabled")

	return nil
}

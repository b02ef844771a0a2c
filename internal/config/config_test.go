package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/work-alarm/internal/domain/alarm"
)

// TestValidate checks required fields and format validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	// Bad socket.
	cfg := Default()
	cfg.ServerAddress = "bad:address"
	require.Error(t, Validate(cfg))

	// Unknown backend.
	cfg = Default()
	cfg.Store.Backend = "redis"
	require.ErrorIs(t, Validate(cfg), errUnknownBackend)

	// Webhook without URL.
	cfg = Default()
	cfg.Notifications.Presenter = PresenterWebhook
	require.ErrorIs(t, Validate(cfg), errWebhookURLRequired)

	// Webhook with URL.
	cfg.Notifications.WebhookURL = "https://hooks.example.com/alarm"
	require.NoError(t, Validate(cfg))

	// Unknown permission.
	cfg = Default()
	cfg.Notifications.Permission = "maybe"
	require.ErrorIs(t, Validate(cfg), errUnknownPermission)

	// Broken default rule.
	cfg = Default()
	cfg.Schedule.Defaults.EndHour = cfg.Schedule.Defaults.StartHour
	require.ErrorIs(t, Validate(cfg), alarm.ErrInvalidRule)
}

// TestValidate_Bounds checks the volume, horizon and lookback limits.
func TestValidate_Bounds(t *testing.T) {
	t.Parallel()

	// Zero volume with audio on would play at the default volume.
	cfg := Default()
	cfg.Audio.Volume = 0
	require.ErrorIs(t, Validate(cfg), errInvalidVolume)

	cfg.Audio.Enabled = false
	require.NoError(t, Validate(cfg))

	cfg = Default()
	cfg.Audio.Volume = 1.5
	require.ErrorIs(t, Validate(cfg), errInvalidVolume)

	cfg = Default()
	cfg.Schedule.HorizonDays = alarm.MaxHorizonDays
	require.NoError(t, Validate(cfg))

	cfg.Schedule.HorizonDays = 365
	require.ErrorIs(t, Validate(cfg), errInvalidHorizon)

	cfg = Default()
	cfg.Schedule.HorizonDays = -1
	require.ErrorIs(t, Validate(cfg), errInvalidHorizon)

	cfg = Default()
	cfg.CatchUp.Lookback = alarm.MaxLookback
	require.NoError(t, Validate(cfg))

	cfg.CatchUp.Lookback = 30 * 24 * time.Hour
	require.ErrorIs(t, Validate(cfg), errInvalidLookback)
}

// TestLoad_ZeroVolume verifies an explicit zero volume in the file is rejected.
func TestLoad_ZeroVolume(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "work-alarm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("audio:\n  volume: 0\n"), DefaultFilePermissions))

	_, err := Load(path)
	require.ErrorIs(t, err, errInvalidVolume)
}

// TestValidate_FillsDefaults ensures zero values are replaced and the wake
// interval never drops below the minimum.
func TestValidate_FillsDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Schedule: ScheduleConfig{
			Defaults: RuleConfig{Days: []int{1}, StartHour: 9, EndHour: 10, IntervalMinutes: 15},
		},
		CatchUp: CatchUpConfig{Interval: time.Minute},
	}

	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultServerAddress, cfg.ServerAddress)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, BackendFile, cfg.Store.Backend)
	require.NotEmpty(t, cfg.Store.Path)
	require.Equal(t, DefaultHorizonDays, cfg.Schedule.HorizonDays)
	require.Equal(t, PresenterAuto, cfg.Notifications.Presenter)
	require.Equal(t, PermissionGranted, cfg.Notifications.Permission)
	require.Equal(t, "work-alarm", cfg.Notifications.Tag)
	require.Equal(t, MinCatchUpInterval, cfg.CatchUp.Interval)
	require.Equal(t, DefaultLookback, cfg.CatchUp.Lookback)
}

// TestLoad_MissingFileUsesDefaults ensures a fresh install works without a config file.
func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultServerAddress, cfg.ServerAddress)

	rule, err := cfg.Schedule.Defaults.Rule()
	require.NoError(t, err)
	require.True(t, alarm.DefaultRule().Equal(rule))
}

// TestLoad_PartialFile ensures values missing from the file keep their defaults.
func TestLoad_PartialFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "work-alarm.yaml")
	contents := []byte(`
server_addr: 127.0.0.1:6000
store:
  backend: badger
catch_up:
  lookback: 30m
schedule:
  defaults:
    days: [1, 2, 3]
    start_hour: 9
    end_hour: 17
    interval_minutes: 30
`)
	require.NoError(t, os.WriteFile(path, contents, DefaultFilePermissions))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:6000", cfg.ServerAddress)
	require.Equal(t, BackendBadger, cfg.Store.Backend)
	require.Equal(t, 30*time.Minute, cfg.CatchUp.Lookback)
	require.Equal(t, MinCatchUpInterval, cfg.CatchUp.Interval)
	require.True(t, cfg.Audio.Enabled)

	rule, err := cfg.Schedule.Defaults.Rule()
	require.NoError(t, err)
	require.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday}, rule.Days)
	require.Equal(t, 30, rule.IntervalMinutes)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "settings.yaml")

	cfg := Default()
	cfg.ServerAddress = "127.0.0.1:50099"
	cfg.Notifications.Presenter = PresenterWebhook
	cfg.Notifications.WebhookURL = "https://updates.local/hook"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ServerAddress, loaded.ServerAddress)
	require.Equal(t, cfg.Notifications, loaded.Notifications)
	require.Equal(t, cfg.CatchUp, loaded.CatchUp)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestInitialSettings verifies the configured default rule seeds disabled settings.
func TestInitialSettings(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Schedule.Defaults.Days = []int{5, 1, 1}

	settings, err := cfg.InitialSettings()
	require.NoError(t, err)
	require.False(t, settings.Enabled)
	require.Equal(t, []time.Weekday{time.Monday, time.Friday}, settings.Rule.Days)

	cfg.Schedule.Defaults.IntervalMinutes = 0
	_, err = cfg.InitialSettings()
	require.ErrorIs(t, err, alarm.ErrInvalidRule)
}

package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/work-alarm/internal/domain/alarm"
)

// Config holds the settings shared by the work-alarm binaries.
type Config struct {
	// ServerAddress is the gRPC address of the daemon.
	ServerAddress string `yaml:"server_addr"`
	// Timeout is the duration for RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// Store selects where alarm settings are persisted.
	Store StoreConfig `yaml:"store"`
	// Schedule controls how far ahead alarms are armed.
	Schedule ScheduleConfig `yaml:"schedule"`
	// Notifications controls how alarms are presented.
	Notifications NotificationsConfig `yaml:"notifications"`
	// Audio controls the audible cue played with each alarm.
	Audio AudioConfig `yaml:"audio"`
	// CatchUp controls the periodic background catch-up.
	CatchUp CatchUpConfig `yaml:"catch_up"`
}

// StoreConfig selects the settings backend.
type StoreConfig struct {
	// Backend is either "file" (JSON) or "badger" (key-value store).
	Backend string `yaml:"backend"`
	// Path is the JSON file or the Badger directory.
	Path string `yaml:"path"`
}

// ScheduleConfig holds scheduling parameters.
type ScheduleConfig struct {
	// HorizonDays is how many calendar days of alarms are armed at once.
	HorizonDays int `yaml:"horizon_days"`
	// Defaults is the rule used before the user saved any settings.
	Defaults RuleConfig `yaml:"defaults"`
}

// RuleConfig is the YAML shape of a recurrence rule.
type RuleConfig struct {
	Days            []int `yaml:"days"`
	StartHour       int   `yaml:"start_hour"`
	EndHour         int   `yaml:"end_hour"`
	IntervalMinutes int   `yaml:"interval_minutes"`
}

// NotificationsConfig holds presenter settings.
type NotificationsConfig struct {
	// Presenter is one of "auto", "desktop", "webhook" or "log".
	Presenter string `yaml:"presenter"`
	// WebhookURL is where the webhook presenter posts notifications.
	WebhookURL string `yaml:"webhook_url"`
	// Permission is "granted" or "denied"; denied blocks enabling alarms.
	Permission string `yaml:"permission"`
	// Title is the notification title.
	Title string `yaml:"title"`
	// Tag collapses successive notifications into one.
	Tag string `yaml:"tag"`
}

// AudioConfig holds the alarm tone parameters.
type AudioConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Frequency float64       `yaml:"frequency"`
	Volume    float64       `yaml:"volume"`
	Duration  time.Duration `yaml:"duration"`
}

// CatchUpConfig holds the background catch-up parameters.
type CatchUpConfig struct {
	// Enabled registers the periodic wake when alarms are enabled.
	Enabled bool `yaml:"enabled"`
	// Interval is the wake period; values below MinCatchUpInterval are raised.
	Interval time.Duration `yaml:"interval"`
	// Lookback is how far back a wake looks for missed alarms.
	Lookback time.Duration `yaml:"lookback"`
	// Budget bounds a single wake run.
	Budget time.Duration `yaml:"budget"`
}

const (
	// AppName names the XDG directories used by default.
	AppName = "work-alarm"

	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "work-alarm.yaml"

	// DefaultStateFilename is the default filename for the JSON settings store.
	DefaultStateFilename = "work-alarm-settings.json"

	// DefaultServerAddress is the loopback address the daemon listens on.
	DefaultServerAddress = "127.0.0.1:50061"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600

	// DefaultHorizonDays arms today and tomorrow.
	DefaultHorizonDays = 2

	// MinCatchUpInterval is the shortest allowed background wake period.
	MinCatchUpInterval = 15 * time.Minute

	// DefaultLookback matches the wake period plus a margin.
	DefaultLookback = 20 * time.Minute

	// DefaultBudget bounds one catch-up run.
	DefaultBudget = 30 * time.Second

	// BackendFile stores settings as a JSON file.
	BackendFile = "file"
	// BackendBadger stores settings in a Badger key-value store.
	BackendBadger = "badger"

	// PresenterAuto picks desktop when available, log otherwise.
	PresenterAuto = "auto"
	// PresenterDesktop uses the OS notification tool.
	PresenterDesktop = "desktop"
	// PresenterWebhook posts notifications to WebhookURL.
	PresenterWebhook = "webhook"
	// PresenterLog only writes notifications to the log.
	PresenterLog = "log"

	// PermissionGranted allows enabling alarms.
	PermissionGranted = "granted"
	// PermissionDenied blocks enabling alarms.
	PermissionDenied = "denied"

	defaultTitle     = "Work Alarm"
	defaultTag       = "work-alarm"
	defaultFrequency = 880
	defaultVolume    = 0.2
	defaultDuration  = 700 * time.Millisecond
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownBackend is returned for an unsupported store backend.
	errUnknownBackend = errors.New("unknown store backend")
	// errUnknownPresenter is returned for an unsupported presenter.
	errUnknownPresenter = errors.New("unknown presenter")
	// errUnknownPermission is returned for a permission other than granted/denied.
	errUnknownPermission = errors.New("unknown notification permission")
	// errWebhookURLRequired is returned when the webhook presenter has no URL.
	errWebhookURLRequired = errors.New("webhook presenter requires webhook_url")
	// errInvalidHorizon is returned for a horizon outside [1, alarm.MaxHorizonDays].
	errInvalidHorizon = fmt.Errorf("horizon_days must be between 1 and %d", alarm.MaxHorizonDays)
	// errInvalidVolume is returned for a volume outside (0, 1] while audio is enabled.
	errInvalidVolume = errors.New("audio volume must be greater than 0 and at most 1; disable audio to mute")
	// errInvalidLookback is returned for a lookback above alarm.MaxLookback.
	errInvalidLookback = fmt.Errorf("catch_up lookback must not exceed %s", alarm.MaxLookback)
)

// Default returns a configuration with every field set to its default.
func Default() *Config {
	defaults := alarm.DefaultRule()
	days := make([]int, 0, len(defaults.Days))

	for _, day := range defaults.Days {
		days = append(days, int(day))
	}

	return &Config{
		ServerAddress: DefaultServerAddress,
		Timeout:       DefaultTimeout,
		LogLevel:      "info",
		Store: StoreConfig{
			Backend: BackendFile,
			Path:    defaultDataPath(DefaultStateFilename),
		},
		Schedule: ScheduleConfig{
			HorizonDays: DefaultHorizonDays,
			Defaults: RuleConfig{
				Days:            days,
				StartHour:       defaults.StartHour,
				EndHour:         defaults.EndHour,
				IntervalMinutes: defaults.IntervalMinutes,
			},
		},
		Notifications: NotificationsConfig{
			Presenter:  PresenterAuto,
			Permission: PermissionGranted,
			Title:      defaultTitle,
			Tag:        defaultTag,
		},
		Audio: AudioConfig{
			Enabled:   true,
			Frequency: defaultFrequency,
			Volume:    defaultVolume,
			Duration:  defaultDuration,
		},
		CatchUp: CatchUpConfig{
			Enabled:  true,
			Interval: MinCatchUpInterval,
			Lookback: DefaultLookback,
			Budget:   DefaultBudget,
		},
	}
}

// DefaultPath returns the default config location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, DefaultConfigFilename)
}

// defaultDataPath returns a file location under the XDG data home.
func defaultDataPath(name string) string {
	return filepath.Join(xdg.DataHome, AppName, name)
}

// Load reads configuration from the provided path over the defaults and
// validates it. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read settings: %w", err)
		}

		contents = nil
	}

	if len(contents) > 0 {
		if err := yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultPath()
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filepath.Clean(path)), 0o700); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills zero values with defaults.
//
//nolint:cyclop,funlen // Flat list of independent checks.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	defaults := Default()

	if cfg.ServerAddress == "" {
		cfg.ServerAddress = defaults.ServerAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	switch cfg.Store.Backend {
	case "":
		cfg.Store.Backend = BackendFile
	case BackendFile, BackendBadger:
	default:
		return fmt.Errorf("%w: %q", errUnknownBackend, cfg.Store.Backend)
	}

	if cfg.Store.Path == "" {
		if cfg.Store.Backend == BackendBadger {
			cfg.Store.Path = defaultDataPath("db")
		} else {
			cfg.Store.Path = defaultDataPath(DefaultStateFilename)
		}
	}

	if cfg.Schedule.HorizonDays < 0 || cfg.Schedule.HorizonDays > alarm.MaxHorizonDays {
		return errInvalidHorizon
	}

	if cfg.Schedule.HorizonDays == 0 {
		cfg.Schedule.HorizonDays = DefaultHorizonDays
	}

	if _, err := cfg.Schedule.Defaults.Rule(); err != nil {
		return fmt.Errorf("invalid default rule: %w", err)
	}

	if err := validateNotifications(&cfg.Notifications); err != nil {
		return err
	}

	if cfg.Audio.Frequency <= 0 {
		cfg.Audio.Frequency = defaultFrequency
	}

	// Muting is audio.enabled: false.
	if cfg.Audio.Volume < 0 || cfg.Audio.Volume > 1 || (cfg.Audio.Enabled && cfg.Audio.Volume == 0) {
		return errInvalidVolume
	}

	if cfg.Audio.Duration <= 0 {
		cfg.Audio.Duration = defaultDuration
	}

	if cfg.CatchUp.Interval < MinCatchUpInterval {
		cfg.CatchUp.Interval = MinCatchUpInterval
	}

	if cfg.CatchUp.Lookback <= 0 {
		cfg.CatchUp.Lookback = DefaultLookback
	}

	if cfg.CatchUp.Lookback > alarm.MaxLookback {
		return errInvalidLookback
	}

	if cfg.CatchUp.Budget <= 0 {
		cfg.CatchUp.Budget = DefaultBudget
	}

	return nil
}

func validateNotifications(n *NotificationsConfig) error {
	switch n.Presenter {
	case "":
		n.Presenter = PresenterAuto
	case PresenterAuto, PresenterDesktop, PresenterLog:
	case PresenterWebhook:
		if n.WebhookURL == "" {
			return errWebhookURLRequired
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownPresenter, n.Presenter)
	}

	if n.WebhookURL != "" {
		if _, err := url.ParseRequestURI(n.WebhookURL); err != nil {
			return fmt.Errorf("invalid webhook URL: %w", err)
		}
	}

	switch n.Permission {
	case "":
		n.Permission = PermissionGranted
	case PermissionGranted, PermissionDenied:
	default:
		return fmt.Errorf("%w: %q", errUnknownPermission, n.Permission)
	}

	if n.Title == "" {
		n.Title = defaultTitle
	}

	if n.Tag == "" {
		n.Tag = defaultTag
	}

	return nil
}

// Rule converts the YAML rule into a validated domain rule.
func (r RuleConfig) Rule() (*alarm.Rule, error) {
	rule := &alarm.Rule{
		Days:            make([]time.Weekday, 0, len(r.Days)),
		StartHour:       r.StartHour,
		EndHour:         r.EndHour,
		IntervalMinutes: r.IntervalMinutes,
	}

	for _, day := range r.Days {
		rule.Days = append(rule.Days, time.Weekday(day))
	}

	rule.Normalize()

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	return rule, nil
}

// InitialSettings returns the disabled settings used before anything was saved.
func (c *Config) InitialSettings() (*alarm.Settings, error) {
	rule, err := c.Schedule.Defaults.Rule()
	if err != nil {
		return nil, fmt.Errorf("default rule: %w", err)
	}

	return &alarm.Settings{Rule: rule}, nil
}

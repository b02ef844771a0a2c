package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/work-alarm/internal/config"
	"github.com/oshokin/work-alarm/internal/domain/alarm"
	repository "github.com/oshokin/work-alarm/internal/repository/settings"
	"github.com/oshokin/work-alarm/internal/service/catchup"
	"github.com/oshokin/work-alarm/internal/service/notify"
	"github.com/oshokin/work-alarm/internal/service/store"
)

// loadOffline reads the settings straight from the configured store. The
// store is opened read-only; a store that was never written yields the
// defaults.
func loadOffline(ctx context.Context, cfg *config.Config) (*alarm.Settings, error) {
	initial, err := cfg.InitialSettings()
	if err != nil {
		return nil, err
	}

	repo, err := repository.OpenReadOnly(cfg.Store)
	if errors.Is(err, repository.ErrNotFound) {
		return initial, nil
	}

	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}

	defer func() {
		_ = repo.Close()
	}()

	return store.New(repo, initial).Load(ctx), nil
}

// catchUpOffline runs a catch-up pass without the daemon. Only background
// presenters reach the user here; the log presenter still records the pass.
func catchUpOffline(ctx context.Context, cfg *config.Config, now time.Time, lookback time.Duration) ([]time.Time, error) {
	settings, err := loadOffline(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if lookback <= 0 {
		lookback = cfg.CatchUp.Lookback
	}

	var rule *alarm.Rule
	if settings.Enabled {
		rule = settings.Rule
	}

	presenter := notify.FromConfig(ctx, cfg.Notifications, nil)

	return catchup.New(presenter).Run(ctx, rule, now, lookback), nil
}

package server

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/work-alarm/internal/config"
	"github.com/oshokin/work-alarm/internal/logger"
	repository "github.com/oshokin/work-alarm/internal/repository/settings"
	"github.com/oshokin/work-alarm/internal/service/audio"
	"github.com/oshokin/work-alarm/internal/service/engine"
	"github.com/oshokin/work-alarm/internal/service/notify"
	"github.com/oshokin/work-alarm/internal/service/scheduler"
	"github.com/oshokin/work-alarm/internal/service/store"
	"github.com/oshokin/work-alarm/internal/service/wake"
)

// shutdownTimeout bounds waiting for a playing tone on shutdown.
const shutdownTimeout = 5 * time.Second

// daemon holds the components of a running server.
type daemon struct {
	// repo persists the settings.
	repo repository.Repository
	// beeper plays the alarm tone; nil when audio is disabled.
	beeper *audio.Beeper
	// scheduler owns the armed triggers.
	scheduler *scheduler.Scheduler
	// waker runs the background catch-up and the midnight refresh.
	waker *wake.Waker
	// engine serialises the alarm state.
	engine *engine.Engine
}

// newDaemon wires the components described by cfg. Nothing is armed until
// start is called.
func newDaemon(ctx context.Context, cfg *config.Config, desktopOpts ...notify.DesktopOption) (*daemon, error) {
	defaults, err := cfg.InitialSettings()
	if err != nil {
		return nil, err
	}

	repo, err := repository.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}

	d := &daemon{repo: repo}

	// A nil *audio.Beeper must not end up inside the Cue interface.
	var cue notify.Cue

	if cfg.Audio.Enabled {
		d.beeper = audio.New(audio.Options{
			Frequency: cfg.Audio.Frequency,
			Volume:    cfg.Audio.Volume,
			Duration:  cfg.Audio.Duration,
		})
		cue = d.beeper
	}

	presenter := notify.FromConfig(ctx, cfg.Notifications, cue, desktopOpts...)

	d.scheduler = scheduler.New(ctx, presenter.Fire)
	d.waker = wake.New(ctx, wake.Options{
		Interval: cfg.CatchUp.Interval,
		Budget:   cfg.CatchUp.Budget,
	})

	d.engine = engine.New(store.New(repo, defaults), d.scheduler, presenter, d.waker, engine.Options{
		HorizonDays: cfg.Schedule.HorizonDays,
		Lookback:    cfg.CatchUp.Lookback,
		Wake:        cfg.CatchUp.Enabled,
	})

	return d, nil
}

// start restores the persisted settings and starts the background jobs.
func (d *daemon) start(ctx context.Context) {
	if err := d.waker.OnMidnight(d.engine.Refresh); err != nil {
		logger.WarnKV(ctx, "Failed to register midnight refresh", "error", err)
	}

	d.engine.Restore(ctx)
	d.waker.Start()

	if settings := d.engine.Settings(); settings.Enabled && d.waker.Registered() {
		// Alarms due while the server was down.
		d.engine.CatchUp(ctx, 0)
	}
}

// close stops the background jobs, cancels the triggers and closes the store.
func (d *daemon) close(ctx context.Context) {
	d.waker.Stop()
	d.scheduler.Disarm(ctx)

	if d.beeper != nil {
		waitWithTimeout(ctx, d.beeper.Wait, shutdownTimeout)
	}

	if err := d.repo.Close(); err != nil {
		logger.ErrorKV(ctx, "Failed to close settings store", "error", err)
	}
}

func waitWithTimeout(ctx context.Context, wait func(), timeout time.Duration) {
	done := make(chan struct{})

	go func() {
		wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warnf(ctx, "Gave up waiting after %s", timeout)
	}
}

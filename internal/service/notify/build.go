package notify

import (
	"context"

	"github.com/oshokin/work-alarm/internal/config"
	"github.com/oshokin/work-alarm/internal/logger"
)

// Presenters builds the presenter list for the configured mode. The log
// presenter always comes last so there is a foreground fallback.
func Presenters(ctx context.Context, cfg config.NotificationsConfig, desktopOpts ...DesktopOption) []Presenter {
	var presenters []Presenter

	addDesktop := func() {
		desktop, err := NewDesktopPresenter(desktopOpts...)
		if err != nil {
			logger.WarnKV(ctx, "Desktop notifications are not available", "error", err)

			return
		}

		presenters = append(presenters, desktop)
	}

	switch cfg.Presenter {
	case config.PresenterDesktop:
		addDesktop()
	case config.PresenterWebhook:
		presenters = append(presenters, NewWebhookPresenter(cfg.WebhookURL, nil))
	case config.PresenterLog:
	default:
		addDesktop()

		if cfg.WebhookURL != "" {
			presenters = append(presenters, NewWebhookPresenter(cfg.WebhookURL, nil))
		}
	}

	return append(presenters, NewLogPresenter())
}

// FromConfig builds the alarm presenter described by the configuration.
// A nil cue plays no sound.
func FromConfig(ctx context.Context, cfg config.NotificationsConfig, cue Cue, desktopOpts ...DesktopOption) *Alarm {
	opts := []AlarmOption{
		WithTitle(cfg.Title),
		WithTag(cfg.Tag),
		WithPermission(ParsePermission(cfg.Permission)),
	}

	if cue != nil {
		opts = append(opts, WithCue(cue))
	}

	a := NewAlarm(Presenters(ctx, cfg, desktopOpts...), opts...)

	logger.InfoKV(ctx, "Notifications configured",
		"mode", cfg.Presenter,
		"presenter", a.Preferred().Name(),
		"background", a.Background())

	return a
}

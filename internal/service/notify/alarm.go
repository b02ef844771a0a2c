package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/work-alarm/internal/domain/alarm"
	"github.com/oshokin/work-alarm/internal/logger"
)

const (
	// DefaultTitle is the title of alarm notifications.
	DefaultTitle = "Work Alarm"
	// DefaultTag collapses alarm notifications into one.
	DefaultTag = "work-alarm"
)

// Cue is an audible signal played together with a fired alarm.
type Cue interface {
	Play(ctx context.Context)
}

// AlarmOption configures an Alarm.
type AlarmOption func(*Alarm)

// WithCue sets the audio cue played by Fire.
func WithCue(cue Cue) AlarmOption {
	return func(a *Alarm) {
		a.cue = cue
	}
}

// WithTitle sets the notification title.
func WithTitle(title string) AlarmOption {
	return func(a *Alarm) {
		if title != "" {
			a.title = title
		}
	}
}

// WithTag sets the notification replace tag.
func WithTag(tag string) AlarmOption {
	return func(a *Alarm) {
		if tag != "" {
			a.tag = tag
		}
	}
}

// WithPermission sets the permission configured by the user. Denied
// overrides whatever the presenter reports.
func WithPermission(p Permission) AlarmOption {
	return func(a *Alarm) {
		a.policy = p
	}
}

// Alarm presents fired and missed alarms.
type Alarm struct {
	// presenters are tried in order when picking the preferred one.
	presenters []Presenter
	// cue is played by Fire; nil plays nothing.
	cue Cue
	// title is the notification title.
	title string
	// tag is the notification replace tag.
	tag string
	// policy is the configured permission.
	policy Permission
}

// NewAlarm creates an alarm presenter over the given presenters. With no
// presenters it falls back to the log.
func NewAlarm(presenters []Presenter, opts ...AlarmOption) *Alarm {
	if len(presenters) == 0 {
		presenters = []Presenter{NewLogPresenter()}
	}

	a := &Alarm{
		presenters: presenters,
		title:      DefaultTitle,
		tag:        DefaultTag,
		policy:     PermissionGranted,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Preferred returns the first background-capable presenter, or the first
// presenter when none is.
//
//nolint:ireturn // Callers only need the Presenter behaviour.
func (a *Alarm) Preferred() Presenter {
	for _, p := range a.presenters {
		if p.Background() {
			return p
		}
	}

	return a.presenters[0]
}

// Background reports whether alarms can reach the user without a terminal.
func (a *Alarm) Background() bool {
	return a.Preferred().Background()
}

// Permission returns the effective notification permission.
func (a *Alarm) Permission(ctx context.Context) Permission {
	if a.policy == PermissionDenied {
		return PermissionDenied
	}

	return a.Preferred().Permission(ctx)
}

// Fire presents the alarm and plays the cue. Delivery failures are logged;
// the cue is played regardless.
func (a *Alarm) Fire(ctx context.Context, at time.Time) {
	_ = a.deliver(ctx, at)

	if a.cue != nil {
		a.cue.Play(ctx)
	}
}

// Notify presents the alarm without sound.
func (a *Alarm) Notify(ctx context.Context, at time.Time) error {
	return a.deliver(ctx, at)
}

func (a *Alarm) deliver(ctx context.Context, at time.Time) error {
	presenter := a.Preferred()
	n := NewNotification(a.title, a.tag, at)

	if err := presenter.Present(ctx, n); err != nil {
		err = fmt.Errorf("%w: %s: %w", alarm.ErrDeliveryFailure, presenter.Name(), err)
		logger.ErrorKV(ctx, "Failed to present alarm",
			"presenter", presenter.Name(),
			"at", at.Format(time.RFC3339),
			"error", err)

		return err
	}

	logger.DebugKV(ctx, "Alarm presented", "presenter", presenter.Name(), "id", n.ID)

	return nil
}

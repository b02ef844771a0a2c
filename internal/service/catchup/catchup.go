package catchup

import (
	"context"
	"errors"
	"time"

	"github.com/oshokin/work-alarm/internal/domain/alarm"
	"github.com/oshokin/work-alarm/internal/logger"
)

// Buffer extends the window past now so an alarm due within the next few
// seconds is not missed by a slightly early wake.
const Buffer = 5 * time.Second

// Notifier delivers a notification for an alarm instant, without sound.
type Notifier interface {
	Notify(ctx context.Context, at time.Time) error
}

// Engine runs catch-up passes.
type Engine struct {
	// notifier delivers each instant found.
	notifier Notifier
}

// New creates a catch-up engine delivering through notifier.
func New(notifier Notifier) *Engine {
	return &Engine{
		notifier: notifier,
	}
}

// Run delivers every instant of the rule within [now-lookback, now+Buffer]
// and returns them. A nil rule means alarms are not enabled and nothing is
// done. Delivery failures are logged and do not stop the pass.
func (e *Engine) Run(ctx context.Context, rule *alarm.Rule, now time.Time, lookback time.Duration) []time.Time {
	ctx = logger.WithName(ctx, "catchup")

	if rule == nil {
		logger.Info(ctx, "Alarms are disabled, nothing to catch up")

		return nil
	}

	instants := alarm.Between(rule, now.Add(-lookback), now.Add(Buffer))
	if len(instants) == 0 {
		logger.DebugKV(ctx, "No missed alarms", "lookback", lookback)

		return nil
	}

	var failed int

	for i, at := range instants {
		if err := ctx.Err(); err != nil {
			logger.WarnKV(ctx, "Catch-up interrupted", "error", err, "remaining", len(instants)-i)

			break
		}

		if err := e.notifier.Notify(ctx, at); err != nil {
			failed++

			if !errors.Is(err, alarm.ErrDeliveryFailure) {
				logger.ErrorKV(ctx, "Failed to present missed alarm", "at", at.Format(time.RFC3339), "error", err)
			}
		}
	}

	logger.InfoKV(ctx, "Catch-up finished", "found", len(instants), "failed", failed)

	return instants
}

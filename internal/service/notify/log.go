package notify

import (
	"context"
	"time"

	"github.com/oshokin/work-alarm/internal/logger"
)

// LogPresenter writes notifications to the log. It only reaches a user who
// watches the daemon output.
type LogPresenter struct{}

// NewLogPresenter creates a log presenter.
func NewLogPresenter() *LogPresenter {
	return new(LogPresenter)
}

// Name implements Presenter.
func (*LogPresenter) Name() string { return "log" }

// Background implements Presenter.
func (*LogPresenter) Background() bool { return false }

// Permission implements Presenter.
func (*LogPresenter) Permission(context.Context) Permission { return PermissionGranted }

// Present implements Presenter.
func (*LogPresenter) Present(ctx context.Context, n *Notification) error {
	logger.InfoKV(ctx, n.Title,
		"body", n.Body,
		"tag", n.Tag,
		"id", n.ID,
		"at", n.Timestamp.Format(time.RFC3339))

	return nil
}

package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// bodyTimeLayout formats the alarm time in the notification body.
const bodyTimeLayout = "15:04:05"

// Permission is the user's consent to receive notifications.
type Permission string

const (
	// PermissionGranted allows notifications.
	PermissionGranted Permission = "granted"
	// PermissionDenied blocks notifications.
	PermissionDenied Permission = "denied"
	// PermissionDefault means the user was never asked.
	PermissionDefault Permission = "default"
)

// Notification is one alarm as shown to the user.
type Notification struct {
	// ID is unique per notification.
	ID string `json:"id"`
	// Title is the notification heading.
	Title string `json:"title"`
	// Body carries the alarm time.
	Body string `json:"body"`
	// Tag makes a new notification replace the previous one with the same tag.
	Tag string `json:"tag"`
	// Renotify alerts the user again even when the tag replaced an old one.
	Renotify bool `json:"renotify"`
	// Timestamp is the alarm instant.
	Timestamp time.Time `json:"timestamp"`
}

// NewNotification builds the notification for the alarm instant at.
func NewNotification(title, tag string, at time.Time) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      "Time: " + at.Format(bodyTimeLayout),
		Tag:       tag,
		Renotify:  true,
		Timestamp: at,
	}
}

// Presenter shows notifications to the user.
type Presenter interface {
	// Name identifies the presenter in logs.
	Name() string
	// Present shows the notification.
	Present(ctx context.Context, n *Notification) error
	// Background reports whether notifications still reach the user while
	// no terminal or session is attached to the daemon.
	Background() bool
	// Permission reports whether notifications may be shown.
	Permission(ctx context.Context) Permission
}

// ParsePermission converts a configuration value into a Permission.
// Unknown values are treated as not yet decided.
func ParsePermission(s string) Permission {
	switch Permission(s) {
	case PermissionGranted, PermissionDenied:
		return Permission(s)
	default:
		return PermissionDefault
	}
}

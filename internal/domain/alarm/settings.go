package alarm

import (
	"fmt"
	"time"
)

// Actor identifies who changed the settings.
type Actor struct {
	// Hostname is the machine name where the change was made.
	Hostname string
	// Username is the system user who made the change.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as username@hostname.
func (a *Actor) String() string {
	if a == nil {
		return ""
	}

	return fmt.Sprintf("%s@%s", a.Username, a.Hostname)
}

// Settings is the user-configured alarm setup.
type Settings struct {
	// Rule is the recurrence alarms are generated from.
	Rule *Rule
	// Enabled reports whether alarms should be armed.
	Enabled bool
	// UpdatedAt is when the settings were last changed.
	UpdatedAt time.Time
	// UpdatedBy is the last actor who changed the settings, if known.
	UpdatedBy *Actor
}

// DefaultSettings returns disabled settings with the default rule.
func DefaultSettings() *Settings {
	return &Settings{
		Rule:    DefaultRule(),
		Enabled: false,
	}
}

// Clone returns a copy of the settings to avoid leaking internal references.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}

	return &Settings{
		Rule:      s.Rule.Clone(),
		Enabled:   s.Enabled,
		UpdatedAt: s.UpdatedAt,
		UpdatedBy: s.UpdatedBy.Clone(),
	}
}

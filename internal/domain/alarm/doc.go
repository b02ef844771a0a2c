// Package alarm contains core domain types for the alarm business logic.
//
// It defines Rule (the weekly recurrence), Settings (the rule plus the
// enabled flag and audit fields) and the pure expansion functions Expand and
// Between that turn a rule into concrete alarm instants in local time.
package alarm

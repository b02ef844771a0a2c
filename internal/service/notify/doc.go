// Package notify turns alarm instants into user-visible notifications.
//
// A Presenter shows one Notification: in the log, on the desktop or through a
// webhook. Alarm picks the presenter that still works while no terminal is
// attached, falls back to the first one otherwise, and plays the audio cue
// for alarms fired by the scheduler.
package notify

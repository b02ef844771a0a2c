// Package config defines the settings shared by the work-alarm binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Config covers the daemon address, the settings store backend, the
// scheduling horizon and default rule, presenters, the audio tone and the
// background catch-up. Files live under the XDG config home by default.
package config

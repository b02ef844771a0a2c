// Package autostart registers the alarm daemon to start with the user session.
package autostart

// Package common holds helpers shared by the daemon and the CLI.
//
// Client wraps the alarm gRPC service with per-call timeouts and attaches
// the detected actor (user@host) to every mutation. FindProcesses backs the
// single instance check of work-alarm-server and the daemon line of status.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

// Package version exposes build metadata injected with ldflags.
//
// The same strings are printed by the version subcommand and sent as the
// user agent of gRPC and webhook requests.
package version

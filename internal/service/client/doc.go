// Package client implements the work-alarm CLI operations.
//
// Every operation talks to the daemon over gRPC. Catch-up and status fall
// back to reading the settings store directly when the daemon is not
// reachable, which is how an OS timer surfaces missed alarms while the
// daemon is stopped.
package client

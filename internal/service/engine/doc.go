// Package engine holds the per-process alarm state and serialises every
// operation on it.
//
// Engine is created once at startup and shared by the gRPC handlers and
// the background jobs. It persists every settings change before touching
// the scheduler, so the armed triggers always follow the stored settings.
package engine

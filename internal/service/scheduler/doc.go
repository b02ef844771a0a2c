// Package scheduler arms one timer per upcoming alarm instant.
//
// Scheduler owns the armed triggers. Arm cancels everything that is pending
// and rebuilds the set from the rule; Disarm cancels everything. Each trigger
// carries its own cancellation token: once the token is cancelled the
// trigger can no longer fire, even if its timer already expired and the
// callback is waiting for the lock.
package scheduler

// Package catchup surfaces alarms that came due while nothing was armed.
//
// It runs when the process is woken in the background or when a user asks
// for it explicitly. There is no record of what was already shown: every run
// presents all instants of the lookback window and relies on the presenter's
// replace tag to collapse repeats.
package catchup

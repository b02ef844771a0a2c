// Package wake runs background jobs on a schedule while the daemon is up.
//
// The periodic wake drives catch-up of missed alarms; the midnight job
// re-arms the rolling horizon. Both run through robfig/cron with the
// wall-clock location of the alarms.
package wake

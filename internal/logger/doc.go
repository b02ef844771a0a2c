// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder that only colors
//     levels when writing to a terminal,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// The daemon, the scheduler timers and the cron wake jobs all take a
// context and extract the logger from it, so every alarm fired or missed
// is logged with the component name that produced it.
package logger

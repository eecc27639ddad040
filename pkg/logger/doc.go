// Package logger provides logging facilities for globallock.
//
// The package separates two audiences. Internal diagnostics (Info,
// Warning, Error) describe what the lock did and are written through
// log/slog to a log file when debug logging is enabled. User-facing
// messages (InfoToUser, WarningToUser, Success, StatusMessage) are what
// the command-line driver prints for a person watching the terminal.
//
// # Usage
//
//	log := logger.New(true, "/tmp/globallock.log", false)
//	defer log.Close()
//
//	l, err := lock.New("i2c-bus", lock.WithDebug(true), lock.WithLogger(log))
//
// A library caller that wants no output at all can pass logger.Nop(),
// which is also the lock's default.
//
// # File Logging
//
// File entries use slog's text format and carry the process ID, which
// makes interleaved logs from several processes contending for the same
// lock easy to separate.
//
// # Thread Safety
//
// DefaultLogger is safe for concurrent use by multiple goroutines.
package logger

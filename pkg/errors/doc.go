// Package errors provides error handling utilities for globallock.
//
// This package defines the sentinel errors and typed errors shared by the
// semaphore binding, the named lock and the command-line driver. It keeps
// the standard library's wrapping conventions, so every error can be
// inspected with errors.Is and errors.As.
//
// # What is not an error
//
// A lock request that times out and a release of a lock that is not held
// are routine outcomes of correct concurrent usage. They are reported as
// ordinary boolean results by package lock and never appear here.
//
// # Error Types
//
//   - SemaphoreError: the operating system refused a semaphore operation
//     (open, wait, post, getvalue, unlink). Carries the namespaced name,
//     the operation and the errno.
//   - ConfigError: a configuration parameter failed validation.
//
// # Sentinels
//
//   - ErrInvalidName: the lock name cannot be represented by the backend
//   - ErrBackendUnavailable: the backend is not compiled for this platform
//   - ErrClosed: the handle was used after Close
//   - ErrInvalidConfiguration, ErrInvalidFlag, ErrUnknownCommand: driver input
//
// # Usage
//
//	l, err := lock.New("i2c-bus")
//	if err != nil {
//	    var semErr *errors.SemaphoreError
//	    if errors.As(err, &semErr) {
//	        // the OS facility refused the open
//	    }
//	    return errors.Wrap(err, "failed to open bus lock")
//	}
//
// # Thread Safety
//
// All types and functions in this package are safe for concurrent use
// by multiple goroutines.
package errors

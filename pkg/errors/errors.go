package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors that can be used with errors.Is() for error type checking
var (
	// ErrInvalidName indicates a lock name the semaphore namespace cannot hold
	ErrInvalidName = errors.New("invalid lock name")

	// ErrBackendUnavailable indicates the semaphore backend is not compiled for this platform
	ErrBackendUnavailable = errors.New("semaphore backend not available on this platform")

	// ErrClosed indicates a semaphore handle was used after Close
	ErrClosed = errors.New("semaphore handle is closed")

	// ErrInvalidConfiguration indicates an invalid or conflicting user configuration
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidFlag indicates a command-line flag could not be parsed
	ErrInvalidFlag = errors.New("invalid command-line flag")

	// ErrUnknownCommand indicates a driver command outside get, unget, state, trace and remove
	ErrUnknownCommand = errors.New("unknown command")
)

// New creates a new error with the given message.
// This is a convenience function that wraps errors.New.
func New(message string) error {
	return errors.New(message)
}

// Errorf creates a new formatted error.
// This is a convenience function that wraps fmt.Errorf.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Wrap wraps an error with a message for better context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message for better context.
func Wrapf(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether target is in err's chain.
// This is a convenience function that wraps errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience function that wraps errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors.
// This is a convenience function that wraps errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// SemaphoreError represents a failure of the operating system semaphore facility.
// It records the namespaced semaphore name, the operation that failed and the
// underlying error (usually a syscall.Errno).
type SemaphoreError struct {
	Name string
	Op   string
	Err  error
}

// Error implements the error interface with the semaphore name and operation.
func (e *SemaphoreError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("semaphore %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("semaphore %s failed for %s: %v", e.Op, e.Name, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *SemaphoreError) Unwrap() error {
	return e.Err
}

// NewSemaphoreError creates a new SemaphoreError with the given parameters.
func NewSemaphoreError(name, op string, err error) *SemaphoreError {
	return &SemaphoreError{
		Name: name,
		Op:   op,
		Err:  err,
	}
}

// ConfigError represents an error in the application configuration.
// It includes the parameter name, its value if available, and the underlying error.
type ConfigError struct {
	Parameter string
	Value     interface{}
	Err       error
}

// Error implements the error interface with details about the invalid configuration.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("configuration error for %s = %v: %v", e.Parameter, e.Value, e.Err)
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Parameter, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError with the given parameters.
func NewConfigError(parameter string, value interface{}, err error) *ConfigError {
	return &ConfigError{
		Parameter: parameter,
		Value:     value,
		Err:       err,
	}
}

package lock

import (
	"github.com/bashhack/globallock/pkg/semaphore"
)

// Logger is the subset of logger.Logger the lock writes to.
type Logger interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
}

// Config holds the construction settings of a Lock.
type Config struct {
	// Debug logs every acquire, release and state query through Logger.
	Debug bool

	// Logger receives debug messages and extraneous-release warnings.
	// Defaults to logger.Nop(), which discards both.
	Logger Logger

	// Backend is the semaphore facility to open. Empty means
	// semaphore.DefaultBackend().
	Backend semaphore.Backend

	// Semaphore, when set, is used instead of opening one by name.
	Semaphore semaphore.Semaphore
}

// Option configures a Lock.
type Option interface {
	Apply(*Config)
}

// OptionFunc is a function that configures a lock config.
type OptionFunc func(*Config)

// Apply calls f(config).
func (f OptionFunc) Apply(config *Config) {
	f(config)
}

// WithDebug returns an option that turns transition logging on or off.
func WithDebug(debug bool) Option {
	return OptionFunc(func(c *Config) {
		c.Debug = debug
	})
}

// WithLogger returns an option that sets the logger. Without it,
// extraneous-release warnings are discarded.
func WithLogger(logger Logger) Option {
	return OptionFunc(func(c *Config) {
		c.Logger = logger
	})
}

// WithBackend returns an option that selects the semaphore backend.
func WithBackend(backend semaphore.Backend) Option {
	return OptionFunc(func(c *Config) {
		c.Backend = backend
	})
}

// WithSemaphore returns an option that wraps an already open semaphore.
// The lock takes ownership of it and closes it on Close.
func WithSemaphore(sem semaphore.Semaphore) Option {
	return OptionFunc(func(c *Config) {
		c.Semaphore = sem
	})
}

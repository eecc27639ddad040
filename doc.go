// Package globallock provides named, system-wide mutual-exclusion locks
// built on OS semaphores.
//
// Any number of programs, written in any language, can serialize access to
// a shared resource (an I2C bus, a serial port, a hardware device) by
// agreeing on a lock name. The OS semaphore is the only shared state; there
// is no daemon and no lock file.
//
// # Quick Start
//
//	l, err := lock.New("i2c-bus")
//	if err != nil {
//	    return err
//	}
//	defer l.Close()
//
//	if ok, err := l.Acquire(semaphore.Within(time.Second)); err != nil || !ok {
//	    return err
//	}
//	defer l.Release()
//
// From the shell:
//
//	globallock i2c-bus get -t 2
//	globallock i2c-bus unget
//
// # Key Features
//
//   - Guarded release: releasing a lock that is not held is ignored, so the
//     counter never exceeds 1
//   - Explicit waits: NoWait, Within(d) or Forever, never an implicit hang
//   - Context-aware acquire, scheduled auto-release and cancellable tracing
//   - POSIX semaphores (compatible with other posix_ipc users), System V
//     semaphores without cgo, and an in-process backend for tests
//
// # Module Structure
//
//   - cmd/globallock: Command-line driver
//   - pkg/lock: The named lock
//   - pkg/semaphore: Named semaphore backends
//   - pkg/logger: Logging
//   - pkg/errors: Error types
//   - internal/config: Configuration and flag parsing
//
// # Platform Support
//
// The posix backend needs Linux with cgo. The sysv backend needs Linux on
// amd64 or arm64. The memory backend works everywhere but only within one
// process.
//
// # Implementation Notes
//
// A lock left held by a process that died stays held: semaphores are not
// released on exit. Any process may release it with "globallock NAME unget".
package globallock

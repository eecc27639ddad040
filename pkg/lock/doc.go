// Package lock provides a named, system-wide mutual-exclusion lock.
//
// A Lock wraps one named semaphore used as a binary counter: 1 is
// unlocked, 0 is locked. Independent programs and goroutines that open
// the same name coordinate through the operating system alone.
//
// # Core Components
//
// - Lock: acquire, release and inspect one named lock
// - AutoRelease: a release scheduled some time after an acquire
// - Snapshot: a point-in-time reading used for state display and tracing
//
// # Usage
//
//	l, err := lock.New("i2c-bus")
//	if err != nil {
//	    // the OS refused to create or open the semaphore
//	}
//	defer l.Close()
//
//	ok, err := l.Acquire(semaphore.Within(2 * time.Second))
//	if err != nil {
//	    // OS failure
//	}
//	if !ok {
//	    // someone else holds the bus
//	}
//	defer l.Release()
//
// # Releasing
//
// Release checks the counter before incrementing it. Releasing a lock
// that is not held returns false and logs "extraneous release, ignored"
// instead of pushing the counter to 2, which would let two holders in at
// once. Interrupt handlers should call Release defensively and ignore a
// false result. The warning goes to the Logger set with WithLogger; the
// default Logger drops it.
//
// The check and the increment are two operations, not one. A concurrent
// acquire landing between them is a known narrow race.
//
// # Lifetime
//
// Closing a Lock, or exiting the process, never releases or destroys the
// lock. A process that dies while holding it leaves it held until
// someone calls Release. Remove deletes the named object.
//
// An AcquireContext whose context ends keeps waiting in the background.
// If that wait later wins, the lock is handed straight back, even when
// the Lock was closed in the meantime: Close leaves the semaphore open
// until the wait is over.
//
// # Ordering
//
// Waiters are woken in whatever order the OS chooses. There is no FIFO
// or fairness guarantee.
//
// # Thread Safety
//
// A Lock may be shared by goroutines. The semaphore provides the mutual
// exclusion; the Lock only guards its own closed state.
package lock

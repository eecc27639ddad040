package lock

import (
	"context"
	"sync"
	"time"

	glerrors "github.com/bashhack/globallock/pkg/errors"
	"github.com/bashhack/globallock/pkg/logger"
	"github.com/bashhack/globallock/pkg/semaphore"
)

// State is the lock state derived from the semaphore counter.
type State string

const (
	// Unlocked means the counter is 1.
	Unlocked State = "unlocked"

	// Locked means the counter is 0.
	Locked State = "locked"

	// Corrupt means the counter is above 1, left behind by some earlier
	// unguarded release. It is reported, never repaired.
	Corrupt State = "corrupt"
)

// stateOf maps a counter value to a State. Some platforms report the
// number of waiters as a negative value, which is still locked.
func stateOf(value int) State {
	switch {
	case value <= 0:
		return Locked
	case value == 1:
		return Unlocked
	}
	return Corrupt
}

// Snapshot is a point-in-time reading of a lock.
type Snapshot struct {
	Name   string    `json:"name"`
	Value  int       `json:"value"`
	Locked bool      `json:"locked"`
	State  State     `json:"state"`
	Time   time.Time `json:"time"`
}

// Lock is a named, system-wide mutual-exclusion lock backed by a binary
// semaphore. Every Lock opened with the same name on the same backend, in
// any process, contends for the same counter.
//
// The counter is the only state. A Lock caches nothing, so a handle opened
// after another process acquired the lock sees it held.
type Lock struct {
	sem    semaphore.Semaphore
	debug  bool
	logger Logger

	// mu guards closed and waiters. While a context wait is in flight the
	// semaphore stays open, even after Close, so that an abandoned wait
	// can always hand the lock back.
	mu      sync.Mutex
	closed  bool
	waiters int
}

// New opens the lock called name, creating it unlocked if no process has
// created it yet. An error means the OS facility refused the semaphore.
func New(name string, options ...Option) (*Lock, error) {
	config := Config{
		Logger: logger.Nop(),
	}
	for _, opt := range options {
		opt.Apply(&config)
	}
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}

	sem := config.Semaphore
	if sem == nil {
		backend := config.Backend
		if backend == "" {
			backend = semaphore.DefaultBackend()
		}

		var err error
		sem, err = semaphore.Open(backend, name, 1)
		if err != nil {
			return nil, glerrors.Wrapf(err, "failed to open lock %q", name)
		}
	}

	return &Lock{
		sem:    sem,
		debug:  config.Debug,
		logger: config.Logger,
	}, nil
}

// Name returns the namespaced lock name.
func (l *Lock) Name() string {
	return l.sem.Name()
}

// Acquire takes the lock, waiting as allowed by w. It returns false when
// the wait ran out; that is a normal outcome, not an error.
func (l *Lock) Acquire(w semaphore.Wait) (bool, error) {
	if err := l.checkOpen("wait"); err != nil {
		return false, err
	}

	if l.debug {
		l.logger.Info("<%s> lock request (wait %s)", l.Name(), w)
	}

	ok, err := l.sem.TryDecrement(w)
	if err != nil {
		return false, err
	}

	if l.debug {
		if ok {
			l.logger.Info("<%s> lock request successful (%d)", l.Name(), l.peek())
		} else {
			l.logger.Info("<%s> lock request timed out (%d)", l.Name(), l.peek())
		}
	}
	return ok, nil
}

// AcquireContext is Acquire that also gives up when ctx ends, returning
// ctx.Err(). The wait itself cannot be interrupted, so it continues in the
// background; if it later succeeds the lock is released again at once.
func (l *Lock) AcquireContext(ctx context.Context, w semaphore.Wait) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if w.IsNoWait() {
		return l.Acquire(w)
	}

	if err := l.enterWait(); err != nil {
		return false, err
	}

	type result struct {
		ok  bool
		err error
	}
	done := make(chan result, 1)
	go func() {
		ok, err := l.Acquire(w)
		done <- result{ok: ok, err: err}
	}()

	select {
	case r := <-done:
		l.leaveWait()
		return r.ok, r.err
	case <-ctx.Done():
		go func() {
			defer l.leaveWait()
			if r := <-done; r.ok {
				l.handBack()
			}
		}()
		return false, ctx.Err()
	}
}

// handBack undoes the decrement of an abandoned wait. The decrement was
// this handle's own, so no value check is needed.
func (l *Lock) handBack() {
	if err := l.sem.Increment(); err != nil {
		l.logger.Warning("<%s> abandoned lock request succeeded, failed to hand the lock back: %v", l.Name(), err)
		return
	}
	l.logger.Info("<%s> abandoned lock request succeeded, lock handed back (%d)", l.Name(), l.peek())
}

func (l *Lock) enterWait() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return glerrors.NewSemaphoreError(l.Name(), "wait", glerrors.ErrClosed)
	}
	l.waiters++
	return nil
}

// leaveWait ends a context wait. The last one to leave after Close frees
// the semaphore.
func (l *Lock) leaveWait() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.waiters--
	if l.closed && l.waiters == 0 {
		if err := l.sem.Close(); err != nil {
			l.logger.Warning("<%s> failed to close semaphore: %v", l.Name(), err)
		}
	}
}

// checkOpen fails once Close was called, even while the semaphore is
// still kept open for a pending context wait.
func (l *Lock) checkOpen(op string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return glerrors.NewSemaphoreError(l.Name(), op, glerrors.ErrClosed)
	}
	return nil
}

// Release unlocks the lock if it is held and reports whether it did.
//
// Releasing a lock that is not held is a no-op returning false, so a
// release from a signal handler and one from normal cleanup can never
// push the counter above 1. The ignored release is reported as a Warning
// on the configured Logger; the default Logger discards it, so pass
// WithLogger to see it. The read and the increment are separate
// operations: a concurrent Acquire between them can still slip through.
func (l *Lock) Release() (bool, error) {
	if err := l.checkOpen("post"); err != nil {
		return false, err
	}

	v, err := l.sem.Value()
	if err != nil {
		return false, err
	}

	if v > 0 {
		l.logger.Warning("<%s> extraneous release, ignored (%d)", l.Name(), v)
		return false, nil
	}

	if err := l.sem.Increment(); err != nil {
		return false, err
	}

	if l.debug {
		l.logger.Info("<%s> lock released (%d)", l.Name(), l.peek())
	}
	return true, nil
}

// IsLocked reports whether the counter reads 0.
func (l *Lock) IsLocked() (bool, error) {
	v, err := l.Value()
	if err != nil {
		return false, err
	}

	locked := stateOf(v) == Locked
	if l.debug {
		l.logger.Info("<%s> is currently %s (%d)", l.Name(), stateOf(v), v)
	}
	return locked, nil
}

// Value returns the raw counter: 0 locked, 1 unlocked, anything else
// means an earlier misuse corrupted it.
func (l *Lock) Value() (int, error) {
	if err := l.checkOpen("getvalue"); err != nil {
		return 0, err
	}
	return l.sem.Value()
}

// State returns the state derived from the counter.
func (l *Lock) State() (State, error) {
	v, err := l.Value()
	if err != nil {
		return "", err
	}
	return stateOf(v), nil
}

// Snapshot reads the counter once and describes the lock.
func (l *Lock) Snapshot() (Snapshot, error) {
	v, err := l.Value()
	if err != nil {
		return Snapshot{}, err
	}

	state := stateOf(v)
	return Snapshot{
		Name:   l.Name(),
		Value:  v,
		Locked: state == Locked,
		State:  state,
		Time:   time.Now(),
	}, nil
}

// Close releases the handle. It does not release the lock: a held lock
// stays held for every other process.
//
// Close never blocks. If an AcquireContext wait was abandoned and is still
// pending, the semaphore is freed once that wait ends and, had it won,
// handed the lock back.
func (l *Lock) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if l.waiters > 0 {
		return nil
	}
	return l.sem.Close()
}

// Remove deletes the named lock from the backend. Processes that still
// hold a handle keep using the removed object.
func Remove(backend semaphore.Backend, name string) error {
	return semaphore.Unlink(backend, name)
}

// peek reads the counter for log messages, -1 if it cannot be read.
func (l *Lock) peek() int {
	v, err := l.sem.Value()
	if err != nil {
		return -1
	}
	return v
}

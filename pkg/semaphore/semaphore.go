package semaphore

import (
	"fmt"
	"strings"
	"sync"

	glerrors "github.com/bashhack/globallock/pkg/errors"
)

// Prefix is prepended to every logical name before it reaches the OS.
const Prefix = "/"

// maxNameLen is NAME_MAX minus the "sem." prefix glibc puts in front of
// POSIX semaphore names under /dev/shm.
const maxNameLen = 251

// Semaphore is a handle to a named counting semaphore shared by every
// process that opens the same name.
//
// Closing a handle releases process-local resources only. The named
// object and its counter survive until Unlink is called.
type Semaphore interface {
	// Name returns the namespaced name, including Prefix.
	Name() string

	// TryDecrement decrements the counter, waiting as allowed by w while it
	// is zero. It reports false when the wait budget ran out.
	TryDecrement(w Wait) (bool, error)

	// Increment increments the counter, waking one waiter if any.
	Increment() error

	// Value reads the counter without blocking.
	Value() (int, error)

	// Close releases the handle. Operations still in flight on other
	// goroutines finish before the underlying resources are freed.
	Close() error
}

// Backend selects the OS facility behind a Semaphore.
type Backend string

const (
	// BackendPOSIX uses POSIX named semaphores (sem_open). Requires cgo.
	BackendPOSIX Backend = "posix"

	// BackendSysV uses System V semaphore sets keyed by a hash of the name.
	BackendSysV Backend = "sysv"

	// BackendMemory keeps counters in a process-local registry. Handles in
	// other processes never see them.
	BackendMemory Backend = "memory"
)

// Backends lists every backend name, available or not.
var Backends = []Backend{BackendPOSIX, BackendSysV, BackendMemory}

// Available reports whether b is compiled in for this platform.
func Available(b Backend) bool {
	switch b {
	case BackendPOSIX:
		return posixSupported
	case BackendSysV:
		return sysvSupported
	case BackendMemory:
		return true
	}
	return false
}

// DefaultBackend returns the first available backend in the order
// posix, sysv, memory.
func DefaultBackend() Backend {
	switch {
	case posixSupported:
		return BackendPOSIX
	case sysvSupported:
		return BackendSysV
	}
	return BackendMemory
}

// ParseBackend converts a user-supplied backend name. An empty string
// selects DefaultBackend.
func ParseBackend(s string) (Backend, error) {
	if s == "" {
		return DefaultBackend(), nil
	}
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Backends {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown semaphore backend %q", s)
}

// Namespaced validates a logical lock name and applies Prefix.
// A name that already starts with Prefix is accepted as is.
func Namespaced(name string) (string, error) {
	bare := strings.TrimPrefix(name, Prefix)
	switch {
	case bare == "":
		return "", glerrors.Wrapf(glerrors.ErrInvalidName, "name %q is empty", name)
	case strings.Contains(bare, "/"):
		return "", glerrors.Wrapf(glerrors.ErrInvalidName, "name %q contains '/'", name)
	case strings.ContainsRune(bare, 0):
		return "", glerrors.Wrapf(glerrors.ErrInvalidName, "name %q contains a NUL byte", name)
	case len(bare) > maxNameLen:
		return "", glerrors.Wrapf(glerrors.ErrInvalidName, "name is %d bytes long, limit is %d", len(bare), maxNameLen)
	}
	return Prefix + bare, nil
}

// Open opens the semaphore called name on backend b, creating it with
// the given initial value if it does not exist yet. An existing
// semaphore keeps its current value.
func Open(b Backend, name string, initial uint) (Semaphore, error) {
	full, err := Namespaced(name)
	if err != nil {
		return nil, err
	}

	switch b {
	case BackendPOSIX:
		return openPOSIX(full, initial)
	case BackendSysV:
		return openSysV(full, initial)
	case BackendMemory:
		return openMemory(full, initial), nil
	}
	return nil, glerrors.NewSemaphoreError(full, "open",
		glerrors.Wrapf(glerrors.ErrBackendUnavailable, "backend %q", b))
}

// Unlink removes the named semaphore from backend b. Handles that are
// still open keep working on the removed object; the next Open creates
// a fresh one.
func Unlink(b Backend, name string) error {
	full, err := Namespaced(name)
	if err != nil {
		return err
	}

	switch b {
	case BackendPOSIX:
		return unlinkPOSIX(full)
	case BackendSysV:
		return unlinkSysV(full)
	case BackendMemory:
		return unlinkMemory(full)
	}
	return glerrors.NewSemaphoreError(full, "unlink",
		glerrors.Wrapf(glerrors.ErrBackendUnavailable, "backend %q", b))
}

// guard tracks in-flight operations so that Close never frees a handle
// another goroutine is blocked on. The last operation to leave after
// Close runs the release function.
type guard struct {
	mu       sync.Mutex
	inflight int
	closed   bool
	release  func() error
}

func (g *guard) enter() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return glerrors.ErrClosed
	}
	g.inflight++
	return nil
}

func (g *guard) exit() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.inflight--
	if g.closed && g.inflight == 0 {
		g.runRelease()
	}
}

func (g *guard) close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true
	if g.inflight > 0 {
		return nil
	}
	return g.runRelease()
}

func (g *guard) runRelease() error {
	if g.release == nil {
		return nil
	}
	release := g.release
	g.release = nil
	return release()
}

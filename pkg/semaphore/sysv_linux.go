//go:build linux && (amd64 || arm64)

package semaphore

import (
	"errors"
	"time"
	"unsafe"

	"github.com/zeebo/xxh3"
	"golang.org/x/sys/unix"

	glerrors "github.com/bashhack/globallock/pkg/errors"
)

const sysvSupported = true

// From <linux/ipc.h> and <linux/sem.h>.
const (
	ipcCreat  = 0o1000
	ipcExcl   = 0o2000
	ipcNoWait = 0o4000
	ipcRmid   = 0

	semGetVal = 12
	semSetVal = 16
)

// sembuf mirrors struct sembuf.
type sembuf struct {
	num uint16
	op  int16
	flg int16
}

// sysvKey derives the IPC key from the namespaced name: the xxh3 hash
// truncated to 31 bits. IPC_PRIVATE (0) is never returned. Distinct names
// can collide on one key, and colliding names share a single lock.
func sysvKey(name string) int {
	key := int(xxh3.HashString(name) & 0x7fffffff)
	if key == 0 {
		key = 1
	}
	return key
}

func semget(key, flags int) (int, error) {
	id, _, errno := unix.Syscall(unix.SYS_SEMGET, uintptr(key), 1, uintptr(flags))
	if errno != 0 {
		return -1, errno
	}
	return int(id), nil
}

func semctl(id, cmd, arg int) (int, error) {
	r, _, errno := unix.Syscall6(unix.SYS_SEMCTL, uintptr(id), 0, uintptr(cmd), uintptr(arg), 0, 0)
	if errno != 0 {
		return -1, errno
	}
	return int(r), nil
}

// semtimedop applies op to the single semaphore in set id. A nil ts
// blocks without a bound.
func semtimedop(id int, op sembuf, ts *unix.Timespec) error {
	_, _, errno := unix.Syscall6(unix.SYS_SEMTIMEDOP, uintptr(id),
		uintptr(unsafe.Pointer(&op)), 1, uintptr(unsafe.Pointer(ts)), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

type sysvSemaphore struct {
	name  string
	id    int
	guard guard
}

// openSysV creates the set exclusively so that only the creator applies
// the initial value. A process that opens the set between semget and
// SETVAL sees it locked and waits; SETVAL then wakes it.
//
// The set is found by key only, so two names whose keys collide (see
// sysvKey) open the same set and contend for the same lock. Use the posix
// backend where names must never alias.
func openSysV(name string, initial uint) (Semaphore, error) {
	key := sysvKey(name)

	id, err := semget(key, ipcCreat|ipcExcl|0o600)
	switch {
	case err == nil:
		if _, err := semctl(id, semSetVal, int(initial)); err != nil {
			return nil, glerrors.NewSemaphoreError(name, "setval", err)
		}
	case errors.Is(err, unix.EEXIST):
		id, err = semget(key, 0o600)
		if err != nil {
			return nil, glerrors.NewSemaphoreError(name, "open", err)
		}
	default:
		return nil, glerrors.NewSemaphoreError(name, "open", err)
	}

	return &sysvSemaphore{name: name, id: id}, nil
}

func unlinkSysV(name string) error {
	id, err := semget(sysvKey(name), 0)
	if err != nil {
		return glerrors.NewSemaphoreError(name, "unlink", err)
	}
	if _, err := semctl(id, ipcRmid, 0); err != nil {
		return glerrors.NewSemaphoreError(name, "unlink", err)
	}
	return nil
}

func (s *sysvSemaphore) Name() string {
	return s.name
}

// TryDecrement never sets SEM_UNDO: a holder that dies keeps the lock
// held until someone releases it explicitly.
func (s *sysvSemaphore) TryDecrement(w Wait) (bool, error) {
	if err := s.guard.enter(); err != nil {
		return false, glerrors.NewSemaphoreError(s.name, "wait", err)
	}
	defer s.guard.exit()

	op := sembuf{num: 0, op: -1}
	if w.IsNoWait() {
		op.flg = ipcNoWait
	}

	var deadline time.Time
	d, bounded := w.Bounded()
	if bounded {
		deadline = time.Now().Add(d)
	}

	for {
		var ts *unix.Timespec
		if bounded {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return false, nil
			}
			t := unix.NsecToTimespec(remaining.Nanoseconds())
			ts = &t
		}

		err := semtimedop(s.id, op, ts)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return false, nil
		}
		return false, glerrors.NewSemaphoreError(s.name, "semop", err)
	}
}

func (s *sysvSemaphore) Increment() error {
	if err := s.guard.enter(); err != nil {
		return glerrors.NewSemaphoreError(s.name, "post", err)
	}
	defer s.guard.exit()

	for {
		err := semtimedop(s.id, sembuf{num: 0, op: 1}, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return glerrors.NewSemaphoreError(s.name, "post", err)
		}
		return nil
	}
}

func (s *sysvSemaphore) Value() (int, error) {
	if err := s.guard.enter(); err != nil {
		return 0, glerrors.NewSemaphoreError(s.name, "getvalue", err)
	}
	defer s.guard.exit()

	v, err := semctl(s.id, semGetVal, 0)
	if err != nil {
		return 0, glerrors.NewSemaphoreError(s.name, "getvalue", err)
	}
	return v, nil
}

// Close only invalidates the handle. System V sets have no per-process
// descriptor to free.
func (s *sysvSemaphore) Close() error {
	return s.guard.close()
}

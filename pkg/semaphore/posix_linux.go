//go:build linux && cgo

package semaphore

/*
#cgo LDFLAGS: -pthread
#include <errno.h>
#include <fcntl.h>
#include <semaphore.h>
#include <stdlib.h>
#include <sys/stat.h>
#include <time.h>

// sem_open is variadic, which cgo cannot call directly.
static sem_t *globallock_sem_open(const char *name, unsigned int value) {
	return sem_open(name, O_CREAT, 0600, value);
}

static int globallock_sem_failed(sem_t *sem) {
	return sem == SEM_FAILED;
}
*/
import "C"

import (
	"errors"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	glerrors "github.com/bashhack/globallock/pkg/errors"
)

const posixSupported = true

type posixSemaphore struct {
	name  string
	sem   *C.sem_t
	guard guard
}

func openPOSIX(name string, initial uint) (Semaphore, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	sem, err := C.globallock_sem_open(cname, C.uint(initial))
	if C.globallock_sem_failed(sem) != 0 {
		return nil, glerrors.NewSemaphoreError(name, "open", err)
	}

	s := &posixSemaphore{name: name, sem: sem}
	s.guard.release = func() error {
		if rc, err := C.sem_close(s.sem); rc != 0 {
			return glerrors.NewSemaphoreError(s.name, "close", err)
		}
		return nil
	}
	return s, nil
}

func unlinkPOSIX(name string) error {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	if rc, err := C.sem_unlink(cname); rc != 0 {
		return glerrors.NewSemaphoreError(name, "unlink", err)
	}
	return nil
}

func (s *posixSemaphore) Name() string {
	return s.name
}

func (s *posixSemaphore) TryDecrement(w Wait) (bool, error) {
	if err := s.guard.enter(); err != nil {
		return false, glerrors.NewSemaphoreError(s.name, "wait", err)
	}
	defer s.guard.exit()

	switch {
	case w.IsNoWait():
		for {
			rc, err := C.sem_trywait(s.sem)
			switch {
			case rc == 0:
				return true, nil
			case errors.Is(err, unix.EINTR):
				continue
			case errors.Is(err, unix.EAGAIN):
				return false, nil
			}
			return false, glerrors.NewSemaphoreError(s.name, "trywait", err)
		}

	case w.IsForever():
		for {
			rc, err := C.sem_wait(s.sem)
			switch {
			case rc == 0:
				return true, nil
			case errors.Is(err, unix.EINTR):
				continue
			}
			return false, glerrors.NewSemaphoreError(s.name, "wait", err)
		}
	}

	// sem_timedwait takes an absolute CLOCK_REALTIME deadline, so retries
	// after EINTR keep the original budget.
	d, _ := w.Bounded()
	deadline := time.Now().Add(d)
	ts := C.struct_timespec{
		tv_sec:  C.time_t(deadline.Unix()),
		tv_nsec: C.long(deadline.Nanosecond()),
	}
	for {
		rc, err := C.sem_timedwait(s.sem, &ts)
		switch {
		case rc == 0:
			return true, nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ETIMEDOUT):
			return false, nil
		}
		return false, glerrors.NewSemaphoreError(s.name, "timedwait", err)
	}
}

func (s *posixSemaphore) Increment() error {
	if err := s.guard.enter(); err != nil {
		return glerrors.NewSemaphoreError(s.name, "post", err)
	}
	defer s.guard.exit()

	if rc, err := C.sem_post(s.sem); rc != 0 {
		return glerrors.NewSemaphoreError(s.name, "post", err)
	}
	return nil
}

func (s *posixSemaphore) Value() (int, error) {
	if err := s.guard.enter(); err != nil {
		return 0, glerrors.NewSemaphoreError(s.name, "getvalue", err)
	}
	defer s.guard.exit()

	var v C.int
	if rc, err := C.sem_getvalue(s.sem, &v); rc != 0 {
		return 0, glerrors.NewSemaphoreError(s.name, "getvalue", err)
	}
	return int(v), nil
}

func (s *posixSemaphore) Close() error {
	return s.guard.close()
}

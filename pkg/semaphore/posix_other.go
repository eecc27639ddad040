//go:build !linux || !cgo

package semaphore

import (
	glerrors "github.com/bashhack/globallock/pkg/errors"
)

// POSIX named semaphores are reached through libc, so the backend needs
// cgo. macOS lacks sem_timedwait and sem_getvalue and is not supported.
const posixSupported = false

func openPOSIX(name string, _ uint) (Semaphore, error) {
	return nil, glerrors.NewSemaphoreError(name, "open",
		glerrors.Wrap(glerrors.ErrBackendUnavailable, "posix semaphores require linux and CGO_ENABLED=1"))
}

func unlinkPOSIX(name string) error {
	return glerrors.NewSemaphoreError(name, "unlink",
		glerrors.Wrap(glerrors.ErrBackendUnavailable, "posix semaphores require linux and CGO_ENABLED=1"))
}

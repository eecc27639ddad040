//go:build !linux || !(amd64 || arm64)

package semaphore

import (
	glerrors "github.com/bashhack/globallock/pkg/errors"
)

const sysvSupported = false

func openSysV(name string, _ uint) (Semaphore, error) {
	return nil, glerrors.NewSemaphoreError(name, "open",
		glerrors.Wrap(glerrors.ErrBackendUnavailable, "sysv semaphores are supported on linux/amd64 and linux/arm64"))
}

func unlinkSysV(name string) error {
	return glerrors.NewSemaphoreError(name, "unlink",
		glerrors.Wrap(glerrors.ErrBackendUnavailable, "sysv semaphores are supported on linux/amd64 and linux/arm64"))
}

package lock

import (
	"time"
)

// AutoRelease is a release scheduled by ReleaseAfter.
type AutoRelease struct {
	lock  *Lock
	timer *time.Timer
	done  chan struct{}

	released bool
	err      error
}

// ReleaseAfter schedules Release to run once after d on its own
// goroutine. The scheduled release is guarded like any other, so if the
// lock was already released by then it is a logged no-op.
func (l *Lock) ReleaseAfter(d time.Duration) *AutoRelease {
	a := &AutoRelease{
		lock: l,
		done: make(chan struct{}),
	}
	a.timer = time.AfterFunc(d, a.fire)
	return a
}

func (a *AutoRelease) fire() {
	a.released, a.err = a.lock.Release()
	close(a.done)
}

// Stop cancels the release if it has not run yet and reports whether it
// cancelled it. A cancelled AutoRelease is Done with a false result.
func (a *AutoRelease) Stop() bool {
	if !a.timer.Stop() {
		return false
	}
	close(a.done)
	return true
}

// ReleaseNow runs the release immediately if it is still pending, then
// waits for it and returns its result.
func (a *AutoRelease) ReleaseNow() (bool, error) {
	if a.timer.Stop() {
		a.fire()
	}
	<-a.done
	return a.Result()
}

// Done is closed once the release has run or was stopped.
func (a *AutoRelease) Done() <-chan struct{} {
	return a.done
}

// Result returns what the scheduled Release returned. Only meaningful
// after Done is closed.
func (a *AutoRelease) Result() (bool, error) {
	return a.released, a.err
}

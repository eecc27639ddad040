package lock

import (
	"context"
	"time"

	glerrors "github.com/bashhack/globallock/pkg/errors"
)

// Trace reports a snapshot of the lock right away and then every interval
// until ctx ends, when it returns ctx.Err(). Cancellation is checked
// between readings. A failed reading stops the trace with that error.
func (l *Lock) Trace(ctx context.Context, every time.Duration, fn func(Snapshot)) error {
	if every <= 0 {
		return glerrors.Errorf("trace interval must be positive, got %v", every)
	}

	emit := func() error {
		s, err := l.Snapshot()
		if err != nil {
			return err
		}
		fn(s)
		return nil
	}

	if err := emit(); err != nil {
		return err
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if err := emit(); err != nil {
				return err
			}
		}
	}
}

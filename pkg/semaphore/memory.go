package semaphore

import (
	"sync"
	"syscall"
	"time"

	glerrors "github.com/bashhack/globallock/pkg/errors"
)

// memoryRegistry maps namespaced names to counters for BackendMemory.
var memoryRegistry = struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
}{
	counters: make(map[string]*memoryCounter),
}

// memoryCounter is a counting semaphore. Waiters park on changed, which
// is closed and replaced on every increment.
type memoryCounter struct {
	mu      sync.Mutex
	value   int
	changed chan struct{}
}

func openMemory(name string, initial uint) Semaphore {
	memoryRegistry.mu.Lock()
	defer memoryRegistry.mu.Unlock()

	c, ok := memoryRegistry.counters[name]
	if !ok {
		c = &memoryCounter{
			value:   int(initial),
			changed: make(chan struct{}),
		}
		memoryRegistry.counters[name] = c
	}

	return &memorySemaphore{name: name, counter: c}
}

func unlinkMemory(name string) error {
	memoryRegistry.mu.Lock()
	defer memoryRegistry.mu.Unlock()

	if _, ok := memoryRegistry.counters[name]; !ok {
		return glerrors.NewSemaphoreError(name, "unlink", syscall.ENOENT)
	}
	delete(memoryRegistry.counters, name)
	return nil
}

type memorySemaphore struct {
	name    string
	counter *memoryCounter
	guard   guard
}

func (s *memorySemaphore) Name() string {
	return s.name
}

func (s *memorySemaphore) TryDecrement(w Wait) (bool, error) {
	if err := s.guard.enter(); err != nil {
		return false, glerrors.NewSemaphoreError(s.name, "wait", err)
	}
	defer s.guard.exit()

	var expired <-chan time.Time
	if d, ok := w.Bounded(); ok {
		timer := time.NewTimer(d)
		defer timer.Stop()
		expired = timer.C
	}

	c := s.counter
	for {
		c.mu.Lock()
		if c.value > 0 {
			c.value--
			c.mu.Unlock()
			return true, nil
		}
		changed := c.changed
		c.mu.Unlock()

		if w.IsNoWait() {
			return false, nil
		}

		select {
		case <-changed:
		case <-expired:
			return false, nil
		}
	}
}

func (s *memorySemaphore) Increment() error {
	if err := s.guard.enter(); err != nil {
		return glerrors.NewSemaphoreError(s.name, "post", err)
	}
	defer s.guard.exit()

	c := s.counter
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value++
	close(c.changed)
	c.changed = make(chan struct{})
	return nil
}

func (s *memorySemaphore) Value() (int, error) {
	if err := s.guard.enter(); err != nil {
		return 0, glerrors.NewSemaphoreError(s.name, "getvalue", err)
	}
	defer s.guard.exit()

	s.counter.mu.Lock()
	defer s.counter.mu.Unlock()
	return s.counter.value, nil
}

func (s *memorySemaphore) Close() error {
	return s.guard.close()
}

// Package semaphore binds named, system-wide counting semaphores.
//
// A Semaphore is opened by name and created on first use with an initial
// value. Every process that opens the same name on the same backend shares
// one counter. The counter outlives every handle: Close frees only the
// local handle, and the object stays until Unlink removes it or the host
// restarts.
//
// # Backends
//
//   - BackendPOSIX: POSIX named semaphores via libc (linux, cgo). Names are
//     visible to any other program that uses the same POSIX name, for
//     example Python's posix_ipc.
//   - BackendSysV: System V semaphore sets via raw syscalls (linux amd64
//     and arm64, no cgo). The IPC key is a 31-bit xxh3 hash of the name,
//     so two names can collide and then share one lock.
//   - BackendMemory: a process-local registry with the same contract.
//
// DefaultBackend picks the first one compiled in, in that order.
//
// # Names
//
// Callers pass a bare logical name such as "i2c-bus". Prefix is added
// when missing, so "i2c-bus" and "/i2c-bus" refer to the same object.
//
// # Waiting
//
// TryDecrement takes a Wait rather than a number so that an unbounded
// wait is always spelled out:
//
//	sem.TryDecrement(semaphore.NoWait())                 // one attempt
//	sem.TryDecrement(semaphore.Within(2 * time.Second))  // bounded
//	sem.TryDecrement(semaphore.Forever())                // may hang
//
// A wait that runs out returns false with a nil error. Waits suspend in
// the kernel; nothing polls.
package semaphore

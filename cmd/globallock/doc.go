// Package main implements globallock, a command-line driver for named
// system-wide locks.
//
// Every invocation opens the lock called LOCK_NAME, creating it unlocked
// if it does not exist, and runs one command against it. Separate
// invocations coordinate through the OS semaphore alone, which makes the
// tool handy for exercising and recovering locks shared with other
// programs.
//
// # Basic Usage
//
//	globallock i2c-bus get             # Wait up to 0.5s for the lock
//	globallock i2c-bus get -t -1       # Wait forever
//	globallock i2c-bus get -a 3        # Hold it for 3 seconds, then release
//	globallock i2c-bus unget           # Release it
//	globallock i2c-bus state -json     # Print a JSON snapshot
//	globallock -u 0.1 i2c-bus trace    # Watch it until Ctrl-C
//	globallock i2c-bus remove          # Delete the OS object
//
// # Exit Status
//
// 0 when the command ran, including a get that timed out and an unget of
// a lock that was not held. 1 on invalid arguments or an OS failure.
//
// # Signals
//
// SIGINT, SIGTERM and SIGHUP stop a pending get or trace. During a
// pending -a delay they release the lock at once. A lock acquired without
// -a stays held after the process exits.
package main

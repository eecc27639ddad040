// Package config provides configuration management for globallock.
//
// Settings come from three layers, later ones winning:
//
//  1. Defaults from New
//  2. GLOBALLOCK_* environment variables, via LoadFromEnvironment
//  3. Command-line flags, via ParseArgs
//
// Finalize then validates the result and fills in derived values such as
// the resolved semaphore backend and the default debug log path.
//
// # Usage
//
//	cfg := config.New()
//	cfg.LoadFromEnvironment()
//	if err := cfg.ParseArgs(os.Args[1:]); err != nil {
//	    // invalid flags or missing positionals
//	}
//	if err := cfg.Finalize(); err != nil {
//	    // invalid values
//	}
//
// # Auto-unget
//
// -a takes an optional value. A bare -a means a zero delay. "-a 2" is read
// as a delay of 2 only when LOCK_NAME and the command are both still
// present without it; otherwise the 2 is a positional argument.
//
// Errors are *errors.ConfigError values naming the offending parameter.
package config

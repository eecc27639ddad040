// Package constants provides application-wide constant values for globallock.
//
// # Core Components
//
//   - Tagline: the one-line description shown in help and version output
//   - Command names and their help text
//
// # Usage
//
//	import "github.com/bashhack/globallock/pkg/constants"
//
//	if !constants.IsCommand(cmd) {
//	    // reject
//	}
package constants

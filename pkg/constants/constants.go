package constants

// Tagline is printed above the usage text and by -version.
const Tagline = "globallock: a system-wide named lock"

// Commands in the order they are listed in help output.
const (
	CommandGet    = "get"
	CommandUnget  = "unget"
	CommandState  = "state"
	CommandTrace  = "trace"
	CommandRemove = "remove"
)

// Commands lists every command the driver accepts.
var Commands = []string{CommandGet, CommandUnget, CommandState, CommandTrace, CommandRemove}

// CommandHelp describes each command for the usage text.
var CommandHelp = map[string]string{
	CommandGet:    "Acquire LOCK_NAME. -a releases it again after a delay, if the acquire succeeded.",
	CommandUnget:  "Release LOCK_NAME. Releasing a lock that is not held is reported and ignored.",
	CommandState:  "Print the current state of LOCK_NAME.",
	CommandTrace:  "Print the state of LOCK_NAME every -u seconds until interrupted.",
	CommandRemove: "Delete the named OS object behind LOCK_NAME.",
}

// IsCommand reports whether name is a known command.
func IsCommand(name string) bool {
	_, ok := CommandHelp[name]
	return ok
}

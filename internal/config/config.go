package config

import (
	"crypto/sha256"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bashhack/globallock/pkg/constants"
	glerrors "github.com/bashhack/globallock/pkg/errors"
	"github.com/bashhack/globallock/pkg/semaphore"
)

const (
	// DefaultGetTimeout is how long, in seconds, `get` waits for a held
	// lock. -1 waits forever, 0 tries once.
	DefaultGetTimeout = 0.5

	// DefaultUpdate is the `trace` polling period in seconds.
	DefaultUpdate = 0.5

	// envPrefix namespaces every environment variable read by LoadFromEnvironment.
	envPrefix = "GLOBALLOCK_"
)

// Config holds all globallock settings.
// Defaults are overridden by environment variables, which are in turn
// overridden by command-line flags.
type Config struct {
	// Positional arguments

	// LockName is the logical lock name. The "/" namespace prefix is optional.
	LockName string

	// Command is one of constants.Commands.
	Command string

	// Lock options

	// GetTimeout is the `get` wait budget in seconds. -1 waits forever,
	// 0 tries once.
	GetTimeout float64

	// AutoUnget is the delay in seconds before a successful `get` is
	// released again. Only used when AutoUngetSet is true.
	AutoUnget float64

	// AutoUngetSet records whether -a was given at all. A bare -a sets
	// it with a zero delay.
	AutoUngetSet bool

	// Update is the `trace` polling period in seconds.
	Update float64

	// BackendName is the semaphore backend as given by the user.
	// Empty selects the platform default.
	BackendName string

	// Backend is BackendName resolved by Finalize.
	Backend semaphore.Backend

	// Output options

	// JSON prints `state` and `trace` snapshots as one JSON object per line.
	JSON bool

	// Verbose echoes internal warnings to stdout.
	Verbose bool

	// Debug enables the debug log file.
	Debug bool

	// LogFile is where debug logs go. Defaults to a per-lock file under
	// the XDG data directory.
	LogFile string

	// Special flags

	// Version indicates whether to show version information and exit.
	Version bool

	// ShowHelp indicates whether to display the help message and exit.
	ShowHelp bool

	// VersionInfo contains version, commit, and build date information.
	// This is typically injected at build time.
	VersionInfo VersionInfo
}

// VersionInfo contains build-time version metadata.
type VersionInfo struct {
	// Version is the semantic version number (e.g., "v1.2.3").
	Version string

	// Commit is the Git commit hash from which the binary was built.
	Commit string

	// Date is the build timestamp in human-readable format.
	Date string
}

// New creates a new Config with default values
func New() *Config {
	return &Config{
		GetTimeout: DefaultGetTimeout,
		Update:     DefaultUpdate,
		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// LoadFromEnvironment updates config from GLOBALLOCK_* environment variables.
// Values that fail to parse leave the current setting untouched.
func (c *Config) LoadFromEnvironment() {
	c.GetTimeout = getEnvFloat(envPrefix+"GET_TIMEOUT", c.GetTimeout)
	c.Update = getEnvFloat(envPrefix+"UPDATE", c.Update)
	c.BackendName = getEnvString(envPrefix+"BACKEND", c.BackendName)
	c.JSON = getEnvBool(envPrefix+"JSON", c.JSON)
	c.Verbose = getEnvBool(envPrefix+"VERBOSE", c.Verbose)
	c.Debug = getEnvBool(envPrefix+"DEBUG", c.Debug)
	c.LogFile = getEnvString(envPrefix+"LOG_FILE", c.LogFile)
}

// SetupFlags registers every flag on fs, bound to c.
func (c *Config) SetupFlags(fs *flag.FlagSet) {
	auto := &autoUngetValue{seconds: &c.AutoUnget, set: &c.AutoUngetSet}

	fs.Float64Var(&c.GetTimeout, "t", c.GetTimeout, "Seconds get waits for the lock (-1 waits forever, 0 tries once)")
	fs.Float64Var(&c.GetTimeout, "get-timeout", c.GetTimeout, "Same as -t")
	fs.Var(auto, "a", "Release the lock this many seconds after a successful get (bare -a releases at once)")
	fs.Var(auto, "auto-unget", "Same as -a")
	fs.Float64Var(&c.Update, "u", c.Update, "Seconds between trace updates")
	fs.Float64Var(&c.Update, "update", c.Update, "Same as -u")
	fs.StringVar(&c.BackendName, "backend", c.BackendName, "Semaphore backend: posix, sysv or memory (default: first available)")
	fs.BoolVar(&c.JSON, "json", c.JSON, "Print state and trace output as JSON lines")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "Echo internal warnings to stdout")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging to a file")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Path to log file (default: ~/.local/share/globallock/logs/globallock-{name-hash}.log)")
	fs.BoolVar(&c.Version, "version", c.Version, "Print version information and exit")
	fs.BoolVar(&c.ShowHelp, "help", c.ShowHelp, "Display help message and exit")
}

// newFlagSet returns a silent FlagSet bound to c.
func (c *Config) newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("globallock", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	c.SetupFlags(fs)
	return fs
}

// PrintUsage prints a formatted help message with commands, examples, and grouped flags
func (c *Config) PrintUsage(w io.Writer) {
	// Bind a throwaway copy so the printed defaults are the current settings
	// without the FlagSet writing back into c.
	scratch := *c
	fs := scratch.newFlagSet()
	programName := filepath.Base(os.Args[0])

	_, _ = fmt.Fprintf(w, "%s\n\n", constants.Tagline)
	_, _ = fmt.Fprintf(w, "Usage: %s [options] LOCK_NAME {%s}\n\n", programName, strings.Join(constants.Commands, ","))
	_, _ = fmt.Fprintf(w, "Every process that opens the same LOCK_NAME shares one lock.\n")
	_, _ = fmt.Fprintf(w, "Options may appear before, between or after the positional arguments.\n\n")

	_, _ = fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range constants.Commands {
		_, _ = fmt.Fprintf(w, "  %-8s %s\n", cmd, constants.CommandHelp[cmd])
	}
	_, _ = fmt.Fprintf(w, "\n")

	_, _ = fmt.Fprintf(w, "Examples:\n")
	_, _ = fmt.Fprintf(w, "  %s i2c-bus get -t 2          # Wait up to 2 seconds for the lock\n", programName)
	_, _ = fmt.Fprintf(w, "  %s i2c-bus get -a 5          # Hold the lock for 5 seconds\n", programName)
	_, _ = fmt.Fprintf(w, "  %s i2c-bus unget             # Release it\n", programName)
	_, _ = fmt.Fprintf(w, "  %s -u 0.1 i2c-bus trace      # Watch it every 100ms\n\n", programName)

	_, _ = fmt.Fprintf(w, "Lock Options:\n")
	printFlagIfExists(w, fs, "t")
	printFlagIfExists(w, fs, "a")
	printFlagIfExists(w, fs, "u")
	printFlagIfExists(w, fs, "backend")
	_, _ = fmt.Fprintf(w, "\n")

	_, _ = fmt.Fprintf(w, "Output Options:\n")
	printFlagIfExists(w, fs, "json")
	printFlagIfExists(w, fs, "verbose")
	printFlagIfExists(w, fs, "debug")
	printFlagIfExists(w, fs, "log-file")
	_, _ = fmt.Fprintf(w, "\n")

	_, _ = fmt.Fprintf(w, "Information:\n")
	printFlagIfExists(w, fs, "version")
	printFlagIfExists(w, fs, "help")
	_, _ = fmt.Fprintf(w, "\n")

	_, _ = fmt.Fprintf(w, "Environment variables:\n")
	_, _ = fmt.Fprintf(w, "  GLOBALLOCK_GET_TIMEOUT    Default for -t\n")
	_, _ = fmt.Fprintf(w, "  GLOBALLOCK_UPDATE         Default for -u\n")
	_, _ = fmt.Fprintf(w, "  GLOBALLOCK_BACKEND        Default for -backend\n")
	_, _ = fmt.Fprintf(w, "  GLOBALLOCK_JSON           JSON output (true/false)\n")
	_, _ = fmt.Fprintf(w, "  GLOBALLOCK_VERBOSE        Echo warnings (true/false)\n")
	_, _ = fmt.Fprintf(w, "  GLOBALLOCK_DEBUG          Enable debug logging (true/false)\n")
	_, _ = fmt.Fprintf(w, "  GLOBALLOCK_LOG_FILE       Path to log file\n")
}

// printFlagIfExists prints a flag's usage if it exists in the FlagSet
func printFlagIfExists(w io.Writer, fs *flag.FlagSet, name string) {
	f := fs.Lookup(name)
	if f == nil {
		return
	}

	defaultValue := f.DefValue
	if defaultValue != "" {
		defaultValue = fmt.Sprintf(" (default: %s)", defaultValue)
	}

	_, _ = fmt.Fprintf(w, "  -%s%s: %s\n", f.Name, defaultValue, f.Usage)
}

// ParseArgs parses flags and the two positional arguments from args,
// which excludes the program name. Flags and positionals may be mixed.
//
// With -help or -version the positionals are not required.
func (c *Config) ParseArgs(args []string) error {
	fs := c.newFlagSet()

	var positionals []string
	remaining := normalizeAutoUnget(args)
	for {
		if err := fs.Parse(remaining); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				c.ShowHelp = true
				return nil
			}
			return glerrors.NewConfigError("flags", nil, glerrors.Wrap(glerrors.ErrInvalidFlag, err.Error()))
		}

		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		positionals = append(positionals, rest[0])
		remaining = rest[1:]
	}

	if c.ShowHelp || c.Version {
		return nil
	}

	if len(positionals) != 2 {
		err := fmt.Errorf("expected LOCK_NAME and a command, got %d positional argument(s)", len(positionals))
		return glerrors.NewConfigError("args", strings.Join(positionals, " "), glerrors.Wrap(glerrors.ErrInvalidFlag, err.Error()))
	}

	c.LockName = positionals[0]
	c.Command = positionals[1]
	return nil
}

// Finalize validates the configuration and fills in derived values.
func (c *Config) Finalize() error {
	if c.ShowHelp || c.Version {
		return nil
	}

	if !constants.IsCommand(c.Command) {
		return glerrors.NewConfigError("command", c.Command,
			glerrors.Wrapf(glerrors.ErrUnknownCommand, "choose from %s", strings.Join(constants.Commands, ", ")))
	}

	if _, err := semaphore.Namespaced(c.LockName); err != nil {
		return glerrors.NewConfigError("lockName", c.LockName, err)
	}

	for param, v := range map[string]float64{"getTimeout": c.GetTimeout, "autoUnget": c.AutoUnget, "update": c.Update} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return glerrors.NewConfigError(param, v, glerrors.Wrap(glerrors.ErrInvalidConfiguration, "value must be a finite number"))
		}
	}

	if c.GetTimeout < 0 && c.GetTimeout != -1 {
		err := fmt.Errorf("invalid get timeout: %g (must be >= 0, or -1 to wait forever)", c.GetTimeout)
		return glerrors.NewConfigError("getTimeout", c.GetTimeout, glerrors.Wrap(glerrors.ErrInvalidConfiguration, err.Error()))
	}

	if c.AutoUngetSet && c.AutoUnget < 0 {
		err := fmt.Errorf("invalid auto-unget delay: %g (must be >= 0)", c.AutoUnget)
		return glerrors.NewConfigError("autoUnget", c.AutoUnget, glerrors.Wrap(glerrors.ErrInvalidConfiguration, err.Error()))
	}

	if c.Update <= 0 {
		err := fmt.Errorf("invalid update period: %g (must be greater than 0)", c.Update)
		return glerrors.NewConfigError("update", c.Update, glerrors.Wrap(glerrors.ErrInvalidConfiguration, err.Error()))
	}

	backend, err := semaphore.ParseBackend(c.BackendName)
	if err != nil {
		return glerrors.NewConfigError("backend", c.BackendName, glerrors.Wrap(glerrors.ErrInvalidConfiguration, err.Error()))
	}
	if !semaphore.Available(backend) {
		return glerrors.NewConfigError("backend", c.BackendName,
			glerrors.Wrapf(glerrors.ErrBackendUnavailable, "%s is not supported on this platform", backend))
	}
	c.Backend = backend

	if c.Debug && c.LogFile == "" {
		// Follow XDG Base Directory Specification
		logDir := os.Getenv("XDG_DATA_HOME")
		if logDir == "" {
			homeDir, err := os.UserHomeDir()
			if err == nil {
				logDir = filepath.Join(homeDir, ".local", "share")
			} else {
				logDir = os.TempDir()
			}
		}

		nameHash := fmt.Sprintf("%x", sha256OfString(c.LockName)[:8])
		c.LogFile = filepath.Join(logDir, "globallock", "logs", fmt.Sprintf("globallock-%s.log", nameHash))

		if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o700); err != nil {
			return glerrors.NewConfigError("logFile", c.LogFile, glerrors.Wrap(err, "cannot create log directory"))
		}
	}

	return nil
}

// GetWait converts GetTimeout to a semaphore wait.
func (c *Config) GetWait() semaphore.Wait {
	return semaphore.Seconds(c.GetTimeout)
}

// AutoUngetDelay converts AutoUnget to a Duration, saturating at the
// largest Duration for very long delays.
func (c *Config) AutoUngetDelay() time.Duration {
	return semaphore.SecondsToDuration(c.AutoUnget)
}

// UpdateInterval converts Update to the trace polling Duration.
func (c *Config) UpdateInterval() time.Duration {
	return semaphore.SecondsToDuration(c.Update)
}

// autoUngetValue backs -a. It is a bool-style flag so that a bare -a is
// accepted, while -a=N carries a delay.
type autoUngetValue struct {
	seconds *float64
	set     *bool
}

func (v *autoUngetValue) String() string {
	if v == nil || v.set == nil || !*v.set {
		return ""
	}
	return strconv.FormatFloat(*v.seconds, 'f', -1, 64)
}

func (v *autoUngetValue) Set(s string) error {
	switch s {
	case "true":
		*v.seconds, *v.set = 0, true
		return nil
	case "false":
		*v.seconds, *v.set = 0, false
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid delay %q", s)
	}
	*v.seconds, *v.set = f, true
	return nil
}

func (v *autoUngetValue) IsBoolFlag() bool {
	return true
}

// valueFlags are the flags that consume the following argument when
// written without "=".
var valueFlags = map[string]bool{
	"t": true, "get-timeout": true,
	"u": true, "update": true,
	"backend": true, "log-file": true,
}

// normalizeAutoUnget rewrites "-a N" to "-a=N" when N is a number and two
// positional arguments still remain without it. Otherwise -a stays bare
// and N is left for the positionals, so "-a 2 get" names a lock "2".
func normalizeAutoUnget(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if isAutoUngetFlag(arg) && i+1 < len(args) {
			if _, err := strconv.ParseFloat(args[i+1], 64); err == nil &&
				countPositionals(out)+countPositionals(args[i+2:]) >= 2 {
				out = append(out, arg+"="+args[i+1])
				i++
				continue
			}
		}
		out = append(out, arg)
	}
	return out
}

func isAutoUngetFlag(arg string) bool {
	switch arg {
	case "-a", "--a", "-auto-unget", "--auto-unget":
		return true
	}
	return false
}

// countPositionals counts the non-flag arguments in args.
func countPositionals(args []string) int {
	n := 0
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return n + len(args) - i - 1
		}
		if len(arg) < 2 || arg[0] != '-' {
			n++
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if valueFlags[name] {
			i++
		}
	}
	return n
}

// getEnvString returns an environment variable string or a default value
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvFloat returns an environment variable as float64 or a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvBool returns an environment variable as bool or a default value
func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		valueLower := strings.ToLower(valueStr)
		if valueLower == "true" || valueLower == "1" || valueLower == "yes" {
			return true
		}
		if valueLower == "false" || valueLower == "0" || valueLower == "no" {
			return false
		}
		// For any other value, fall back to default
	}
	return defaultValue
}

// sha256OfString returns the SHA256 hash of a string
func sha256OfString(input string) []byte {
	hash := sha256.Sum256([]byte(input))
	return hash[:]
}

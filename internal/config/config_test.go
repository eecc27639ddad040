package config

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	glerrors "github.com/bashhack/globallock/pkg/errors"
	"github.com/bashhack/globallock/pkg/semaphore"
)

func TestNewConfig(t *testing.T) {
	c := New()

	if c.GetTimeout != DefaultGetTimeout {
		t.Errorf("Expected GetTimeout=%v, got %v", DefaultGetTimeout, c.GetTimeout)
	}
	if c.Update != DefaultUpdate {
		t.Errorf("Expected Update=%v, got %v", DefaultUpdate, c.Update)
	}
	if c.AutoUngetSet {
		t.Errorf("Expected AutoUngetSet=false, got true")
	}
	if c.JSON || c.Debug || c.Verbose {
		t.Errorf("Expected output options off, got JSON=%v Debug=%v Verbose=%v", c.JSON, c.Debug, c.Verbose)
	}
	if c.VersionInfo.Version != "dev" {
		t.Errorf("Expected Version=dev, got %s", c.VersionInfo.Version)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GLOBALLOCK_GET_TIMEOUT", "2.5")
	t.Setenv("GLOBALLOCK_UPDATE", "0.1")
	t.Setenv("GLOBALLOCK_BACKEND", "memory")
	t.Setenv("GLOBALLOCK_JSON", "yes")
	t.Setenv("GLOBALLOCK_VERBOSE", "1")
	t.Setenv("GLOBALLOCK_DEBUG", "true")
	t.Setenv("GLOBALLOCK_LOG_FILE", "/tmp/globallock-test.log")

	c := New()
	c.LoadFromEnvironment()

	assert.Equal(t, 2.5, c.GetTimeout)
	assert.Equal(t, 0.1, c.Update)
	assert.Equal(t, "memory", c.BackendName)
	assert.True(t, c.JSON)
	assert.True(t, c.Verbose)
	assert.True(t, c.Debug)
	assert.Equal(t, "/tmp/globallock-test.log", c.LogFile)
}

func TestLoadFromEnvironment_InvalidValuesKeepDefaults(t *testing.T) {
	t.Setenv("GLOBALLOCK_GET_TIMEOUT", "soon")
	t.Setenv("GLOBALLOCK_DEBUG", "maybe")

	c := New()
	c.LoadFromEnvironment()

	assert.Equal(t, DefaultGetTimeout, c.GetTimeout)
	assert.False(t, c.Debug)
}

func TestParseArgs(t *testing.T) {
	tests := map[string]struct {
		args          []string
		wantName      string
		wantCommand   string
		wantTimeout   float64
		wantAuto      float64
		wantAutoSet   bool
		wantUpdate    float64
		wantBackend   string
		wantJSON      bool
		wantHelp      bool
		wantVersion   bool
		expectedError bool
	}{
		"PositionalsOnly": {
			args:        []string{"bus", "get"},
			wantName:    "bus",
			wantCommand: "get",
			wantTimeout: DefaultGetTimeout,
			wantUpdate:  DefaultUpdate,
		},
		"FlagsFirst": {
			args:        []string{"-t", "2", "-u", "0.25", "bus", "trace"},
			wantName:    "bus",
			wantCommand: "trace",
			wantTimeout: 2,
			wantUpdate:  0.25,
		},
		"FlagsInterleaved": {
			args:        []string{"bus", "-t", "-1", "get", "-json"},
			wantName:    "bus",
			wantCommand: "get",
			wantTimeout: -1,
			wantUpdate:  DefaultUpdate,
			wantJSON:    true,
		},
		"LongAliases": {
			args:        []string{"--get-timeout=3", "--update", "1", "bus", "state", "--backend", "memory"},
			wantName:    "bus",
			wantCommand: "state",
			wantTimeout: 3,
			wantUpdate:  1,
			wantBackend: "memory",
		},
		"BareAutoUngetAtEnd": {
			args:        []string{"bus", "get", "-a"},
			wantName:    "bus",
			wantCommand: "get",
			wantTimeout: DefaultGetTimeout,
			wantUpdate:  DefaultUpdate,
			wantAutoSet: true,
		},
		"AutoUngetWithEquals": {
			args:        []string{"-a=1.5", "bus", "get"},
			wantName:    "bus",
			wantCommand: "get",
			wantTimeout: DefaultGetTimeout,
			wantUpdate:  DefaultUpdate,
			wantAuto:    1.5,
			wantAutoSet: true,
		},
		"AutoUngetWithSpace": {
			args:        []string{"-a", "2", "bus", "get"},
			wantName:    "bus",
			wantCommand: "get",
			wantTimeout: DefaultGetTimeout,
			wantUpdate:  DefaultUpdate,
			wantAuto:    2,
			wantAutoSet: true,
		},
		"AutoUngetWithSpaceAfterPositionals": {
			args:        []string{"bus", "get", "-a", "2"},
			wantName:    "bus",
			wantCommand: "get",
			wantTimeout: DefaultGetTimeout,
			wantUpdate:  DefaultUpdate,
			wantAuto:    2,
			wantAutoSet: true,
		},
		"NumericLockNameAfterBareAutoUnget": {
			args:        []string{"-a", "2", "get"},
			wantName:    "2",
			wantCommand: "get",
			wantTimeout: DefaultGetTimeout,
			wantUpdate:  DefaultUpdate,
			wantAutoSet: true,
		},
		"Help": {
			args:        []string{"-help"},
			wantTimeout: DefaultGetTimeout,
			wantUpdate:  DefaultUpdate,
			wantHelp:    true,
		},
		"ShortHelp": {
			args:        []string{"bus", "-h"},
			wantTimeout: DefaultGetTimeout,
			wantUpdate:  DefaultUpdate,
			wantHelp:    true,
		},
		"Version": {
			args:        []string{"-version"},
			wantTimeout: DefaultGetTimeout,
			wantUpdate:  DefaultUpdate,
			wantVersion: true,
		},
		"MissingCommand": {
			args:          []string{"bus"},
			expectedError: true,
		},
		"TooManyPositionals": {
			args:          []string{"bus", "get", "now"},
			expectedError: true,
		},
		"UnknownFlag": {
			args:          []string{"-x", "bus", "get"},
			expectedError: true,
		},
		"BadTimeout": {
			args:          []string{"-t", "soon", "bus", "get"},
			expectedError: true,
		},
		"BadAutoUnget": {
			args:          []string{"-a=later", "bus", "get"},
			expectedError: true,
		},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := New()
			err := c.ParseArgs(test.args)

			if test.expectedError {
				require.Error(t, err)
				assert.True(t, glerrors.Is(err, glerrors.ErrInvalidFlag), "got %v", err)

				var cfgErr *glerrors.ConfigError
				assert.True(t, glerrors.As(err, &cfgErr))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.wantName, c.LockName)
			assert.Equal(t, test.wantCommand, c.Command)
			assert.Equal(t, test.wantTimeout, c.GetTimeout)
			assert.Equal(t, test.wantAuto, c.AutoUnget)
			assert.Equal(t, test.wantAutoSet, c.AutoUngetSet)
			assert.Equal(t, test.wantUpdate, c.Update)
			assert.Equal(t, test.wantBackend, c.BackendName)
			assert.Equal(t, test.wantJSON, c.JSON)
			assert.Equal(t, test.wantHelp, c.ShowHelp)
			assert.Equal(t, test.wantVersion, c.Version)
		})
	}
}

func TestParseArgs_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("GLOBALLOCK_GET_TIMEOUT", "9")

	c := New()
	c.LoadFromEnvironment()
	require.NoError(t, c.ParseArgs([]string{"bus", "get", "-t", "1"}))

	assert.Equal(t, 1.0, c.GetTimeout)
}

func TestCountPositionals(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		args []string
		want int
	}{
		"Empty":           {args: nil, want: 0},
		"Plain":           {args: []string{"bus", "get"}, want: 2},
		"ValueFlag":       {args: []string{"-t", "2", "bus"}, want: 1},
		"ValueFlagEquals": {args: []string{"-t=2", "bus"}, want: 1},
		"BoolFlag":        {args: []string{"-json", "bus"}, want: 1},
		"Terminator":      {args: []string{"--", "-bus", "get"}, want: 2},
		"NegativeValue":   {args: []string{"-t", "-1"}, want: 0},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.want, countPositionals(test.args))
		})
	}
}

func TestFinalize(t *testing.T) {
	tests := map[string]struct {
		mutate  func(c *Config)
		wantErr error
		param   string
	}{
		"Valid": {
			mutate: func(c *Config) {},
		},
		"ForeverTimeout": {
			mutate: func(c *Config) { c.GetTimeout = -1 },
		},
		"ZeroTimeout": {
			mutate: func(c *Config) { c.GetTimeout = 0 },
		},
		"ZeroAutoUnget": {
			mutate: func(c *Config) { c.AutoUngetSet, c.AutoUnget = true, 0 },
		},
		"NegativeTimeout": {
			mutate:  func(c *Config) { c.GetTimeout = -2 },
			wantErr: glerrors.ErrInvalidConfiguration,
			param:   "getTimeout",
		},
		"NegativeAutoUnget": {
			mutate:  func(c *Config) { c.AutoUngetSet, c.AutoUnget = true, -1 },
			wantErr: glerrors.ErrInvalidConfiguration,
			param:   "autoUnget",
		},
		"ZeroUpdate": {
			mutate:  func(c *Config) { c.Update = 0 },
			wantErr: glerrors.ErrInvalidConfiguration,
			param:   "update",
		},
		"UnknownCommand": {
			mutate:  func(c *Config) { c.Command = "lock" },
			wantErr: glerrors.ErrUnknownCommand,
			param:   "command",
		},
		"EmptyName": {
			mutate:  func(c *Config) { c.LockName = "" },
			wantErr: glerrors.ErrInvalidName,
			param:   "lockName",
		},
		"NestedName": {
			mutate:  func(c *Config) { c.LockName = "a/b" },
			wantErr: glerrors.ErrInvalidName,
			param:   "lockName",
		},
		"UnknownBackend": {
			mutate:  func(c *Config) { c.BackendName = "futex" },
			wantErr: glerrors.ErrInvalidConfiguration,
			param:   "backend",
		},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := New()
			c.LockName = "bus"
			c.Command = "get"
			c.BackendName = "memory"
			test.mutate(c)

			err := c.Finalize()
			if test.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, semaphore.BackendMemory, c.Backend)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, test.wantErr)

			var cfgErr *glerrors.ConfigError
			require.True(t, glerrors.As(err, &cfgErr))
			assert.Equal(t, test.param, cfgErr.Parameter)
		})
	}
}

func TestFinalize_DefaultBackend(t *testing.T) {
	c := New()
	c.LockName = "bus"
	c.Command = "state"

	require.NoError(t, c.Finalize())
	assert.Equal(t, semaphore.DefaultBackend(), c.Backend)
}

func TestFinalize_SkipsValidationForHelpAndVersion(t *testing.T) {
	c := New()
	c.ShowHelp = true
	assert.NoError(t, c.Finalize())

	c = New()
	c.Version = true
	assert.NoError(t, c.Finalize())
}

func TestFinalize_DefaultLogFile(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	c := New()
	c.LockName = "bus"
	c.Command = "get"
	c.BackendName = "memory"
	c.Debug = true

	require.NoError(t, c.Finalize())

	expectedDir := filepath.Join(dataHome, "globallock", "logs")
	assert.Equal(t, expectedDir, filepath.Dir(c.LogFile))
	assert.True(t, strings.HasPrefix(filepath.Base(c.LogFile), "globallock-"))
	assert.True(t, strings.HasSuffix(c.LogFile, ".log"))

	info, err := os.Stat(expectedDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	other := New()
	other.LockName = "another-bus"
	other.Command = "get"
	other.BackendName = "memory"
	other.Debug = true
	require.NoError(t, other.Finalize())
	assert.NotEqual(t, c.LogFile, other.LogFile, "each lock name logs to its own file")
}

func TestFinalize_NoLogFileWithoutDebug(t *testing.T) {
	c := New()
	c.LockName = "bus"
	c.Command = "get"
	c.BackendName = "memory"

	require.NoError(t, c.Finalize())
	assert.Empty(t, c.LogFile)
}

func TestGetWait(t *testing.T) {
	t.Parallel()

	c := New()
	assert.Equal(t, semaphore.Seconds(DefaultGetTimeout), c.GetWait())

	c.GetTimeout = -1
	assert.True(t, c.GetWait().IsForever())

	c.GetTimeout = 0
	assert.True(t, c.GetWait().IsNoWait())
}

func TestLargeValuesDoNotOverflow(t *testing.T) {
	t.Parallel()

	c := New()
	require.NoError(t, c.ParseArgs([]string{"-t", "1e10", "-a=1e10", "-u", "1e10", "bus", "get"}))
	c.BackendName = "memory"
	require.NoError(t, c.Finalize())

	assert.True(t, c.GetWait().IsForever(), "a timeout beyond the Duration range waits forever")
	assert.Equal(t, time.Duration(math.MaxInt64), c.AutoUngetDelay())
	assert.Equal(t, time.Duration(math.MaxInt64), c.UpdateInterval())
}

func TestDurations(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		autoUnget  float64
		update     float64
		wantDelay  time.Duration
		wantUpdate time.Duration
	}{
		"Defaults":  {autoUnget: 0, update: DefaultUpdate, wantDelay: 0, wantUpdate: 500 * time.Millisecond},
		"Fractions": {autoUnget: 1.5, update: 0.1, wantDelay: 1500 * time.Millisecond, wantUpdate: 100 * time.Millisecond},
		"Tiny":      {autoUnget: 1e-12, update: 1e-12, wantDelay: time.Nanosecond, wantUpdate: time.Nanosecond},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := New()
			c.AutoUnget, c.Update = test.autoUnget, test.update
			assert.Equal(t, test.wantDelay, c.AutoUngetDelay())
			assert.Equal(t, test.wantUpdate, c.UpdateInterval())
		})
	}
}

func TestPrintUsage(t *testing.T) {
	c := New()
	c.GetTimeout = 3

	var buf bytes.Buffer
	c.PrintUsage(&buf)
	out := buf.String()

	for _, want := range []string{
		"Usage:",
		"LOCK_NAME {get,unget,state,trace,remove}",
		"Commands:",
		"Lock Options:",
		"Output Options:",
		"Information:",
		"-t (default: 3)",
		"-u (default: 0.5)",
		"GLOBALLOCK_GET_TIMEOUT",
	} {
		assert.Contains(t, out, want)
	}

	assert.Equal(t, 3.0, c.GetTimeout, "printing usage must not reset settings")
}

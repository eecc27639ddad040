package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/bashhack/globallock/internal/config"
	"github.com/bashhack/globallock/pkg/constants"
	glerrors "github.com/bashhack/globallock/pkg/errors"
	"github.com/bashhack/globallock/pkg/lock"
	"github.com/bashhack/globallock/pkg/logger"
	"github.com/bashhack/globallock/pkg/semaphore"
)

// Locker is the part of *lock.Lock the driver uses.
type Locker interface {
	Name() string
	AcquireContext(ctx context.Context, w semaphore.Wait) (bool, error)
	Release() (bool, error)
	Snapshot() (lock.Snapshot, error)
	ReleaseAfter(d time.Duration) *lock.AutoRelease
	Trace(ctx context.Context, every time.Duration, fn func(lock.Snapshot)) error
	Close() error
}

// AppOptions contains app configuration and dependencies.
// This struct allows injection of both required and optional dependencies,
// enabling flexible configuration and easier testing.
type AppOptions struct {
	// Config holds the application configuration settings (required).
	// The application will panic if this field is nil.
	Config *config.Config

	// Logger provides logging functionality (optional, a default will be created if nil).
	Logger logger.Logger

	// Locker is the lock to operate on (optional, opened from Config if nil).
	Locker Locker

	// Stdout receives command output (optional, defaults to os.Stdout).
	Stdout io.Writer

	// Stderr receives error output (optional, defaults to os.Stderr).
	Stderr io.Writer

	// Exit terminates the process (optional, defaults to os.Exit).
	Exit func(code int)

	// RemoveLock deletes a named lock (optional, defaults to lock.Remove).
	RemoveLock func(backend semaphore.Backend, name string) error
}

// App is the globallock command.
// It parses nothing itself: Config arrives parsed, and Run executes the
// one command it names.
type App struct {
	Config *config.Config
	Logger logger.Logger
	Locker Locker

	Stdout io.Writer
	Stderr io.Writer

	exit       func(code int)
	removeLock func(backend semaphore.Backend, name string) error

	mu      sync.Mutex
	pending *lock.AutoRelease
}

// NewDefaultApp creates an App with standard dependencies, defaults
// overridden by the environment.
func NewDefaultApp(versionInfo config.VersionInfo) *App {
	cfg := config.New()
	cfg.VersionInfo = versionInfo
	cfg.LoadFromEnvironment()

	return NewApp(AppOptions{
		Config: cfg,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Exit:   os.Exit,
	})
}

// NewApp creates an App from opts. It panics if opts.Config is nil.
// Missing optional dependencies get defaults here or in Initialize.
func NewApp(opts AppOptions) *App {
	if opts.Config == nil {
		panic("Config is required in AppOptions")
	}

	app := &App{
		Config:     opts.Config,
		Logger:     opts.Logger,
		Locker:     opts.Locker,
		Stdout:     opts.Stdout,
		Stderr:     opts.Stderr,
		exit:       opts.Exit,
		removeLock: opts.RemoveLock,
	}

	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.exit == nil {
		app.exit = os.Exit
	}
	if app.removeLock == nil {
		app.removeLock = lock.Remove
	}

	return app
}

// Initialize validates the configuration and opens whatever was not injected.
func (a *App) Initialize() error {
	if err := a.Config.Finalize(); err != nil {
		return err
	}

	if a.Logger == nil {
		a.Logger = logger.New(a.Config.Debug, a.Config.LogFile, a.Config.Verbose)
	}

	if a.Config.ShowHelp || a.Config.Version || a.Config.Command == constants.CommandRemove {
		return nil
	}

	if a.Locker == nil {
		l, err := lock.New(a.Config.LockName,
			lock.WithBackend(a.Config.Backend),
			lock.WithDebug(true),
			lock.WithLogger(userLockLogger{a.Logger}),
		)
		if err != nil {
			return glerrors.Wrap(err, "failed to initialize lock")
		}
		a.Locker = l
	}

	return nil
}

// Run executes the configured command. A timed-out get and an extraneous
// unget are normal outcomes and return nil.
func (a *App) Run(ctx context.Context) error {
	if err := a.Initialize(); err != nil {
		return err
	}

	if a.Config.Version {
		a.ShowVersion()
		return nil
	}

	if a.Config.ShowHelp {
		a.Config.PrintUsage(a.Stdout)
		return nil
	}

	a.Logger.Info("running %q on lock %q (backend %s)", a.Config.Command, a.Config.LockName, a.Config.Backend)

	switch a.Config.Command {
	case constants.CommandGet:
		return a.get(ctx)
	case constants.CommandUnget:
		_, err := a.Locker.Release()
		return err
	case constants.CommandState:
		s, err := a.Locker.Snapshot()
		if err != nil {
			return err
		}
		return a.printSnapshot(s)
	case constants.CommandTrace:
		return a.trace(ctx)
	case constants.CommandRemove:
		if err := a.removeLock(a.Config.Backend, a.Config.LockName); err != nil {
			return err
		}
		a.Logger.Success("Removed lock %s", a.Config.LockName)
		return nil
	}

	return glerrors.NewConfigError("command", a.Config.Command, glerrors.ErrUnknownCommand)
}

func (a *App) get(ctx context.Context) error {
	ok, err := a.Locker.AcquireContext(ctx, a.Config.GetWait())
	if err != nil || !ok || !a.Config.AutoUngetSet {
		return err
	}

	a.Logger.StatusMessage("Release lock after <%g> sec delay", a.Config.AutoUnget)

	auto := a.Locker.ReleaseAfter(a.Config.AutoUngetDelay())
	a.mu.Lock()
	a.pending = auto
	a.mu.Unlock()

	select {
	case <-auto.Done():
		_, err = auto.Result()
	case <-ctx.Done():
		a.Logger.InfoToUser("Interrupted, releasing lock now")
		_, err = auto.ReleaseNow()
	}
	return err
}

func (a *App) trace(ctx context.Context) error {
	var printErr error
	err := a.Locker.Trace(ctx, a.Config.UpdateInterval(), func(s lock.Snapshot) {
		if printErr == nil {
			printErr = a.printSnapshot(s)
		}
	})
	if printErr != nil {
		return printErr
	}
	if glerrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// printSnapshot writes s to Stdout as text or as one JSON line.
func (a *App) printSnapshot(s lock.Snapshot) error {
	if a.Config.JSON {
		return json.NewEncoder(a.Stdout).Encode(s)
	}
	_, err := fmt.Fprintf(a.Stdout, "<%s> is currently %s (%d)\n", s.Name, s.State, s.Value)
	return err
}

// ShowVersion displays version information
func (a *App) ShowVersion() {
	_, _ = fmt.Fprintf(a.Stdout, "globallock %s (%s) built on %s\n",
		a.Config.VersionInfo.Version,
		a.Config.VersionInfo.Commit,
		a.Config.VersionInfo.Date)
}

// Close releases the handle and the logger. A held lock stays held.
func (a *App) Close() error {
	var errs []error

	if a.Locker != nil {
		if err := a.Locker.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to close logger: %v\n", err)
			errs = append(errs, err)
		}
	}

	return glerrors.Join(errs...)
}

// CleanupOnSignal runs a pending auto-release at once, then closes.
// Used when the run did not stop in time after an interrupt.
func (a *App) CleanupOnSignal() {
	a.mu.Lock()
	pending := a.pending
	a.mu.Unlock()

	if pending != nil {
		if _, err := pending.ReleaseNow(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to release lock: %v\n", err)
		}
	}

	if err := a.Close(); err != nil {
		_, _ = fmt.Fprintf(a.Stderr, "❌ Error during cleanup: %v\n", err)
	}
}

// userLockLogger shows lock transitions to the user the way the lock
// reports them, and keeps a copy in the debug log.
type userLockLogger struct {
	log logger.Logger
}

func (u userLockLogger) Info(format string, args ...interface{}) {
	u.log.Info(format, args...)
	u.log.StatusMessage(format, args...)
}

func (u userLockLogger) Warning(format string, args ...interface{}) {
	u.log.WarningToUser(format, args...)
}

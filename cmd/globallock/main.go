package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bashhack/globallock/internal/config"
	glerrors "github.com/bashhack/globallock/pkg/errors"
)

// Version information - injected at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// shutdownGrace is how long the run may take to stop after a signal.
const shutdownGrace = 5 * time.Second

func main() {
	versionInfo := config.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	app := NewDefaultApp(versionInfo)

	if err := app.Config.ParseArgs(os.Args[1:]); err != nil {
		_, _ = fmt.Fprintf(app.Stderr, "❌ Error: %v\n\n", err)
		app.Config.PrintUsage(app.Stderr)
		app.exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	finished := make(chan struct{})

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		select {
		case sig := <-c:
			_, _ = fmt.Fprintf(app.Stderr, "\nReceived signal %v, stopping globallock...\n", sig)
		case <-finished:
			return
		}

		cancel()

		// If the run does not return in time, force cleanup and exit
		select {
		case <-finished:
		case <-time.After(shutdownGrace):
			app.CleanupOnSignal()
			app.exit(1)
		}
	}()

	err := app.Run(ctx)
	close(finished)

	if err != nil && !glerrors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintf(app.Stderr, "❌ Error: %v\n", err)
		_ = app.Close()
		app.exit(1)
		return
	}

	_ = app.Close()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aspizu/rxhkd/internal/analytics"
	"github.com/aspizu/rxhkd/internal/config"
	"github.com/aspizu/rxhkd/internal/dispatcher"
	"github.com/aspizu/rxhkd/internal/executor"
	"github.com/aspizu/rxhkd/internal/history"
	"github.com/aspizu/rxhkd/internal/parser"
	"github.com/aspizu/rxhkd/internal/x11"
)

// settingsPath returns the --settings flag or the default settings file
func settingsPath() string {
	if flagSettings != "" {
		return flagSettings
	}
	return config.SettingsFile
}

// loadSettingsOrDefault loads settings for commands that can run without them
func loadSettingsOrDefault() config.Settings {
	settings, err := config.LoadSettings(settingsPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return config.DefaultSettings()
	}
	return settings
}

// newLogger creates the stderr text logger at the configured level
func newLogger(settings config.Settings) *slog.Logger {
	level, err := settings.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// runDaemon parses the bind file, grabs the root mode and dispatches key
// presses until the X connection is lost or the process is signalled.
func runDaemon(cmd *cobra.Command) error {
	settings, err := config.LoadSettings(settingsPath())
	if err != nil {
		return err
	}
	if flagLogLevel != "" {
		settings.LogLevel = flagLogLevel
		if _, err := settings.Level(); err != nil {
			return err
		}
	}
	if flagDisplay != "" {
		settings.Display = flagDisplay
	}
	logger := newLogger(settings)
	slog.SetDefault(logger)

	path, err := config.ResolveBindsFile(flagConfig)
	if err != nil {
		return err
	}
	root, err := parser.ParseFile(path)
	if err != nil {
		return err
	}
	binds, modes := root.Count()
	logger.Info("parsed bind file", "path", path, "binds", binds, "modes", modes)

	runner := executor.NewRunner(settings.Shell, logger)
	if err := runner.Check(); err != nil {
		return err
	}

	conn, err := x11.Connect(settings.Display, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	opts := []dispatcher.Option{dispatcher.WithLogger(logger)}
	if settings.HistoryEnabled() && !flagNoRecord {
		recorder, closeRecorder, err := openRecorder(settings.Database)
		if err != nil {
			return err
		}
		defer closeRecorder()
		opts = append(opts, dispatcher.WithRecorder(recorder))
	}

	engine := dispatcher.New(root, conn, runner, opts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(gctx)
	})
	g.Go(func() error {
		// NextEvent only returns once the connection is gone
		<-gctx.Done()
		conn.Close()
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}
	return err
}

// openRecorder opens the history and analytics stores on dbPath
func openRecorder(dbPath string) (dispatcher.Recorder, func(), error) {
	hist, err := history.NewManager(dbPath)
	if err != nil {
		return nil, nil, err
	}
	stats, err := analytics.NewManager(dbPath)
	if err != nil {
		hist.Close()
		return nil, nil, err
	}
	closeAll := func() {
		hist.Close()
		stats.Close()
	}
	return dispatcher.Recorders{hist, stats}, closeAll, nil
}

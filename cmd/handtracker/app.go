package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/handtracker/cmd/handtracker/shared"
	"github.com/lox/handtracker/internal/config"
	"github.com/lox/handtracker/internal/store"
	"github.com/lox/handtracker/internal/tracker"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `short:"c" help:"Path to HCL config file" default:"handtracker.hcl" type:"path"`
	LogLevel string `help:"Override the configured log level (debug, info, warn, error)"`
	NoColor  bool   `help:"Disable colored output"`
	Database string `help:"Override the SQLite database path"`

	out io.Writer
}

// stdout is where command output goes.
func (g *Globals) stdout() io.Writer {
	if g.out != nil {
		return g.out
	}
	return os.Stdout
}

// app is everything a command needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   store.Store
	tracker *tracker.Tracker
	closers []io.Closer
}

type openOptions struct {
	// quiet keeps logs off stderr when no log file is configured, for
	// commands that own the terminal.
	quiet bool
}

func (g *Globals) open(ctx context.Context, opts openOptions) (*app, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.Database != "" {
		cfg.Database.Driver = store.DriverSQLite
		cfg.Database.Path = g.Database
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, logCloser, err := shared.SetupLogger(shared.LogOptions{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		NoColor: g.NoColor,
	})
	if err != nil {
		return nil, err
	}
	if opts.quiet && cfg.Log.File == "" {
		logger.SetOutput(io.Discard)
	}

	s, err := store.Open(ctx, store.Options{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
		Logger: logger,
	})
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	st, _ := cfg.DefaultStakes()
	tr := tracker.New(s,
		tracker.WithLogger(logger),
		tracker.WithExportWorkers(cfg.Export.Workers),
		tracker.WithDefaults(tracker.Defaults{
			Stakes:        st,
			GameType:      cfg.Table.GameType,
			Order:         cfg.DefaultOrder(),
			StartingStack: cfg.Table.StartingStack,
			Seats:         cfg.Table.Seats,
		}),
	)
	tr.Events().Subscribe(tracker.NewLoggingSubscriber(logger))

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   s,
		tracker: tr,
		closers: []io.Closer{s, logCloser},
	}, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("Failed to close", "error", err)
		}
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/qwicbook/qwicbook-pro/internal/cli"
	"github.com/qwicbook/qwicbook-pro/internal/config"
	"github.com/qwicbook/qwicbook-pro/internal/session"
	"github.com/qwicbook/qwicbook-pro/internal/upstream"
	"github.com/qwicbook/qwicbook-pro/pkg/logging"
)

var CLI struct {
	Version kong.VersionFlag

	Tui      cli.TuiCmd      `cmd:"" help:"Open the appointment list." default:"1"`
	List     cli.ListCmd     `cmd:"" help:"Print a day's appointments."`
	Services cli.ServicesCmd `cmd:"" help:"List the account's services."`
	Session  struct {
		Show  cli.SessionShowCmd  `cmd:"" help:"Show the saved session."`
		Clear cli.SessionClearCmd `cmd:"" help:"Forget the saved session."`
	} `cmd:"" help:"Manage the saved session."`
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := newLogger(cfg)

	var sessions session.Store
	if cfg.SessionDBPath != "" {
		store := session.NewSQLiteStore(cfg.SessionDBPath)
		if err := store.Open(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		sessions = store
	} else {
		sessions = session.NewMemoryStore()
	}

	appCtx := &cli.Context{
		Config:   cfg,
		Logger:   logger,
		Client:   upstream.NewClient(cfg.ProxyBaseURL, cfg.HTTPTimeout, cfg.ScheduleCacheSize, logger),
		Sessions: sessions,
	}

	ctx := kong.Parse(&CLI,
		kong.Name("qwicbook"),
		kong.Description("Clinic appointment desk for the QwicBook proxy"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger sends logs to the configured file so the alternate screen
// stays clean; stderr is only used when no file is set.
func newLogger(cfg *config.Config) *logging.Logger {
	if cfg.LogFile == "" {
		return logging.New(cfg.LogLevel)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v\n", cfg.LogFile, err)
		return logging.New(cfg.LogLevel)
	}
	return logging.NewWithWriter(cfg.LogLevel, f)
}

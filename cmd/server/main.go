// Package main is the entry point for the punchclock API server.
//
// main stays small: load configuration, build the logger, make sure the
// SQLite data directory exists, then hand over to internal/server.
//
// Configuration comes from PUNCHCLOCK_* environment variables and an
// optional CONFIG_FILE (see internal/config). The minimum for local use:
//
//	PUNCHCLOCK_AUTH_JWT_SECRET=$(openssl rand -hex 32) go run ./cmd/server
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/punchclock/internal/config"
	"github.com/sakif/punchclock/internal/repository/sqldb"
	"github.com/sakif/punchclock/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// The SQLite driver creates the file but not its directory.
	if cfg.Database.Driver == sqldb.DriverSQLite && cfg.Database.DSN != ":memory:" {
		dir := filepath.Dir(cfg.Database.DSN)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	if !cfg.GitHubEnabled() {
		logger.Warn("PUNCHCLOCK_AUTH_GITHUB_CLIENT_ID/SECRET not set: nobody can sign in")
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

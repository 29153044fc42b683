// Package main is the entry point for the snippet API server.
//
// main only reads configuration, builds the logger and hands both to
// internal/server. Everything else lives in the internal packages.
//
// Minimal local run:
//
//	AUTH_SECRET=$(openssl rand -hex 32) go run ./cmd/server
//
// Add AUTH_GITHUB_ID and AUTH_GITHUB_SECRET to enable sign in with GitHub.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/snippet-api/internal/config"
	"github.com/sakif/snippet-api/internal/logger"
	"github.com/sakif/snippet-api/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	// The data directory is created on first run; sqlite only creates the file.
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			log.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		log.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

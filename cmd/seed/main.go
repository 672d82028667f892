// Package main seeds the event catalog with the sample events.
// Safe to run repeatedly: seeding is skipped when the catalog has data.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/onnwee/gigfeed/internal/catalog"
	"github.com/onnwee/gigfeed/internal/config"
	"github.com/onnwee/gigfeed/internal/db"
	"github.com/onnwee/gigfeed/internal/middleware"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required: in-memory repositories seed themselves at startup")
		os.Exit(1)
	}

	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := catalog.NewPostgresEventRepository(sqlDB, logger)
	n, err := catalog.SeedEvents(ctx, repo)
	if err != nil {
		logger.Error("seeding failed", "inserted", n, "error", err)
		os.Exit(1)
	}

	if n == 0 {
		logger.Info("catalog already has events, nothing to do")
		return
	}
	logger.Info("seeded sample events", "count", n)
}

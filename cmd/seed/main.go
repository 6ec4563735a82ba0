// Command seed wipes the database and fills it with the fixed catalog,
// synthetic clients and randomized sales.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/seed"
	"sales-dashboard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := applyFlags(&cfg.Seed, os.Args[1:]); err != nil {
		slog.Error("invalid seed options", "error", err)
		os.Exit(2)
	}

	logger := observability.NewLogger(cfg.Logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

// applyFlags lets command-line flags override the environment's seed
// settings and validates the result.
func applyFlags(cfg *config.SeedConfig, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.IntVar(&cfg.Clients, "clients", cfg.Clients, "number of clients to generate")
	fs.IntVar(&cfg.Sales, "sales", cfg.Sales, "number of sales to generate")
	fs.Uint64Var(&cfg.RandomSeed, "random-seed", cfg.RandomSeed, "random seed, 0 for a fresh one")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return cfg.Validate()
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := seed.New(st, cfg.Seed, logger).Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("database seeded",
		"path", cfg.Database.Path,
		"products", summary.Products,
		"clients", summary.Clients,
		"sales", summary.Sales,
	)
	return nil
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/seed"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/store"
)

const seedTimeout = 30 * time.Second

// seedIfEmpty fills a fresh database so the dashboard has something to show.
func seedIfEmpty(ctx context.Context, st *store.Store, cfg config.SeedConfig, logger *slog.Logger) error {
	counts, err := st.Counts(ctx)
	if err != nil {
		return err
	}
	if counts.Sales > 0 {
		return nil
	}
	logger.Info("database has no sales, seeding", "clients", cfg.Clients, "sales", cfg.Sales)
	_, err = seed.New(st, cfg, logger).Run(ctx)
	return err
}

func newHandler(cfg *config.Config, st *store.Store, logger *slog.Logger) http.Handler {
	analytics := services.NewAnalytics(st, logger)
	catalog := services.NewCatalog(st, logger)
	pages := handlers.NewPageHandlers(analytics, catalog, logger)

	templateHandlers := &server.TemplateHandlers{
		Dashboard: pages.HandleDashboard,
	}

	srv := server.NewServer(analytics, catalog, st, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		middleware.Preferences(),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	st, err := store.Open(cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", cfg.Database.Path)
		os.Exit(1)
	}

	if cfg.Seed.OnEmpty {
		ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
		err := seedIfEmpty(ctx, st, cfg.Seed, logger)
		cancel()
		if err != nil {
			logger.Error("failed to seed database", "error", err)
			_ = st.Close()
			os.Exit(1)
		}
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, st, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("closing database")
		return st.Close()
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

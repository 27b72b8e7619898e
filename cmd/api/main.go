package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/TechLead-War/wallet/internal/config"
	"github.com/TechLead-War/wallet/internal/identity"
	"github.com/TechLead-War/wallet/internal/infra"
	"github.com/TechLead-War/wallet/internal/logging"
	"github.com/TechLead-War/wallet/internal/reconcile"
	"github.com/TechLead-War/wallet/internal/routes"
	"github.com/TechLead-War/wallet/internal/server"
	"github.com/TechLead-War/wallet/internal/storage"
	"github.com/TechLead-War/wallet/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	deps := routes.Deps{Cfg: cfg, Logger: logger}

	var store wallet.Store
	if cfg.DatabaseURL != "" {
		db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := infra.Migrate(ctx, db); err != nil {
			logger.Error("run migrations", "error", err)
			os.Exit(1)
		}

		store = storage.NewPostgres(db)
		deps.DB = db
		deps.Identity = identity.NewService(identity.NewPostgresRepository(db))
	} else if cfg.IsDev() {
		logger.Warn("no DATABASE_URL set, using in-memory storage")
		store = storage.NewMemory()
		deps.Identity = identity.NewService(identity.NewMemoryRepository())
	} else {
		logger.Error("DATABASE_URL is required outside dev environments")
		os.Exit(1)
	}
	deps.Store = store

	if cfg.RedisURL != "" {
		cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
		deps.Cache = cache
	} else if cfg.IsDev() {
		logger.Warn("no REDIS_URL set, idempotency replay and rate limiting disabled")
	} else {
		logger.Error("REDIS_URL is required outside dev environments")
		os.Exit(1)
	}

	scheduler := cron.New()
	reconciler := reconcile.New(store, logging.Component(logger, "reconcile"))
	if _, err := reconciler.Schedule(scheduler, cfg.ReconcileSchedule); err != nil {
		logger.Error("schedule reconciliation", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv, err := server.New(cfg, deps)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}

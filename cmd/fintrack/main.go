package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/analytics"
	"fintrack/internal/app"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/kv"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/settings"
)

func main() {
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx, cancel := cli.GracefulShutdown(context.Background(), logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Close(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	editMode, err := ledger.ParseEditMode(cfg.EditMode)
	if err != nil {
		logger.Error("Invalid edit mode", log.FieldError, err)
		os.Exit(1)
	}

	svc := ledger.NewService(ctx, ledger.NewStore(result.Store, logger), ledger.Options{
		EditMode:  editMode,
		Publisher: result.Publisher,
		Logger:    logger,
	})

	dashboards := cache.NewLRUCache[analytics.Dashboard](cfg.DashboardCacheSize, cfg.DashboardCacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(dashboards)
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	session := app.NewSession(ctx, svc, settings.NewStore(result.Store, logger), app.Options{
		Cache:  dashboards,
		Logger: logger,
	})

	srv := apphttp.NewServer(":"+cfg.Port, session, apphttp.Options{
		Logger:         logger,
		DashboardCache: dashboards,
		Checks: map[string]apphttp.ReadyCheck{
			"storage": func(ctx context.Context) error {
				_, _, err := result.Store.Get(ctx, kv.SettingsKey)
				return err
			},
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"edit_mode", string(editMode),
			"events", result.Publisher != nil,
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := cli.ShutdownContext()
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

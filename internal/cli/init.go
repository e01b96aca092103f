// Package cli provides common CLI initialization utilities shared by
// cmd/fintrack and cmd/fintrack-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/log"
)

// SetupLogger builds the process logger from cfg and installs it as the
// slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	c := log.DefaultConfig()
	c.Component = component
	if cfg != nil {
		c.Level = log.ParseLevel(cfg.LogLevel)
		c.Format = cfg.LogFormat
	}
	logger := log.New(c)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig loads the environment and configuration, then validates it with
// validate. The process exits on validation failure.
func LoadConfig(validate func(*config.Config) error) *config.Config {
	LoadEnvFile()
	cfg := config.Load()
	if err := validate(cfg); err != nil {
		// The configured logger may itself be invalid, so report with defaults.
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// LoadAndValidateConfig loads the server configuration or exits.
func LoadAndValidateConfig() *config.Config {
	return LoadConfig((*config.Config).Validate)
}

// LoadAndValidateWorkerConfig loads the worker configuration or exits.
func LoadAndValidateWorkerConfig() *config.Config {
	return LoadConfig((*config.Config).ValidateWorker)
}

// ShutdownTimeout bounds how long cleanup may take after a signal.
const ShutdownTimeout = 30 * time.Second

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM, or when
// the returned cancel function is called. The signal is logged.
func GracefulShutdown(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// ShutdownContext is a fresh context for cleanup work, detached from the
// cancelled run context.
func ShutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ShutdownTimeout)
}

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	cfg := cli.LoadAndValidateWorkerConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting fintrack-worker", log.FieldOperation, log.OpStartup)

	ctx, cancel := cli.GracefulShutdown(context.Background(), logger)
	defer cancel()

	// The worker only reads the ledger, so the backend is built without a
	// publisher of its own.
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	backendCfg.AMQPURL = ""
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer result.Close()

	sheetsClient, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirrorWorker(ledger.NewStore(result.Store, logger), sheetsClient, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consume(gctx, amqpClient, mirror, logger)
	})
	g.Go(func() error {
		return mirror.RunPeriodic(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	stats := mirror.Stats()
	logger.Info("Worker shutdown complete",
		"synced", stats.Synced,
		"failures", stats.Failures,
		log.FieldOperation, log.OpShutdown)
}

// consume keeps a consumer attached to the queue, backing off between
// reconnect attempts until ctx ends.
func consume(ctx context.Context, client *amqp.Client, mirror *worker.MirrorWorker, logger *log.Logger) error {
	for attempt := 0; ; attempt++ {
		start := time.Now()
		err := client.ConsumeLedgerEvents(ctx, mirror.HandleLedgerEvent)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// A consumer that ran for a while was healthy; start the backoff over.
		if time.Since(start) > time.Minute {
			attempt = 0
		}
		wait := amqp.RetryBackoff(attempt)
		logger.Warn("Ledger event consumer stopped, reconnecting",
			log.FieldError, err,
			"attempt", attempt+1,
			"retry_in", wait.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

package backend

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/kv/file"
	"fintrack/internal/kv/memory"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(ctx, config)
	case FileBackend:
		result, err = f.createFileBackend(ctx, config)
	case MemoryBackend:
		result = f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(ctx, config, result)
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"schema_version", repo.SchemaVersion())

	return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createFileBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := file.New(config.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file backend: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized file backend", "data_directory", store.Dir())

	return &BackendResult{Store: store}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) *BackendResult {
	store := memory.New()
	if config.DataDirectory != "" {
		store = memory.NewFromFiles(config.DataDirectory)
	}

	f.logger.InfoContext(ctx, "Initialized memory backend",
		"seed_directory", config.DataDirectory,
		"seeded_keys", store.Keys())

	return &BackendResult{Store: store}
}

// attachPublisher connects to the broker when one is configured. A broker that
// cannot be reached leaves the backend running without events.
func (f *DefaultFactory) attachPublisher(ctx context.Context, config Config, result *BackendResult) {
	if config.AMQPURL == "" {
		return
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return
	}

	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	storeCleanup := result.Cleanup
	result.Publisher = client
	result.Cleanup = func() error {
		var errs []error
		errs = append(errs, client.Close())
		if storeCleanup != nil {
			errs = append(errs, storeCleanup())
		}
		return errors.Join(errs...)
	}
}

// Close runs the cleanup function if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

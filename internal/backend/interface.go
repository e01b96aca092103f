package backend

import (
	"context"

	"fintrack/internal/kv"
	"fintrack/internal/ledger"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult is a ready persistence backend plus the optional event
// publisher that goes with it.
type BackendResult struct {
	Store     kv.Store
	Publisher ledger.Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// File backend directory; the memory backend seeds itself from it.
	DataDirectory string

	// SQLite specific
	SQLiteDBPath string

	// Optional ledger event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

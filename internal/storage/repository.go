package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/kv"

	_ "modernc.org/sqlite"
)

var _ kv.Store = (*SQLiteRepository)(nil)

// SQLiteRepository is a kv.Store backed by a single SQLite table.
type SQLiteRepository struct {
	db            *sql.DB
	schemaVersion uint
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("SQLite repository ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db, schemaVersion: version}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SchemaVersion is the migration version applied at startup.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.schemaVersion
}

// Get implements kv.Getter
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if r.db == nil {
		return nil, false, kv.ErrClosed
	}
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements kv.Setter
func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	if r.db == nil {
		return kv.ErrClosed
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	slog.DebugContext(ctx, "Value saved to SQLite", "key", key, "bytes", len(value))
	return nil
}

// UpdatedAt returns when key was last written.
func (r *SQLiteRepository) UpdatedAt(ctx context.Context, key string) (time.Time, bool, error) {
	if r.db == nil {
		return time.Time{}, false, kv.ErrClosed
	}
	var raw any
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM kv_entries WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("updated_at %s: %w", key, err)
	}
	switch v := raw.(type) {
	case time.Time:
		return v, true, nil
	case string:
		return parseSQLiteTime(v), true, nil
	case []byte:
		return parseSQLiteTime(string(v)), true, nil
	default:
		return time.Time{}, true, nil
	}
}

func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

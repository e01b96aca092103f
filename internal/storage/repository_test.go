package storage

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/kv"
)

func TestSQLiteRepositoryGetSet(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "fintrack.db")
	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()

	if repo.SchemaVersion() != 1 {
		t.Fatalf("expected schema version 1, got %d", repo.SchemaVersion())
	}

	ctx := context.Background()
	if _, ok, err := repo.Get(ctx, kv.LedgerKey); ok || err != nil {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}

	if err := repo.Set(ctx, kv.LedgerKey, []byte(`[1]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := repo.Set(ctx, kv.LedgerKey, []byte(`[2]`)); err != nil {
		t.Fatalf("Set upsert: %v", err)
	}
	got, ok, err := repo.Get(ctx, kv.LedgerKey)
	if err != nil || !ok || string(got) != "[2]" {
		t.Fatalf("unexpected value %q ok=%v err=%v", got, ok, err)
	}

	if _, ok, err := repo.UpdatedAt(ctx, kv.LedgerKey); !ok || err != nil {
		t.Fatalf("expected updated_at, ok=%v err=%v", ok, err)
	}
}

func TestSQLiteRepositoryReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fintrack.db")
	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	if err := repo.Set(context.Background(), kv.SettingsKey, []byte(`{"currency":"RWF","cap":0}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	repo.Close()

	// Migrations are idempotent on reopen.
	repo, err = NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	got, ok, _ := repo.Get(context.Background(), kv.SettingsKey)
	if !ok || string(got) != `{"currency":"RWF","cap":0}` {
		t.Fatalf("value lost across reopen: %q", got)
	}
}

func TestSQLiteRepositoryClosed(t *testing.T) {
	repo := &SQLiteRepository{}
	if _, _, err := repo.Get(context.Background(), "k"); err != kv.ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close on empty repo: %v", err)
	}
}

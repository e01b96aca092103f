package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fintrack/internal/kv"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, err := s.Get(ctx, kv.LedgerKey); ok || err != nil {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}

	in := []byte(`[]`)
	if err := s.Set(ctx, kv.LedgerKey, in); err != nil {
		t.Fatalf("set: %v", err)
	}
	in[0] = 'x'

	got, ok, err := s.Get(ctx, kv.LedgerKey)
	if err != nil || !ok || string(got) != "[]" {
		t.Fatalf("unexpected get: %q ok=%v err=%v", got, ok, err)
	}
	got[0] = 'y'
	again, _, _ := s.Get(ctx, kv.LedgerKey)
	if string(again) != "[]" {
		t.Fatalf("stored value was aliased: %q", again)
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	// No files -> empty store
	if s := NewFromFiles(dir); s.Keys() != 0 {
		t.Fatalf("expected empty store when files are missing")
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite(kv.SettingsKey+".json", `{"currency":"ZAR","cap":10}`)

	s := NewFromFiles(dir)
	got, ok, _ := s.Get(context.Background(), kv.SettingsKey)
	if !ok || string(got) != `{"currency":"ZAR","cap":10}` {
		t.Fatalf("unexpected seed: %q ok=%v", got, ok)
	}
	if _, ok, _ := s.Get(context.Background(), kv.LedgerKey); ok {
		t.Fatalf("ledger should not be seeded")
	}
}

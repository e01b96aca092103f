package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"fintrack/internal/kv"
)

var _ kv.Store = (*Store)(nil)

// Store keeps values in process memory. Values are copied on the way in and
// out so callers cannot alias stored bytes.
type Store struct {
	mu     sync.Mutex
	values map[string][]byte
}

func New() *Store {
	return &Store{values: map[string][]byte{}}
}

// NewFromFiles seeds the store from <base>/<key>.json for each known key.
// Missing files are skipped.
func NewFromFiles(base string) *Store {
	s := New()
	for _, key := range []string{kv.LedgerKey, kv.SettingsKey} {
		if b := readSeed(filepath.Join(base, key+".json")); b != nil {
			s.values[key] = b
		}
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

// Keys returns the number of stored keys.
func (s *Store) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

func readSeed(path string) []byte {
	b, err := os.ReadFile(path)
	if err != nil || len(b) == 0 {
		return nil
	}
	return b
}

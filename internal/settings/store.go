// Package settings persists the display currency and spending cap.
package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/kv"
	"fintrack/internal/log"
)

// Store reads and writes core.Settings under a single key.
type Store struct {
	kv     kv.Store
	key    string
	logger *log.Logger
}

func NewStore(backend kv.Store, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{kv: backend, key: kv.SettingsKey, logger: logger.WithComponent(log.ComponentSettings)}
}

// Load returns the stored settings, falling back to defaults for anything
// missing or unreadable.
func (s *Store) Load(ctx context.Context) core.Settings {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "Settings unreadable, using defaults",
			log.FieldStorageKey, s.key, log.FieldError, err)
		return core.DefaultSettings()
	}
	if !ok || len(raw) == 0 {
		return core.DefaultSettings()
	}

	st := core.DefaultSettings()
	if err := json.Unmarshal(raw, &st); err != nil {
		s.logger.WarnContext(ctx, "Settings are not valid JSON, using defaults",
			log.FieldStorageKey, s.key, log.FieldError, err)
		return core.DefaultSettings()
	}
	return st.Normalize()
}

// Save validates and stores st, returning the normalized value written.
func (s *Store) Save(ctx context.Context, st core.Settings) (core.Settings, error) {
	if err := st.Validate(); err != nil {
		return core.Settings{}, err
	}
	st = st.Normalize()

	raw, err := json.Marshal(st)
	if err != nil {
		return core.Settings{}, fmt.Errorf("encode settings: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return core.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	s.logger.InfoContext(ctx, "Settings saved", "currency", st.Currency, "cap", st.Cap.String())
	return st, nil
}

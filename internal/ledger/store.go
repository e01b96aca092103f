// Package ledger owns the transaction sequence: persistence, mutations and
// the read projections (filter, sort) built on top of it.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/kv"
	"fintrack/internal/log"
)

// Store persists the whole ledger under a single key.
type Store struct {
	kv     kv.Store
	key    string
	logger *log.Logger
}

func NewStore(backend kv.Store, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{kv: backend, key: kv.LedgerKey, logger: logger.WithComponent(log.ComponentStorage)}
}

// Load returns the persisted ledger. An unreadable or non-array value is
// logged and yields an empty ledger; records that fail to decode are logged
// and skipped so the rest survive.
func (s *Store) Load(ctx context.Context) core.Ledger {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "Ledger unreadable, starting empty",
			log.FieldStorageKey, s.key, log.FieldError, err)
		return core.Ledger{}
	}
	if !ok || len(raw) == 0 {
		return core.Ledger{}
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		s.logger.WarnContext(ctx, "Ledger is not a JSON array, starting empty",
			log.FieldStorageKey, s.key, log.FieldError, err)
		return core.Ledger{}
	}

	l := make(core.Ledger, 0, len(records))
	for i, rec := range records {
		var t core.Transaction
		if err := json.Unmarshal(rec, &t); err != nil {
			s.logger.WarnContext(ctx, "Skipping undecodable ledger record",
				log.FieldStorageKey, s.key, "index", i, log.FieldError, err)
			continue
		}
		l = append(l, t)
	}
	return l
}

// Save replaces the stored ledger with l.
func (s *Store) Save(ctx context.Context, l core.Ledger) error {
	if l == nil {
		l = core.Ledger{}
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	s.logger.DebugContext(ctx, "Ledger saved", log.FieldStorageKey, s.key, log.FieldCount, len(l))
	return nil
}

// Add appends t without checking for id collisions.
func Add(l core.Ledger, t core.Transaction) core.Ledger {
	out := make(core.Ledger, 0, len(l)+1)
	out = append(out, l...)
	return append(out, t)
}

// Remove drops every transaction with the given id. A missing id returns an
// unchanged copy.
func Remove(l core.Ledger, id string) core.Ledger {
	out := make(core.Ledger, 0, len(l))
	for _, t := range l {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

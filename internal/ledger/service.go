package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// EditMode selects how Edit treats the edited transaction.
type EditMode string

const (
	// EditInPlace keeps id, createdAt and position and refreshes updatedAt.
	EditInPlace EditMode = "inplace"
	// EditRecreate removes the entry and appends a brand new one.
	EditRecreate EditMode = "recreate"
)

// ParseEditMode accepts "inplace" and "recreate"; empty means inplace.
func ParseEditMode(s string) (EditMode, error) {
	switch EditMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", EditInPlace:
		return EditInPlace, nil
	case EditRecreate:
		return EditRecreate, nil
	default:
		return "", fmt.Errorf("unknown edit mode %q", s)
	}
}

// EventType names a ledger mutation.
type EventType string

const (
	EventCreated  EventType = "created"
	EventUpdated  EventType = "updated"
	EventDeleted  EventType = "deleted"
	EventSorted   EventType = "sorted"
	EventImported EventType = "imported"
)

// Event describes a committed mutation.
type Event struct {
	Type          EventType
	TransactionID string
	Count         int
	Revision      uint64
	Timestamp     time.Time
}

// Publisher receives committed mutations. Failures are logged, never
// surfaced to the caller.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Options configures a Service. Zero values pick sensible defaults.
type Options struct {
	IDs       core.IDGenerator
	Now       func() time.Time
	EditMode  EditMode
	Publisher Publisher
	Logger    *log.Logger
}

// Service is the single owner of the ledger. Every operation runs under one
// mutex; mutations are persisted before they become visible.
type Service struct {
	mu       sync.Mutex
	store    *Store
	ledger   core.Ledger
	revision uint64

	ids       core.IDGenerator
	now       func() time.Time
	editMode  EditMode
	publisher Publisher
	logger    *log.Logger
	events    *log.StructuredLogger
}

// NewService loads the persisted ledger and returns a ready Service.
func NewService(ctx context.Context, store *Store, opts Options) *Service {
	if opts.IDs == nil {
		opts.IDs = &core.UUIDGenerator{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.EditMode == "" {
		opts.EditMode = EditInPlace
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	logger := opts.Logger.WithComponent(log.ComponentLedger)

	l := store.Load(ctx)
	logger.InfoContext(ctx, "Ledger loaded", log.FieldCount, len(l))

	return &Service{
		store:     store,
		ledger:    l,
		ids:       opts.IDs,
		now:       opts.Now,
		editMode:  opts.EditMode,
		publisher: opts.Publisher,
		logger:    logger,
		events:    log.NewStructuredLogger(opts.Logger),
	}
}

// Create validates in, then appends and persists a new transaction.
func (s *Service) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	amount, err := in.Validate()
	if err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.newTransaction(in, amount)
	if err := s.commit(ctx, Add(s.ledger, t)); err != nil {
		return core.Transaction{}, err
	}
	s.events.LogMutation(ctx, log.OpCreate, t.ID, t.Category, core.FormatAmount(t.Amount), s.revision)
	s.publish(ctx, EventCreated, t.ID, 1)
	return t, nil
}

// Delete removes id and persists the result even when nothing matched.
func (s *Service) Delete(ctx context.Context, id string) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Remove(s.ledger, id)
	removed := len(s.ledger) - len(next)
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldTransactionID, id, log.FieldCount, removed, log.FieldRevision, s.revision)
	s.publish(ctx, EventDeleted, id, removed)
	return s.ledger.Clone(), nil
}

// Edit replaces the fields of id according to the configured EditMode.
func (s *Service) Edit(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	amount, err := in.Validate()
	if err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.ledger.Index(id)
	if i < 0 {
		return core.Transaction{}, core.ErrTransactionNotFound
	}

	var (
		t    core.Transaction
		next core.Ledger
	)
	switch s.editMode {
	case EditRecreate:
		t = s.newTransaction(in, amount)
		next = Add(Remove(s.ledger, id), t)
	default:
		t = s.ledger[i]
		t.Description = strings.TrimSpace(in.Description)
		t.Amount = amount
		t.Category = strings.TrimSpace(in.Category)
		t.Date = strings.TrimSpace(in.Date)
		t.UpdatedAt = core.FormatTimestamp(s.now())
		next = s.ledger.Clone()
		next[i] = t
	}

	if err := s.commit(ctx, next); err != nil {
		return core.Transaction{}, err
	}
	s.events.LogMutation(ctx, log.OpUpdate, t.ID, t.Category, core.FormatAmount(t.Amount), s.revision)
	s.publish(ctx, EventUpdated, t.ID, 1)
	return t, nil
}

// Get looks up a single transaction.
func (s *Service) Get(id string) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.ledger.Index(id); i >= 0 {
		return s.ledger[i], true
	}
	return core.Transaction{}, false
}

// Filter projects the ledger through query without changing it.
func (s *Service) Filter(query string) core.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Filter(s.ledger, query)
}

// Sort reorders the ledger by key and persists the new order.
func (s *Service) Sort(ctx context.Context, key string, ascending bool) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := SortLedger(s.ledger, key, ascending)
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Ledger sorted",
		log.FieldSortKey, key, log.FieldAscending, ascending, log.FieldRevision, s.revision)
	s.publish(ctx, EventSorted, "", len(next))
	return s.ledger.Clone(), nil
}

// Import appends already validated transactions and persists once.
func (s *Service) Import(ctx context.Context, txs []core.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.ledger.Clone()
	next = append(next, txs...)
	if err := s.commit(ctx, next); err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "Transactions imported",
		log.FieldCount, len(txs), log.FieldRevision, s.revision)
	s.publish(ctx, EventImported, "", len(txs))
	return len(txs), nil
}

// Snapshot returns a copy of the current ledger.
func (s *Service) Snapshot() core.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Clone()
}

// Revision counts committed mutations since the service started.
func (s *Service) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// IDs returns the ids currently in the ledger.
func (s *Service) IDs() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.IDs()
}

// EditMode reports the configured edit semantics.
func (s *Service) EditMode() EditMode {
	return s.editMode
}

func (s *Service) newTransaction(in core.TransactionInput, amount decimal.Decimal) core.Transaction {
	ts := core.FormatTimestamp(s.now())
	return core.Transaction{
		ID:          s.ids.NewID(),
		Description: strings.TrimSpace(in.Description),
		Amount:      amount,
		Category:    strings.TrimSpace(in.Category),
		Date:        strings.TrimSpace(in.Date),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// commit persists next and only then makes it the live ledger.
// Callers hold s.mu.
func (s *Service) commit(ctx context.Context, next core.Ledger) error {
	if err := s.store.Save(ctx, next); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist ledger", log.FieldError, err)
		return err
	}
	s.ledger = next
	s.revision++
	return nil
}

func (s *Service) publish(ctx context.Context, typ EventType, id string, count int) {
	if s.publisher == nil {
		return
	}
	e := Event{
		Type:          typ,
		TransactionID: id,
		Count:         count,
		Revision:      s.revision,
		Timestamp:     s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		// The mutation is already persisted locally.
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldOperation, log.OpPublish, "event", string(typ), log.FieldError, err)
	}
}

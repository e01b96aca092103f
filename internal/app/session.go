// Package app turns user commands into ledger operations and assembles the
// resulting view and notices.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/settings"
	"fintrack/internal/transfer"
)

// View is everything the display sink renders after a command.
type View struct {
	Transactions core.Ledger         `json:"transactions"`
	Query        string              `json:"query"`
	Sort         ledger.SortState    `json:"sort"`
	Dashboard    analytics.Dashboard `json:"dashboard"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result is the outcome of one dispatched command.
type Result struct {
	View        View               `json:"view"`
	Notice      *Notice            `json:"notice,omitempty"`
	Transaction *core.Transaction  `json:"transaction,omitempty"`
	Skipped     []transfer.Skipped `json:"skipped,omitempty"`
	Settings    *core.Settings     `json:"settings,omitempty"`
	Export      *ExportFile        `json:"-"`
}

// Options configures a Session.
type Options struct {
	IDs    core.IDGenerator
	Now    func() time.Time
	Cache  *cache.LRUCache[analytics.Dashboard]
	Logger *log.Logger
}

// Session holds the per-user UI state (search query, sort) around the shared
// ledger and settings.
type Session struct {
	ledger   *ledger.Service
	settings *settings.Store

	// sortMu serializes SetSort so each toggle reads the previous result.
	sortMu sync.Mutex

	mu      sync.Mutex
	current core.Settings
	query   string
	sort    ledger.SortState

	ids    core.IDGenerator
	now    func() time.Time
	cache  *cache.LRUCache[analytics.Dashboard]
	logger *log.Logger
}

// NewSession loads settings once and wires the session to svc.
func NewSession(ctx context.Context, svc *ledger.Service, st *settings.Store, opts Options) *Session {
	if opts.IDs == nil {
		opts.IDs = &core.UUIDGenerator{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	return &Session{
		ledger:   svc,
		settings: st,
		current:  st.Load(ctx),
		ids:      opts.IDs,
		now:      opts.Now,
		cache:    opts.Cache,
		logger:   opts.Logger.WithComponent(log.ComponentApp),
	}
}

// Dispatch runs cmd. Domain failures come back as an error together with a
// Result whose Notice describes the problem.
func (s *Session) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	s.logger.DebugContext(ctx, "Dispatching command", "command", cmd.commandName())

	switch c := cmd.(type) {
	case Refresh:
		return Result{View: s.View()}, nil
	case CreateTransaction:
		return s.create(ctx, c)
	case EditTransaction:
		return s.edit(ctx, c)
	case DeleteTransaction:
		return s.delete(ctx, c)
	case SetSearchQuery:
		s.mu.Lock()
		s.query = c.Query
		s.mu.Unlock()
		return Result{View: s.View()}, nil
	case SetSort:
		return s.setSort(ctx, c)
	case ImportFile:
		return s.importFile(ctx, c)
	case Export:
		return s.export(ctx, c)
	case SaveSettings:
		return s.saveSettings(ctx, c)
	default:
		return Result{}, fmt.Errorf("unknown command %T", cmd)
	}
}

// View filters the ledger with the current query and builds the dashboard
// from the full ledger.
func (s *Session) View() View {
	s.mu.Lock()
	query, sortState := s.query, s.sort
	s.mu.Unlock()

	return View{
		Transactions: s.ledger.Filter(query),
		Query:        query,
		Sort:         sortState,
		Dashboard:    s.Dashboard(),
	}
}

// Dashboard returns the analytics for the current ledger and settings,
// memoized by ledger revision when a cache is configured.
func (s *Session) Dashboard() analytics.Dashboard {
	st := s.Settings()
	if s.cache == nil {
		return analytics.BuildDashboard(s.ledger.Snapshot(), st)
	}
	key := fmt.Sprintf("%d|%s|%s", s.ledger.Revision(), st.Currency, st.Cap.String())
	return s.cache.GetOrCompute(key, func() analytics.Dashboard {
		return analytics.BuildDashboard(s.ledger.Snapshot(), st)
	})
}

// Settings returns the settings currently in effect.
func (s *Session) Settings() core.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Transaction looks up one transaction, e.g. to prefill an edit form.
func (s *Session) Transaction(id string) (core.Transaction, bool) {
	return s.ledger.Get(id)
}

func (s *Session) create(ctx context.Context, c CreateTransaction) (Result, error) {
	t, err := s.ledger.Create(ctx, c.Input)
	if err != nil {
		return s.failed(err), err
	}
	return Result{View: s.View(), Notice: success(MsgTransactionAdded), Transaction: &t}, nil
}

func (s *Session) edit(ctx context.Context, c EditTransaction) (Result, error) {
	t, err := s.ledger.Edit(ctx, c.ID, c.Input)
	if err != nil {
		return s.failed(err), err
	}
	return Result{View: s.View(), Notice: success(MsgTransactionUpdated), Transaction: &t}, nil
}

func (s *Session) delete(ctx context.Context, c DeleteTransaction) (Result, error) {
	if _, err := s.ledger.Delete(ctx, c.ID); err != nil {
		return s.failed(err), err
	}
	return Result{View: s.View(), Notice: success(MsgTransactionDeleted)}, nil
}

func (s *Session) setSort(ctx context.Context, c SetSort) (Result, error) {
	if !ledger.ValidSortKey(c.Key) {
		return s.failed(core.ErrUnknownSortKey), core.ErrUnknownSortKey
	}

	s.sortMu.Lock()
	defer s.sortMu.Unlock()

	s.mu.Lock()
	next := s.sort.Toggle(c.Key)
	s.mu.Unlock()

	if _, err := s.ledger.Sort(ctx, next.Key, next.Ascending); err != nil {
		return s.failed(err), err
	}

	s.mu.Lock()
	s.sort = next
	s.mu.Unlock()
	return Result{View: s.View()}, nil
}

func (s *Session) importFile(ctx context.Context, c ImportFile) (Result, error) {
	format := c.Format
	if format == "" {
		format = transfer.FormatJSON
	}
	parsed, err := transfer.Parse(format, c.Content, s.ledger.IDs(), s.ids, s.now())
	if err != nil {
		prefix := MsgImportErrorPrefix
		if format == transfer.FormatCSV {
			prefix = MsgCSVErrorPrefix
		}
		s.logger.WarnContext(ctx, "Import rejected", log.FieldFormat, string(format), log.FieldError, err)
		return Result{View: s.View(), Notice: failure(prefix + err.Error())}, err
	}

	if len(parsed.Accepted) == 0 {
		return Result{View: s.View(), Notice: warning(MsgNothingImported), Skipped: parsed.Skipped}, nil
	}
	if _, err := s.ledger.Import(ctx, parsed.Accepted); err != nil {
		return s.failed(err), err
	}

	s.logger.InfoContext(ctx, "Import finished",
		log.FieldFormat, string(format),
		log.FieldCount, len(parsed.Accepted),
		log.FieldSkipped, len(parsed.Skipped))

	notice := success(MsgImported)
	if len(parsed.Skipped) > 0 {
		notice = warning(fmt.Sprintf("%s %d record(s) skipped.", MsgImported, len(parsed.Skipped)))
	}
	return Result{View: s.View(), Notice: notice, Skipped: parsed.Skipped}, nil
}

func (s *Session) export(ctx context.Context, c Export) (Result, error) {
	format := c.Format
	if format == "" {
		format = transfer.FormatJSON
	}
	data, err := transfer.Export(s.ledger.Snapshot(), format)
	if errors.Is(err, transfer.ErrEmptyExport) {
		return Result{View: s.View(), Notice: warning(MsgNothingToExport)}, err
	}
	if err != nil {
		return s.failed(err), err
	}
	s.logger.InfoContext(ctx, "Ledger exported", log.FieldFormat, string(format), "bytes", len(data))
	return Result{
		View: s.View(),
		Export: &ExportFile{
			Name:        format.FileName(),
			ContentType: format.ContentType(),
			Data:        data,
		},
	}, nil
}

func (s *Session) saveSettings(ctx context.Context, c SaveSettings) (Result, error) {
	saved, err := s.settings.Save(ctx, c.Settings)
	if err != nil {
		return s.failed(err), err
	}
	s.mu.Lock()
	s.current = saved
	s.mu.Unlock()
	return Result{View: s.View(), Notice: success(MsgSettingsSaved), Settings: &saved}, nil
}

// failed builds the Result for an error, picking a notice the user can act on.
func (s *Session) failed(err error) Result {
	var notice *Notice
	switch {
	case errors.Is(err, core.ErrTransactionNotFound):
		notice = failure(MsgNotFound)
	case errors.Is(err, core.ErrInvalidCap), errors.Is(err, core.ErrUnknownSortKey):
		notice = failure(err.Error())
	default:
		if _, ok := core.AsValidation(err); ok {
			notice = failure(MsgFixErrors)
		} else {
			notice = failure(err.Error())
		}
	}
	return Result{View: s.View(), Notice: notice}
}

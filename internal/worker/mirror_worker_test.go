package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

type staticLoader struct {
	ledger core.Ledger
}

func (s staticLoader) Load(context.Context) core.Ledger { return s.ledger }

type fakeMirror struct {
	mu     sync.Mutex
	calls  int
	last   core.Ledger
	err    error
	called chan struct{}
}

func (f *fakeMirror) MirrorLedger(_ context.Context, l core.Ledger) error {
	f.mu.Lock()
	f.calls++
	f.last = l
	err := f.err
	f.mu.Unlock()
	if f.called != nil {
		select {
		case f.called <- struct{}{}:
		default:
		}
	}
	return err
}

func (f *fakeMirror) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func sampleLedger() core.Ledger {
	return core.Ledger{{ID: "txn_1", Description: "Lunch", Amount: decimal.NewFromInt(9), Category: "Food", Date: "2024-01-01"}}
}

func TestHandleLedgerEvent(t *testing.T) {
	mirror := &fakeMirror{}
	w := NewMirrorWorker(staticLoader{sampleLedger()}, mirror, nil)

	err := w.HandleLedgerEvent(context.Background(), &amqp.LedgerEventMessage{Type: "created", TransactionID: "txn_1", Revision: 1})
	if err != nil {
		t.Fatalf("HandleLedgerEvent: %v", err)
	}
	if mirror.Calls() != 1 || len(mirror.last) != 1 || mirror.last[0].ID != "txn_1" {
		t.Fatalf("mirror calls=%d last=%#v", mirror.Calls(), mirror.last)
	}
	if s := w.Stats(); s.Synced != 1 || s.Failures != 0 || s.LastSync.IsZero() {
		t.Fatalf("stats = %+v", s)
	}
}

func TestHandleLedgerEventFailure(t *testing.T) {
	mirror := &fakeMirror{err: errors.New("quota exceeded")}
	w := NewMirrorWorker(staticLoader{sampleLedger()}, mirror, nil)

	err := w.HandleLedgerEvent(context.Background(), &amqp.LedgerEventMessage{Type: "deleted"})
	if err == nil || !errors.Is(err, mirror.err) {
		t.Fatalf("expected wrapped mirror error, got %v", err)
	}
	if s := w.Stats(); s.Failures != 1 || s.Synced != 0 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestRunPeriodic(t *testing.T) {
	mirror := &fakeMirror{called: make(chan struct{}, 1)}
	w := NewMirrorWorker(staticLoader{core.Ledger{}}, mirror, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.RunPeriodic(ctx, 5*time.Millisecond) }()

	// Startup sync plus at least one tick.
	for i := 0; i < 2; i++ {
		select {
		case <-mirror.called:
		case <-time.After(2 * time.Second):
			t.Fatal("mirror was not called")
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("RunPeriodic returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunPeriodic did not stop")
	}
	if mirror.Calls() < 2 {
		t.Fatalf("calls = %d", mirror.Calls())
	}
}

func TestRunPeriodicRejectsZeroInterval(t *testing.T) {
	w := NewMirrorWorker(staticLoader{}, &fakeMirror{}, nil)
	if err := w.RunPeriodic(context.Background(), 0); err == nil {
		t.Fatal("expected error")
	}
}

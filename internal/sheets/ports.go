// Package sheets defines the spreadsheet mirror ports; google implements
// them on the Sheets API.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerMirror replaces the spreadsheet contents with the ledger.
	LedgerMirror interface {
		MirrorLedger(ctx context.Context, l core.Ledger) error
	}

	// LedgerReader reads back what the spreadsheet currently holds.
	LedgerReader interface {
		ReadLedger(ctx context.Context) (core.Ledger, error)
	}

	Mirror interface {
		LedgerMirror
		LedgerReader
	}
)

// Header is the first row written to the mirror sheet.
var Header = []string{"id", "description", "amount", "category", "date", "createdAt", "updatedAt"}

// Row renders t in Header order.
func Row(t core.Transaction) []string {
	return []string{t.ID, t.Description, t.Amount.String(), t.Category, t.Date, t.CreatedAt, t.UpdatedAt}
}

package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the calendar date format produced by a date input.
	DateLayout = "2006-01-02"
	// TimestampLayout matches an ISO 8601 instant with millisecond precision.
	TimestampLayout = "2006-01-02T15:04:05.000Z"

	// NoCategory is reported when there is nothing to rank.
	NoCategory = "N/A"
)

const (
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDate        = "date"
)

type (
	// Transaction is a single spending record. JSON field order is the
	// persisted and exported order.
	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Date        string          `json:"date"`
		CreatedAt   string          `json:"createdAt"`
		UpdatedAt   string          `json:"updatedAt"`
	}

	// Ledger is the ordered sequence of all transactions.
	Ledger []Transaction

	// TransactionInput carries raw form values before validation.
	TransactionInput struct {
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Date        string `json:"date"`
	}
)

var (
	ErrEmptyDescription    = errors.New("description cannot be empty")
	ErrInvalidAmount       = errors.New("amount must be a positive number")
	ErrMissingCategory     = errors.New("please select a category")
	ErrMissingDate         = errors.New("please select a date")
	ErrInvalidDate         = errors.New("date must use the YYYY-MM-DD format")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUnknownSortKey      = errors.New("unknown sort key")
	ErrInvalidCap          = errors.New("spending cap cannot be negative")
)

// DefaultCategories are offered to clients; stored categories are free-form.
var DefaultCategories = []string{"Food", "Books", "Transport", "Entertainment", "Fees", "Other"}

func init() {
	// Amounts are numbers in every persisted and exported document.
	decimal.MarshalJSONWithoutQuotes = true
}

// Validate checks every field independently and reports all violations.
func (in TransactionInput) Validate() (decimal.Decimal, error) {
	var errs ValidationErrors

	if strings.TrimSpace(in.Description) == "" {
		errs = append(errs, FieldError{Field: FieldDescription, Err: ErrEmptyDescription})
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		errs = append(errs, FieldError{Field: FieldAmount, Err: ErrInvalidAmount})
	}
	if strings.TrimSpace(in.Category) == "" {
		errs = append(errs, FieldError{Field: FieldCategory, Err: ErrMissingCategory})
	}
	if err := ValidateDate(in.Date); err != nil {
		errs = append(errs, FieldError{Field: FieldDate, Err: err})
	}

	if len(errs) > 0 {
		return decimal.Zero, errs
	}
	return amount, nil
}

// ValidateDate accepts a non-empty YYYY-MM-DD calendar date.
func ValidateDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return ErrMissingDate
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Validate checks the ledger invariants for a stored or imported record.
func (t Transaction) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(t.Description) == "" {
		errs = append(errs, FieldError{Field: FieldDescription, Err: ErrEmptyDescription})
	}
	if !t.Amount.IsPositive() {
		errs = append(errs, FieldError{Field: FieldAmount, Err: ErrInvalidAmount})
	}
	if strings.TrimSpace(t.Category) == "" {
		errs = append(errs, FieldError{Field: FieldCategory, Err: ErrMissingCategory})
	}
	if strings.TrimSpace(t.Date) == "" {
		errs = append(errs, FieldError{Field: FieldDate, Err: ErrMissingDate})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Input returns the transaction as form values, used to prefill an edit.
func (t Transaction) Input() TransactionInput {
	return TransactionInput{
		Description: t.Description,
		Amount:      t.Amount.String(),
		Category:    t.Category,
		Date:        t.Date,
	}
}

// Clone returns a copy that does not share the backing array.
func (l Ledger) Clone() Ledger {
	if l == nil {
		return Ledger{}
	}
	return append(Ledger(make([]Transaction, 0, len(l))), l...)
}

// IDs returns the set of ids present in the ledger.
func (l Ledger) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(l))
	for _, t := range l {
		ids[t.ID] = struct{}{}
	}
	return ids
}

// Index returns the position of id, or -1.
func (l Ledger) Index(id string) int {
	for i, t := range l {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// FormatTimestamp renders t as an ISO 8601 UTC instant.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

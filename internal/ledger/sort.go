package ledger

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"fintrack/internal/core"
)

// Sort keys accepted by SortLedger.
const (
	SortByID          = "id"
	SortByDescription = "description"
	SortByAmount      = "amount"
	SortByCategory    = "category"
	SortByDate        = "date"
	SortByCreatedAt   = "createdAt"
	SortByUpdatedAt   = "updatedAt"
)

var textFields = map[string]func(core.Transaction) string{
	SortByID:          func(t core.Transaction) string { return t.ID },
	SortByDescription: func(t core.Transaction) string { return t.Description },
	SortByCategory:    func(t core.Transaction) string { return t.Category },
	SortByDate:        func(t core.Transaction) string { return t.Date },
	SortByCreatedAt:   func(t core.Transaction) string { return t.CreatedAt },
	SortByUpdatedAt:   func(t core.Transaction) string { return t.UpdatedAt },
}

// ValidSortKey reports whether key names a sortable field.
func ValidSortKey(key string) bool {
	if key == SortByAmount {
		return true
	}
	_, ok := textFields[key]
	return ok
}

// SortState remembers the last sort key and direction.
type SortState struct {
	Key       string `json:"key"`
	Ascending bool   `json:"ascending"`
}

// Toggle flips the direction when key repeats and resets to ascending when
// it changes.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key {
		return SortState{Key: key, Ascending: !s.Ascending}
	}
	return SortState{Key: key, Ascending: true}
}

// SortLedger returns a stably sorted copy. Amounts compare numerically and
// every other field uses locale-aware collation.
func SortLedger(l core.Ledger, key string, ascending bool) (core.Ledger, error) {
	cmp, err := comparator(key)
	if err != nil {
		return nil, err
	}
	out := l.Clone()
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		if ascending {
			return cmp(a, b)
		}
		return cmp(b, a)
	})
	return out, nil
}

func comparator(key string) (func(a, b core.Transaction) int, error) {
	if key == SortByAmount {
		return func(a, b core.Transaction) int { return a.Amount.Cmp(b.Amount) }, nil
	}
	field, ok := textFields[key]
	if !ok {
		return nil, core.ErrUnknownSortKey
	}
	// A Collator keeps internal buffers, so each sort gets its own.
	c := collate.New(language.Und)
	return func(a, b core.Transaction) int {
		return c.CompareString(field(a), field(b))
	}, nil
}

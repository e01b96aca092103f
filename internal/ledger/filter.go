package ledger

import (
	"strings"

	"fintrack/internal/core"
)

// Filter keeps transactions whose description or category contains query
// (case-insensitive) or whose date contains it. Ledger order is preserved and
// an empty query keeps everything.
func Filter(l core.Ledger, query string) core.Ledger {
	q := strings.ToLower(query)
	if q == "" {
		return l.Clone()
	}
	out := core.Ledger{}
	for _, t := range l {
		if strings.Contains(strings.ToLower(t.Description), q) ||
			strings.Contains(strings.ToLower(t.Category), q) ||
			strings.Contains(t.Date, q) {
			out = append(out, t)
		}
	}
	return out
}

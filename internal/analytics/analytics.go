// Package analytics derives dashboard metrics from a ledger snapshot.
//
// Every function is pure: it reads the ledger and settings it is given and
// never mutates them.
package analytics

import (
	"sort"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CategoryTotal is the aggregate spend of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// CategoryTotals is ordered by first appearance in the ledger.
type CategoryTotals []CategoryTotal

// Map returns the totals keyed by category.
func (c CategoryTotals) Map() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(c))
	for _, ct := range c {
		out[ct.Category] = ct.Amount
	}
	return out
}

// Sum adds every category total.
func (c CategoryTotals) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, ct := range c {
		sum = sum.Add(ct.Amount)
	}
	return sum
}

// BreakdownRow is one line of the category breakdown.
type BreakdownRow struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

// TotalSpent sums every amount without intermediate rounding.
func TotalSpent(l core.Ledger) decimal.Decimal {
	total := decimal.Zero
	for _, t := range l {
		total = total.Add(t.Amount)
	}
	return total
}

// TransactionCount is the number of transactions in the ledger.
func TransactionCount(l core.Ledger) int {
	return len(l)
}

// ByCategory groups amounts and counts by category, in order of first appearance.
func ByCategory(l core.Ledger) CategoryTotals {
	index := make(map[string]int)
	var out CategoryTotals
	for _, t := range l {
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryTotal{Category: t.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
		out[i].Count++
	}
	return out
}

// TopCategoryByAmount returns the category with the largest total spend.
// Ties go to the category that appeared first in the ledger.
func TopCategoryByAmount(l core.Ledger) string {
	totals := ByCategory(l)
	if len(totals) == 0 {
		return core.NoCategory
	}
	best := totals[0]
	for _, ct := range totals[1:] {
		if ct.Amount.GreaterThan(best.Amount) {
			best = ct
		}
	}
	return best.Category
}

// TopCategoryByCount returns the category with the most transactions.
// Ties go to the category that appeared first in the ledger.
func TopCategoryByCount(l core.Ledger) string {
	totals := ByCategory(l)
	if len(totals) == 0 {
		return core.NoCategory
	}
	best := totals[0]
	for _, ct := range totals[1:] {
		if ct.Count > best.Count {
			best = ct
		}
	}
	return best.Category
}

// CategoryBreakdown sorts category totals by amount, highest first, and computes each
// share of the combined total. Equal amounts keep their first-appearance order.
func CategoryBreakdown(l core.Ledger) []BreakdownRow {
	totals := ByCategory(l)
	if len(totals) == 0 {
		return []BreakdownRow{}
	}
	sum := totals.Sum()

	rows := make([]BreakdownRow, len(totals))
	for i, ct := range totals {
		rows[i] = BreakdownRow{Category: ct.Category, Amount: ct.Amount}
		if sum.IsPositive() {
			rows[i].Percentage = ct.Amount.Div(sum).Mul(hundred).InexactFloat64()
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Amount.GreaterThan(rows[j].Amount)
	})
	return rows
}

// IsOverCap reports whether total exceeds a configured, non-zero cap.
func IsOverCap(total decimal.Decimal, s core.Settings) bool {
	return s.Cap.IsPositive() && total.GreaterThan(s.Cap)
}

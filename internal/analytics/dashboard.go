package analytics

import (
	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// EmptyBreakdownText is shown in place of the breakdown for an empty ledger.
const EmptyBreakdownText = "No transactions yet"

// Dashboard bundles every metric the display layer paints.
type Dashboard struct {
	Currency           string          `json:"currency"`
	CurrencySymbol     string          `json:"currency_symbol"`
	Total              decimal.Decimal `json:"total"`
	TotalDisplay       string          `json:"total_display"`
	Count              int             `json:"count"`
	TopCategory        string          `json:"top_category"`
	TopCategoryByCount string          `json:"top_category_by_count"`
	Cap                decimal.Decimal `json:"cap"`
	CapDisplay         string          `json:"cap_display"`
	OverCap            bool            `json:"over_cap"`
	Breakdown          []BreakdownRow  `json:"breakdown"`
	Placeholder        string          `json:"placeholder,omitempty"`
}

// BuildDashboard computes the dashboard for a ledger snapshot.
func BuildDashboard(l core.Ledger, s core.Settings) Dashboard {
	s = s.Normalize()
	symbol := core.CurrencySymbol(s.Currency)
	total := TotalSpent(l)

	d := Dashboard{
		Currency:           s.Currency,
		CurrencySymbol:     symbol,
		Total:              total,
		TotalDisplay:       core.FormatMoney(symbol, total),
		Count:              TransactionCount(l),
		TopCategory:        TopCategoryByAmount(l),
		TopCategoryByCount: TopCategoryByCount(l),
		Cap:                s.Cap,
		CapDisplay:         core.FormatMoney(symbol, s.Cap),
		OverCap:            IsOverCap(total, s),
		Breakdown:          CategoryBreakdown(l),
	}
	if len(d.Breakdown) == 0 {
		d.Placeholder = EmptyBreakdownText
	}
	return d
}

package analytics

import (
	"math"
	"testing"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

func tx(id, category, amount string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Description: "item " + id,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Date:        "2025-03-01",
	}
}

func sampleLedger() core.Ledger {
	return core.Ledger{
		tx("1", "Food", "50"),
		tx("2", "Food", "30"),
		tx("3", "Transport", "20"),
	}
}

func TestScenarioFoodTransport(t *testing.T) {
	l := sampleLedger()

	if got := TotalSpent(l); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("TotalSpent = %s, want 100", got)
	}
	if got := TransactionCount(l); got != 3 {
		t.Fatalf("TransactionCount = %d, want 3", got)
	}
	if got := TopCategoryByAmount(l); got != "Food" {
		t.Fatalf("TopCategoryByAmount = %q, want Food", got)
	}

	rows := CategoryBreakdown(l)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	want := []struct {
		cat    string
		amount int64
		pct    float64
	}{{"Food", 80, 80}, {"Transport", 20, 20}}
	for i, w := range want {
		if rows[i].Category != w.cat || !rows[i].Amount.Equal(decimal.NewFromInt(w.amount)) || math.Abs(rows[i].Percentage-w.pct) > 1e-9 {
			t.Fatalf("row %d = %+v, want %+v", i, rows[i], w)
		}
	}
}

func TestEmptyLedger(t *testing.T) {
	var l core.Ledger
	if !TotalSpent(l).IsZero() {
		t.Fatalf("expected zero total")
	}
	if TransactionCount(l) != 0 {
		t.Fatalf("expected zero count")
	}
	if TopCategoryByAmount(l) != core.NoCategory || TopCategoryByCount(l) != core.NoCategory {
		t.Fatalf("expected N/A for empty ledger")
	}
	if rows := CategoryBreakdown(l); rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil breakdown, got %v", rows)
	}
}

func TestCategoryTotalsSumMatchesTotal(t *testing.T) {
	l := core.Ledger{
		tx("1", "Food", "0.1"),
		tx("2", "Books", "0.2"),
		tx("3", "Food", "12.345"),
		tx("4", "Fees", "7"),
		tx("5", "Books", "3.333"),
	}
	totals := ByCategory(l)
	if !totals.Sum().Equal(TotalSpent(l)) {
		t.Fatalf("sum of category totals %s != total %s", totals.Sum(), TotalSpent(l))
	}
	if got := totals.Map()["Books"]; !got.Equal(decimal.RequireFromString("3.533")) {
		t.Fatalf("Books total = %s", got)
	}
	if totals[0].Category != "Food" || totals[1].Category != "Books" || totals[2].Category != "Fees" {
		t.Fatalf("totals not in first-appearance order: %+v", totals)
	}
}

func TestBreakdownPercentagesSumTo100(t *testing.T) {
	l := core.Ledger{
		tx("1", "A", "1"),
		tx("2", "B", "1"),
		tx("3", "C", "1"),
		tx("4", "D", "0.07"),
	}
	sum := 0.0
	for _, r := range CategoryBreakdown(l) {
		sum += r.Percentage
	}
	if math.Abs(sum-100) > 1e-6 {
		t.Fatalf("percentages sum to %f", sum)
	}
}

func TestBreakdownTiesKeepFirstAppearance(t *testing.T) {
	l := core.Ledger{tx("1", "B", "5"), tx("2", "A", "5"), tx("3", "C", "9")}
	rows := CategoryBreakdown(l)
	if rows[0].Category != "C" || rows[1].Category != "B" || rows[2].Category != "A" {
		t.Fatalf("unexpected order: %+v", rows)
	}
}

func TestTopCategoryByAmountVersusCount(t *testing.T) {
	l := core.Ledger{
		tx("1", "Coffee", "3"),
		tx("2", "Coffee", "3"),
		tx("3", "Coffee", "3"),
		tx("4", "Rent", "900"),
	}
	if got := TopCategoryByAmount(l); got != "Rent" {
		t.Fatalf("by amount = %q, want Rent", got)
	}
	if got := TopCategoryByCount(l); got != "Coffee" {
		t.Fatalf("by count = %q, want Coffee", got)
	}

	tie := core.Ledger{tx("1", "X", "10"), tx("2", "Y", "10")}
	if got := TopCategoryByAmount(tie); got != "X" {
		t.Fatalf("tie by amount = %q, want X", got)
	}
	if got := TopCategoryByCount(tie); got != "X" {
		t.Fatalf("tie by count = %q, want X", got)
	}
}

func TestIsOverCap(t *testing.T) {
	cases := []struct {
		cap, total string
		want       bool
	}{
		{"50", "80", true},
		{"0", "80", false},
		{"0", "1000000", false},
		{"80", "80", false},
		{"100", "80", false},
	}
	for _, tc := range cases {
		s := core.Settings{Currency: "USD", Cap: decimal.RequireFromString(tc.cap)}
		if got := IsOverCap(decimal.RequireFromString(tc.total), s); got != tc.want {
			t.Fatalf("IsOverCap(total=%s, cap=%s) = %v, want %v", tc.total, tc.cap, got, tc.want)
		}
	}
}

func TestBuildDashboard(t *testing.T) {
	d := BuildDashboard(sampleLedger(), core.Settings{Currency: "ZAR", Cap: decimal.NewFromInt(50)})
	if d.TotalDisplay != "R100.00" || d.CapDisplay != "R50.00" {
		t.Fatalf("unexpected displays: %q %q", d.TotalDisplay, d.CapDisplay)
	}
	if !d.OverCap || d.Count != 3 || d.TopCategory != "Food" || d.Placeholder != "" {
		t.Fatalf("unexpected dashboard: %+v", d)
	}

	empty := BuildDashboard(nil, core.Settings{})
	if empty.Currency != "USD" || empty.TotalDisplay != "$0.00" || empty.Placeholder != EmptyBreakdownText {
		t.Fatalf("unexpected empty dashboard: %+v", empty)
	}
}

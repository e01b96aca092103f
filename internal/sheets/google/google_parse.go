package google

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// ledgerValues converts l to the value matrix written to the sheet: the
// header row followed by one row per transaction.
func ledgerValues(l core.Ledger) [][]any {
	values := make([][]any, 0, len(l)+1)
	values = append(values, toAny(sheets.Header))
	for _, t := range l {
		values = append(values, toAny(sheets.Row(t)))
	}
	return values
}

// parseLedger reads a value matrix back into a ledger. Columns are located
// by header name; rows without an id or with an unreadable amount are skipped.
func parseLedger(values [][]any) (core.Ledger, error) {
	if len(values) == 0 {
		return core.Ledger{}, nil
	}
	headers := toStrings(values[0])
	cols := make(map[string]int, len(sheets.Header))
	var missing []string
	for _, name := range sheets.Header {
		idx := indexOf(headers, name)
		if idx == -1 {
			missing = append(missing, name)
			continue
		}
		cols[name] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected ledger header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	out := core.Ledger{}
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		id := safeGet(row, cols["id"])
		if id == "" {
			continue
		}
		amount, err := decimal.NewFromString(safeGet(row, cols["amount"]))
		if err != nil {
			continue
		}
		out = append(out, core.Transaction{
			ID:          id,
			Description: safeGet(row, cols["description"]),
			Amount:      amount,
			Category:    safeGet(row, cols["category"]),
			Date:        safeGet(row, cols["date"]),
			CreatedAt:   safeGet(row, cols["createdAt"]),
			UpdatedAt:   safeGet(row, cols["updatedAt"]),
		})
	}
	return out, nil
}

// sameLedger compares the fields the sheet stores.
func sameLedger(a, b core.Ledger) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ra, rb := sheets.Row(a[i]), sheets.Row(b[i])
		for j := range ra {
			if ra[j] != rb[j] {
				return false
			}
		}
	}
	return true
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// a1Range quotes sheet for use in an A1 range.
func a1Range(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}

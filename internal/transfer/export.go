// Package transfer converts ledgers to and from the JSON and CSV file
// formats used for backup and exchange.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// Format names a file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var (
	ErrEmptyExport       = errors.New("no transactions to export")
	ErrNotAnArray        = errors.New("invalid JSON format: expected an array")
	ErrParseFailure      = errors.New("could not parse file")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// csvHeader is the column order of exported CSV files.
var csvHeader = []string{"id", "description", "amount", "category", "date", "createdAt", "updatedAt"}

// ParseFormat accepts "json" and "csv", case-insensitively. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FileName is the download name for an export in f.
func (f Format) FileName() string {
	return "transactions." + string(f)
}

// ContentType is the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// Export renders l in the requested format.
func Export(l core.Ledger, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return ExportJSON(l)
	case FormatCSV:
		return ExportCSV(l)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}

// ExportJSON renders l as a 2-space indented JSON array.
func ExportJSON(l core.Ledger) ([]byte, error) {
	if len(l) == 0 {
		return nil, ErrEmptyExport
	}
	b, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return b, nil
}

// ExportCSV renders l with a header row. Every field is quoted and embedded
// quotes are doubled; rows are separated by "\n".
func ExportCSV(l core.Ledger) ([]byte, error) {
	if len(l) == 0 {
		return nil, ErrEmptyExport
	}
	var buf bytes.Buffer
	writeRow(&buf, csvHeader)
	for _, t := range l {
		buf.WriteByte('\n')
		writeRow(&buf, []string{
			t.ID,
			t.Description,
			t.Amount.String(),
			t.Category,
			t.Date,
			t.CreatedAt,
			t.UpdatedAt,
		})
	}
	return buf.Bytes(), nil
}

// writeRow writes fields with unconditional quoting; encoding/csv only
// quotes when a field needs it.
func writeRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
}

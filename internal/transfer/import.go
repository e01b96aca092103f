package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Skip reasons reported for rejected records.
const (
	ReasonUndecodable = "record could not be decoded"
	ReasonDuplicateID = "id already exists"
)

// Skipped describes a record left out of an import.
type Skipped struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// Result is the outcome of parsing an import file.
type Result struct {
	Accepted []core.Transaction `json:"-"`
	Skipped  []Skipped          `json:"skipped"`
}

// Importer validates decoded records against the ledger they will join.
type Importer struct {
	existing map[string]struct{}
	ids      core.IDGenerator
	now      string
	result   Result
}

// NewImporter prepares an import into a ledger holding existing ids. Records
// without an id get one from ids; records without timestamps get now.
func NewImporter(existing map[string]struct{}, ids core.IDGenerator, now time.Time) *Importer {
	seen := make(map[string]struct{}, len(existing))
	for id := range existing {
		seen[id] = struct{}{}
	}
	if ids == nil {
		ids = &core.UUIDGenerator{}
	}
	return &Importer{existing: seen, ids: ids, now: core.FormatTimestamp(now)}
}

// Parse decodes content in format f.
func Parse(f Format, content []byte, existing map[string]struct{}, ids core.IDGenerator, now time.Time) (Result, error) {
	switch f {
	case FormatJSON:
		return ParseJSON(content, existing, ids, now)
	case FormatCSV:
		return ParseCSV(content, existing, ids, now)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}

var utf8BOM = []byte("\xef\xbb\xbf")

// ParseJSON reads a JSON array of transactions.
func ParseJSON(content []byte, existing map[string]struct{}, ids core.IDGenerator, now time.Time) (Result, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if !json.Valid(content) {
		return Result{}, fmt.Errorf("%w: content is not valid JSON", ErrParseFailure)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(content, &records); err != nil || records == nil {
		return Result{}, ErrNotAnArray
	}

	imp := NewImporter(existing, ids, now)
	for i, raw := range records {
		var t core.Transaction
		if err := json.Unmarshal(raw, &t); err != nil {
			imp.skip(i, "", ReasonUndecodable)
			continue
		}
		imp.Add(i, t)
	}
	return imp.Result(), nil
}

// ParseCSV reads the CSV layout produced by ExportCSV. Columns are matched by
// header name; description, amount, category and date are required.
func ParseCSV(content []byte, existing map[string]struct{}, ids core.IDGenerator, now time.Time) (Result, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{core.FieldDescription, core.FieldAmount, core.FieldCategory, core.FieldDate} {
		if _, ok := cols[required]; !ok {
			return Result{}, fmt.Errorf("%w: missing %q column", ErrParseFailure, required)
		}
	}

	imp := NewImporter(existing, ids, now)
	for i := 0; ; i++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
		}
		get := func(name string) string {
			if j, ok := cols[name]; ok && j < len(row) {
				return row[j]
			}
			return ""
		}

		t := core.Transaction{
			ID:          get("id"),
			Description: get(core.FieldDescription),
			Category:    get(core.FieldCategory),
			Date:        get(core.FieldDate),
			CreatedAt:   get("createdAt"),
			UpdatedAt:   get("updatedAt"),
		}
		if raw := strings.TrimSpace(get(core.FieldAmount)); raw != "" {
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				imp.skip(i, t.ID, core.ErrInvalidAmount.Error())
				continue
			}
			t.Amount = amount
		}
		imp.Add(i, t)
	}
	return imp.Result(), nil
}

// Add validates t and accepts it unless it breaks a ledger invariant.
func (imp *Importer) Add(index int, t core.Transaction) {
	t.ID = strings.TrimSpace(t.ID)
	t.Description = strings.TrimSpace(t.Description)
	t.Category = strings.TrimSpace(t.Category)
	t.Date = strings.TrimSpace(t.Date)

	if err := t.Validate(); err != nil {
		imp.skip(index, t.ID, err.Error())
		return
	}
	if t.ID == "" {
		t.ID = imp.ids.NewID()
	}
	if _, dup := imp.existing[t.ID]; dup {
		imp.skip(index, t.ID, ReasonDuplicateID)
		return
	}
	if t.CreatedAt == "" {
		t.CreatedAt = imp.now
	}
	if t.UpdatedAt == "" {
		t.UpdatedAt = t.CreatedAt
	}

	imp.existing[t.ID] = struct{}{}
	imp.result.Accepted = append(imp.result.Accepted, t)
}

// Result returns everything accepted and skipped so far.
func (imp *Importer) Result() Result {
	return imp.result
}

func (imp *Importer) skip(index int, id, reason string) {
	imp.result.Skipped = append(imp.result.Skipped, Skipped{Index: index, ID: id, Reason: reason})
}

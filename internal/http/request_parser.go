// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Bodies may be JSON or form-encoded; both map onto the same inputs.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/transfer"
)

const (
	// maxBodyBytes bounds JSON and form bodies.
	maxBodyBytes = 1 << 20
	// maxUploadBytes bounds import files.
	maxUploadBytes = 10 << 20
)

var ErrBodyTooLarge = errors.New("request body too large")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most limit bytes of the body once.
func NewRequestBodyParser(r *http.Request, limit int64) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = readLimited(r.Body, limit)
	return p
}

func readLimited(body io.Reader, limit int64) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrBodyTooLarge
	}
	return data, nil
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("invalid JSON body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	if p.err != nil {
		p.err = fmt.Errorf("invalid form body: %w", p.err)
	}
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was sent at all.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	return p.formData != nil && p.formData.Has(key)
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// ParseTransactionInput reads the four form fields of a transaction.
func ParseTransactionInput(r *http.Request) (core.TransactionInput, error) {
	p := NewRequestBodyParser(r, maxBodyBytes)
	if err := p.Parse(); err != nil {
		return core.TransactionInput{}, err
	}
	return core.TransactionInput{
		Description: p.Get(core.FieldDescription),
		Amount:      p.Get(core.FieldAmount),
		Category:    p.Get(core.FieldCategory),
		Date:        p.Get(core.FieldDate),
	}, nil
}

// ParseSettings reads currency and cap. A missing or blank cap means no cap.
func ParseSettings(r *http.Request) (core.Settings, error) {
	p := NewRequestBodyParser(r, maxBodyBytes)
	if err := p.Parse(); err != nil {
		return core.Settings{}, err
	}
	st := core.Settings{Currency: p.Get("currency"), Cap: decimal.Zero}
	if raw := p.Get("cap"); raw != "" {
		c, err := decimal.NewFromString(raw)
		if err != nil {
			return core.Settings{}, fmt.Errorf("invalid cap %q: %w", raw, err)
		}
		st.Cap = c
	}
	return st, nil
}

// ParseImport returns the uploaded file and its format. The file comes from a
// multipart "file" field or the raw body; the format from ?format=, the upload
// name, or the content type, defaulting to JSON.
func ParseImport(w http.ResponseWriter, r *http.Request) (transfer.Format, []byte, error) {
	var (
		content  []byte
		fileName string
		err      error
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, header, ferr := r.FormFile("file")
		if ferr != nil {
			return "", nil, fmt.Errorf("read upload: %w", ferr)
		}
		defer file.Close()
		fileName = header.Filename
		content, err = readLimited(file, maxUploadBytes)
	} else {
		content, err = readLimited(r.Body, maxUploadBytes)
	}
	if err != nil {
		return "", nil, err
	}

	format, err := importFormat(r.URL.Query().Get("format"), fileName, mediaType)
	if err != nil {
		return "", nil, err
	}
	return format, content, nil
}

func importFormat(query, fileName, mediaType string) (transfer.Format, error) {
	if query != "" {
		return transfer.ParseFormat(query)
	}
	switch {
	case strings.HasSuffix(strings.ToLower(fileName), ".csv"), mediaType == "text/csv":
		return transfer.FormatCSV, nil
	default:
		return transfer.FormatJSON, nil
	}
}

// ParseExportFormat reads ?format=, defaulting to JSON.
func ParseExportFormat(r *http.Request) (transfer.Format, error) {
	if q := r.URL.Query().Get("format"); q != "" {
		return transfer.ParseFormat(q)
	}
	return transfer.FormatJSON, nil
}

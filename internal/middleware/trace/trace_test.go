package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Format: "json", Output: &buf})
	m := NewMiddleware(logger, func(*http.Request) string { return "198.51.100.7" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = log.RequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/transactions/txn_x", nil))

	if !strings.HasPrefix(seen, "req_") || rr.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("request id = %q header = %q", seen, rr.Header().Get(RequestIDHeader))
	}
	out := buf.String()
	for _, want := range []string{`"level":"WARN"`, `"status_code":404`, `"client_ip":"198.51.100.7"`, `"request_id":"` + seen + `"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s: %s", want, out)
		}
	}
	if m.TotalRequests() != 1 {
		t.Fatalf("total = %d", m.TotalRequests())
	}
}

func TestMiddlewareKeepsValidIncomingID(t *testing.T) {
	m := NewMiddleware(nil, nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		incoming string
		keep     bool
	}{
		{"abc-123_DEF", true},
		{"has space", false},
		{strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, tt.incoming)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if got := rr.Header().Get(RequestIDHeader) == tt.incoming; got != tt.keep {
			t.Errorf("incoming %q kept = %v, want %v", tt.incoming, got, tt.keep)
		}
	}
}

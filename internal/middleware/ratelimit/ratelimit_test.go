package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewLimiter(Config{RequestsPerWindow: 2, Window: time.Minute}).WithClock(func() time.Time { return now })
	defer rl.Stop()

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Fatal("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Fatal("other clients are independent")
	}
	if rl.Rejected() != 1 {
		t.Fatalf("rejected = %d", rl.Rejected())
	}

	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Fatal("new window should reset the count")
	}
}

func TestCleanupStale(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewLimiter(Config{RequestsPerWindow: 5, Window: time.Second}).WithClock(func() time.Time { return now })
	defer rl.Stop()

	rl.Allow("old")
	now = now.Add(11 * time.Second)
	rl.Allow("fresh")

	if removed := rl.CleanupStale(); removed != 1 {
		t.Fatalf("removed = %d", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Fatalf("active = %d", rl.ActiveClients())
	}
}

func TestMiddleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerWindow: 1, Window: time.Minute})
	defer rl.Stop()
	rl.Stop() // idempotent

	h := rl.Middleware(
		func(*http.Request) string { return "client" },
		Mutating,
		nil,
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodPost, http.StatusNoContent},
		{http.MethodPost, http.StatusTooManyRequests},
		{http.MethodGet, http.StatusNoContent},
		{http.MethodDelete, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(tt.method, "/api/transactions", nil))
		if rr.Code != tt.want {
			t.Fatalf("%s status = %d, want %d", tt.method, rr.Code, tt.want)
		}
		if rr.Code == http.StatusTooManyRequests && rr.Header().Get("Retry-After") != "60" {
			t.Fatalf("Retry-After = %q", rr.Header().Get("Retry-After"))
		}
	}
}

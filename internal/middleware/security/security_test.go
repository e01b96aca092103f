package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"direct", "203.0.113.9:5000", nil, "203.0.113.9"},
		{"untrusted peer ignores forwarded", "203.0.113.9:5000", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "203.0.113.9"},
		{"trusted proxy forwarded", "10.0.0.2:5000", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.2"}, "1.2.3.4"},
		{"trusted proxy real ip", "127.0.0.1:5000", map[string]string{"X-Real-IP": "5.6.7.8"}, "5.6.7.8"},
		{"trusted proxy garbage header", "192.168.1.1:5000", map[string]string{"X-Forwarded-For": "nope"}, "192.168.1.1"},
		{"unparseable remote", "pipe", nil, "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Fatalf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   bool
	}{
		{"normal", http.MethodGet, "/api/transactions?q=food", "Mozilla/5.0", false},
		{"traversal", http.MethodGet, "/api/../../etc/passwd", "", true},
		{"query probe", http.MethodGet, "/api/transactions?file=.env", "", true},
		{"scanner", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			r.Header.Set("User-Agent", tt.agent)
			if got := d.DetectSuspiciousRequest(r); got != tt.want {
				t.Fatalf("DetectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
		})
	}
	if d.SuspiciousRequests() != 4 {
		t.Fatalf("counter = %d", d.SuspiciousRequests())
	}
	if err := d.AddTrustedProxy("bogus"); err == nil {
		t.Fatal("expected CIDR error")
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, name := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "Cache-Control"} {
		if rr.Header().Get(name) == "" {
			t.Errorf("missing %s", name)
		}
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}

package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/app"
	"fintrack/internal/cache"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

// ReadyCheck reports whether a dependency can serve requests.
type ReadyCheck func(ctx context.Context) error

// Options configures the server's optional collaborators.
type Options struct {
	Logger    *log.Logger
	RateLimit ratelimit.Config
	Headers   *security.HeadersConfig
	// Checks run on /readyz, keyed by dependency name.
	Checks map[string]ReadyCheck
	// DashboardCache is reported on /readyz and /metrics when set.
	DashboardCache *cache.LRUCache[analytics.Dashboard]
}

// Server serves the ledger API over one shared session.
type Server struct {
	http.Server
	session  *app.Session
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	headers  *security.HeadersMiddleware
	checks   map[string]ReadyCheck
	cache    *cache.LRUCache[analytics.Dashboard]
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, session *app.Session, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}

	s := &Server{
		session:  session,
		logger:   opts.Logger.WithComponent(log.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
		detector: security.NewDetector(),
		headers:  security.NewHeadersMiddleware(headers),
		checks:   opts.Checks,
		cache:    opts.DashboardCache,
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /api/transactions/sort", s.handleSortTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleEditTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handleSaveSettings)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/export", s.handleExport)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.withMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// withMiddleware wraps next with tracing, security headers, probe detection
// and rate limiting of mutating requests, outermost first.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.Mutating, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
	})(next)

	detected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request detected",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				"user_agent", r.Header.Get("User-Agent"))
		}
		limited.ServeHTTP(w, r)
	})

	return s.tracer.Middleware(s.headers.Middleware(detected))
}

// Shutdown stops the rate limiter and then the HTTP server. Safe to call more
// than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

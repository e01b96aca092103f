package http

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"fintrack/internal/app"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady runs every registered dependency check.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any, len(s.checks)+2)

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			checks[name] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", "check", name, log.FieldError, err)
			continue
		}
		checks[name] = "ok"
	}

	if s.cache != nil {
		checks["dashboard_cache"] = map[string]any{"entries": s.cache.Size(), "status": "ok"}
	}
	checks["rate_limiter"] = map[string]any{"active_clients": s.limiter.ActiveClients(), "status": "ok"}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}

	d := s.session.Dashboard()
	metric("http_requests_total", "counter", "Total number of HTTP requests", s.tracer.TotalRequests())
	metric("ledger_transactions", "gauge", "Transactions currently in the ledger", d.Count)
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", s.limiter.Rejected())
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", s.limiter.ActiveClients())
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", s.detector.SuspiciousRequests())
	if s.cache != nil {
		st := s.cache.Stats()
		metric("dashboard_cache_hits_total", "counter", "Total dashboard cache hits", st.Hits)
		metric("dashboard_cache_misses_total", "counter", "Total dashboard cache misses", st.Misses)
		metric("dashboard_cache_entries", "gauge", "Current dashboard cache entries", s.cache.Size())
	}
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.started).Seconds()))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var cmd app.Command = app.Refresh{}
	if r.URL.Query().Has("q") {
		cmd = app.SetSearchQuery{Query: r.URL.Query().Get("q")}
	}
	s.dispatch(w, r, cmd, http.StatusOK)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, err := ParseTransactionInput(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	s.dispatch(w, r, app.CreateTransaction{Input: in}, http.StatusCreated)
}

func (s *Server) handleSortTransactions(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, app.SetSort{Key: r.URL.Query().Get("key")}, http.StatusOK)
}

// handleGetTransaction returns a transaction together with the form values
// that prefill its edit form.
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, ok := s.session.Transaction(r.PathValue("id"))
	if !ok {
		NotFoundError(app.MsgNotFound).Write(w)
		return
	}
	NewResponse().JSON(struct {
		Transaction core.Transaction      `json:"transaction"`
		Input       core.TransactionInput `json:"input"`
	}{t, t.Input()}).Write(w)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	in, err := ParseTransactionInput(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	s.dispatch(w, r, app.EditTransaction{ID: r.PathValue("id"), Input: in}, http.StatusOK)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, app.DeleteTransaction{ID: r.PathValue("id")}, http.StatusOK)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.session.Dashboard()).Write(w)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.session.Settings()).Write(w)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	st, err := ParseSettings(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	s.dispatch(w, r, app.SaveSettings{Settings: st}, http.StatusOK)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := append([]string(nil), core.DefaultCategories...)
	sort.Strings(cats)
	NewResponse().JSON(map[string][]string{"categories": cats}).Write(w)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format, content, err := ParseImport(w, r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	s.dispatch(w, r, app.ImportFile{Format: format, Content: content}, http.StatusOK)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := ParseExportFormat(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	res, err := s.session.Dispatch(r.Context(), app.Export{Format: format})
	if err != nil {
		s.commandFailed(w, r, err, res.Notice)
		return
	}
	NewResponse().Attachment(res.Export.Name, res.Export.ContentType, res.Export.Data).Write(w)
}

// dispatch runs cmd and writes its Result, or the mapped error.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, cmd app.Command, successStatus int) {
	res, err := s.session.Dispatch(r.Context(), cmd)
	if err != nil {
		s.commandFailed(w, r, err, res.Notice)
		return
	}

	b := NewResponse().Status(successStatus).Notice(res.Notice)
	switch cmd.(type) {
	case app.CreateTransaction, app.EditTransaction, app.DeleteTransaction, app.ImportFile, app.SetSort:
		b.TriggerLedgerChanged()
	}
	b.JSON(res).Write(w)
}

func (s *Server) commandFailed(w http.ResponseWriter, r *http.Request, err error, notice *app.Notice) {
	ctx := r.Context()
	status := StatusFor(err)
	logger := log.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "Command failed", log.FieldPath, r.URL.Path, log.FieldError, err)
	} else {
		logger.DebugContext(ctx, "Command rejected", log.FieldPath, r.URL.Path, log.FieldError, err)
	}
	CommandError(err, notice).Write(w)
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).DebugContext(r.Context(), "Malformed request", log.FieldPath, r.URL.Path, log.FieldError, err)
	if StatusFor(err) == http.StatusBadRequest {
		CommandError(err, nil).Write(w)
		return
	}
	BadRequestError(err.Error()).Write(w)
}

/*
handlers.go - HTTP API handlers for the billing analytics service

PURPOSE:
  Exposes the analytics engine via REST API. Handles HTTP request parsing,
  filter extraction, JSON serialization, and delegates every computation to
  the engine over the cached canonical snapshot.

ENDPOINTS:
  GET /api/stats/summary         Summary KPIs + time series
  GET /api/stats/insights        Customers, quality, payments, aging, discounts
  GET /api/stats/transactions    Drilldown rows + pending invoices
  GET /api/client_search         Client history search
  GET /api/golden-verification   Golden-dataset invariant checks
  GET /health                    Liveness probe

REQUEST FLOW:
  1. Parse filter params (year, month, status, tipo, search)
  2. Get-or-refresh the canonical snapshot (cache, TTL-based)
  3. Run the engine over the immutable snapshot
  4. Serialize the sanitized bundle

ERROR HANDLING:
  Only the snapshot fetch can fail (503 when no data was ever loaded). An
  empty table is not an error: handlers return the engine's empty shapes
  with HTTP 200 and callers distinguish "no data" at the boundary.

SEE ALSO:
  - server.go: router setup and middleware
  - engine/engine.go: bundle computation
*/
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/vetwell/billing-engine/cache"
	"github.com/vetwell/billing-engine/engine"
	"github.com/vetwell/billing-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Cache    *cache.Service
	Engine   *engine.Engine
	CacheTTL time.Duration
}

// NewHandler creates a handler over the given store.
func NewHandler(store *sqlite.Store, ttl time.Duration) *Handler {
	return &Handler{
		Store:    store,
		Cache:    cache.NewService(),
		Engine:   engine.New(),
		CacheTTL: ttl,
	}
}

// snapshot returns the current canonical snapshot, refreshing it from the
// store when stale. Preprocessing runs once per refresh, never per request.
func (h *Handler) snapshot(ctx context.Context) (*cache.Snapshot, error) {
	return h.Cache.GetOrRefresh(ctx, h.CacheTTL, func(ctx context.Context) (*cache.Snapshot, error) {
		raw, err := h.Store.FetchActive(ctx)
		if err != nil {
			return nil, err
		}
		return &cache.Snapshot{
			Table:     engine.Preprocess(raw),
			Columns:   raw.Columns,
			FetchedAt: time.Now(),
		}, nil
	})
}

// parseFilter extracts the filter spec from query parameters. Absent or
// malformed values fall back to "no constraint".
func parseFilter(r *http.Request) engine.FilterSpec {
	q := r.URL.Query()
	year, _ := strconv.Atoi(q.Get("year"))
	month, _ := strconv.Atoi(q.Get("month"))
	return engine.FilterSpec{
		Year:   year,
		Month:  month,
		Status: q.Get("status"),
		Tipo:   q.Get("tipo"),
		Search: q.Get("search"),
	}
}

// =============================================================================
// STATS HANDLERS
// =============================================================================

// GetSummary serves the KPI and time-series bundle.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "No data available", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.Summary(snap.Table, parseFilter(r)))
}

// GetInsights serves the customer/quality/payments/aging bundle.
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "No data available", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.Insights(snap.Table, snap.Columns, parseFilter(r)))
}

// GetTransactions serves the row-level bundle.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "No data available", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.Transactions(snap.Table, parseFilter(r)))
}

// ClientSearch serves the full history of matching clients.
func (h *Handler) ClientSearch(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "No data available", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.ClientSearch(snap.Table, r.URL.Query().Get("query")))
}

// GoldenVerification recomputes the golden-dataset checks over the current
// snapshot. Failing checks are reported in the body, never as an HTTP error.
func (h *Handler) GoldenVerification(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "No data available", err)
		return
	}
	writeJSON(w, http.StatusOK, engine.VerifyGolden(snap.Table))
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

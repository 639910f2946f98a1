package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docvault-ai/docvault/internal/config"
	"github.com/docvault-ai/docvault/internal/core/ports"
	"github.com/docvault-ai/docvault/internal/observability/metrics"
)

const actorHeader = "X-Actor"

// BreakerStateReader reports circuit breaker states per outbound
// operation; /healthz surfaces them.
type BreakerStateReader interface {
	BreakerStates() map[string]string
}

type Router struct {
	cfg config.Config

	ingestor  ports.DocumentIngestor
	documents ports.DocumentService
	search    ports.DocumentSearcher
	workflows ports.WorkflowAdmin
	stats     ports.StatsReader
	audit     ports.AuditReader

	metrics  *metrics.HTTP
	breakers BreakerStateReader
}

func NewRouter(
	cfg config.Config,
	ingestor ports.DocumentIngestor,
	documents ports.DocumentService,
	search ports.DocumentSearcher,
	workflows ports.WorkflowAdmin,
	stats ports.StatsReader,
	audit ports.AuditReader,
	httpMetrics *metrics.HTTP,
	breakers BreakerStateReader,
) *Router {
	return &Router{
		cfg:       cfg,
		ingestor:  ingestor,
		documents: documents,
		search:    search,
		workflows: workflows,
		stats:     stats,
		audit:     audit,
		metrics:   httpMetrics,
		breakers:  breakers,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents", rt.listDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	mux.HandleFunc("DELETE /v1/documents/{id}", rt.deleteDocument)
	mux.HandleFunc("PUT /v1/documents/{id}/tags", rt.replaceTags)

	mux.HandleFunc("GET /v1/search", rt.searchDocuments)

	mux.HandleFunc("POST /v1/workflows", rt.createWorkflow)
	mux.HandleFunc("GET /v1/workflows", rt.listWorkflows)
	mux.HandleFunc("GET /v1/workflows/{id}", rt.getWorkflow)
	mux.HandleFunc("PUT /v1/workflows/{id}", rt.updateWorkflow)
	mux.HandleFunc("DELETE /v1/workflows/{id}", rt.deleteWorkflow)
	mux.HandleFunc("POST /v1/workflows/{id}/toggle", rt.toggleWorkflow)

	mux.HandleFunc("GET /v1/admin/stats", rt.adminStats)
	mux.HandleFunc("GET /v1/admin/audit", rt.adminAudit)

	var handler http.Handler = mux
	if rt.cfg.APIMaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, 50*time.Millisecond, rt.metrics)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.metrics)
	}
	handler = metricsMiddleware(handler, rt.metrics)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{"status": "ok"}
	if rt.breakers != nil {
		if states := rt.breakers.BreakerStates(); len(states) > 0 {
			payload["breakers"] = states
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

func actor(r *http.Request) string {
	a := strings.TrimSpace(r.Header.Get(actorHeader))
	if a == "" {
		return "anonymous"
	}
	return a
}

func pageParams(r *http.Request) (page, pageSize int) {
	page = queryInt(r, "page", 1)
	pageSize = queryInt(r, "page_size", 20)
	return page, pageSize
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type pagedResponse struct {
	Items    any `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

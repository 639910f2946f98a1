package httpadapter

import (
	"net/http"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

func (rt *Router) adminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.stats.ClassificationStats(r.Context())
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) adminAudit(w http.ResponseWriter, r *http.Request) {
	filter := domain.AuditFilter{
		Action:       domain.AuditAction(r.URL.Query().Get("action")),
		ResourceType: r.URL.Query().Get("resource_type"),
	}
	page, pageSize := pageParams(r)

	entries, total, err := rt.audit.ListAudit(r.Context(), filter, page, pageSize)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, pagedResponse{
		Items:    entries,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

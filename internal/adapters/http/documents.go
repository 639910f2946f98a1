package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if rt.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes+1<<20)
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	doc, err := rt.ingestor.Upload(
		r.Context(),
		actor(r),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	filter := domain.DocumentFilter{
		Classification: r.URL.Query().Get("classification"),
		Status:         domain.DocumentStatus(r.URL.Query().Get("status")),
	}
	page, pageSize := pageParams(r)

	docs, total, err := rt.documents.List(r.Context(), filter, page, pageSize)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, pagedResponse{
		Items:    docs,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.documents.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := rt.documents.Delete(r.Context(), actor(r), r.PathValue("id")); err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) replaceTags(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	doc, err := rt.documents.ReplaceTags(r.Context(), r.PathValue("id"), req.Tags)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) searchDocuments(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	page, pageSize := pageParams(r)
	query := domain.SearchQuery{
		Text:           strings.TrimSpace(params.Get("q")),
		Classification: params.Get("classification"),
		EntityType:     domain.EntityType(strings.ToUpper(params.Get("entity_type"))),
		EntityValue:    params.Get("entity_value"),
		Page:           page,
		PageSize:       pageSize,
	}

	hits, total, err := rt.search.Search(r.Context(), query)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	if rt.metrics != nil {
		rt.metrics.SearchesTotal.Inc()
	}

	writeJSON(w, http.StatusOK, pagedResponse{
		Items:    hits,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

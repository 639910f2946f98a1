package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

// workflowRequest is the wire shape for create/update. Actions arrive
// as {type, params} pairs and are converted to typed actions.
type workflowRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"is_active"`
	Conditions  []struct {
		Field    string `json:"field"`
		Operator string `json:"operator"`
		Value    string `json:"value"`
	} `json:"conditions"`
	Actions []struct {
		Type   string            `json:"type"`
		Params map[string]string `json:"params"`
	} `json:"actions"`
}

func (req workflowRequest) toRule() (*domain.WorkflowRule, error) {
	conditions := make([]domain.Condition, 0, len(req.Conditions))
	for _, c := range req.Conditions {
		conditions = append(conditions, domain.Condition{
			Field:    domain.ConditionField(c.Field),
			Operator: domain.ConditionOperator(c.Operator),
			Value:    c.Value,
		})
	}

	actions := make([]domain.Action, 0, len(req.Actions))
	for _, a := range req.Actions {
		action, err := domain.ActionFromParams(a.Type, a.Params)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return &domain.WorkflowRule{
		Name:        req.Name,
		Description: req.Description,
		Active:      active,
		Conditions:  conditions,
		Actions:     actions,
	}, nil
}

func (rt *Router) createWorkflow(w http.ResponseWriter, r *http.Request) {
	var req workflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	rule, err := req.toRule()
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	if err := rt.workflows.Create(r.Context(), actor(r), rule); err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (rt *Router) listWorkflows(w http.ResponseWriter, r *http.Request) {
	var activeOnly *bool
	raw := r.URL.Query().Get("is_active")
	if raw == "" {
		// Legacy clients send "active".
		raw = r.URL.Query().Get("active")
	}
	if raw != "" {
		parsed := raw == "true" || raw == "1"
		activeOnly = &parsed
	}

	rules, err := rt.workflows.List(r.Context(), activeOnly)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": rules, "total": len(rules)})
}

func (rt *Router) getWorkflow(w http.ResponseWriter, r *http.Request) {
	rule, err := rt.workflows.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (rt *Router) updateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req workflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	rule, err := req.toRule()
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	rule.ID = r.PathValue("id")

	if err := rt.workflows.Update(r.Context(), actor(r), rule); err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (rt *Router) deleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if err := rt.workflows.Delete(r.Context(), actor(r), r.PathValue("id")); err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) toggleWorkflow(w http.ResponseWriter, r *http.Request) {
	active, err := rt.workflows.Toggle(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": r.PathValue("id"), "is_active": active})
}

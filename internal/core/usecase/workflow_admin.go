package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docvault-ai/docvault/internal/core/domain"
	"github.com/docvault-ai/docvault/internal/core/ports"
)

// WorkflowAdminUseCase manages the workflow rule lifecycle. Every mutation
// is recorded in the audit log with the acting user.
type WorkflowAdminUseCase struct {
	repo  ports.WorkflowRepository
	audit ports.AuditRepository
}

func NewWorkflowAdminUseCase(repo ports.WorkflowRepository, audit ports.AuditRepository) *WorkflowAdminUseCase {
	return &WorkflowAdminUseCase{repo: repo, audit: audit}
}

func (uc *WorkflowAdminUseCase) Create(ctx context.Context, actor string, rule *domain.WorkflowRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}

	now := time.Now().UTC()
	rule.ID = uuid.NewString()
	rule.TriggerCount = 0
	rule.CreatedAt = now
	rule.UpdatedAt = now

	if err := uc.repo.Create(ctx, rule); err != nil {
		return fmt.Errorf("create workflow rule: %w", err)
	}
	uc.logAudit(ctx, actor, domain.AuditWorkflowCreated, rule.ID, map[string]string{"name": rule.Name})
	return nil
}

func (uc *WorkflowAdminUseCase) GetByID(ctx context.Context, id string) (*domain.WorkflowRule, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *WorkflowAdminUseCase) List(ctx context.Context, activeOnly *bool) ([]domain.WorkflowRule, error) {
	return uc.repo.List(ctx, activeOnly)
}

func (uc *WorkflowAdminUseCase) Update(ctx context.Context, actor string, rule *domain.WorkflowRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}

	existing, err := uc.repo.GetByID(ctx, rule.ID)
	if err != nil {
		return err
	}

	rule.TriggerCount = existing.TriggerCount
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, rule); err != nil {
		return fmt.Errorf("update workflow rule: %w", err)
	}
	uc.logAudit(ctx, actor, domain.AuditWorkflowUpdated, rule.ID, map[string]string{"name": rule.Name})
	return nil
}

func (uc *WorkflowAdminUseCase) Delete(ctx context.Context, actor, id string) error {
	rule, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete workflow rule: %w", err)
	}
	uc.logAudit(ctx, actor, domain.AuditWorkflowDeleted, id, map[string]string{"name": rule.Name})
	return nil
}

func (uc *WorkflowAdminUseCase) Toggle(ctx context.Context, actor, id string) (bool, error) {
	rule, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	next := !rule.Active
	if err := uc.repo.SetActive(ctx, id, next); err != nil {
		return false, fmt.Errorf("toggle workflow rule: %w", err)
	}
	uc.logAudit(ctx, actor, domain.AuditWorkflowToggled, id, map[string]string{"is_active": strconv.FormatBool(next)})
	return next, nil
}

func validateRule(rule *domain.WorkflowRule) error {
	if strings.TrimSpace(rule.Name) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate rule", fmt.Errorf("name is required"))
	}
	// The evaluator never fires a zero-condition rule; reject them at
	// the admin surface so a drafted rule cannot sit silently inert.
	if len(rule.Conditions) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate rule", fmt.Errorf("at least one condition is required"))
	}
	for _, cond := range rule.Conditions {
		if strings.TrimSpace(string(cond.Field)) == "" || strings.TrimSpace(string(cond.Operator)) == "" {
			return domain.WrapError(domain.ErrInvalidInput, "validate rule", fmt.Errorf("condition field and operator are required"))
		}
	}
	for _, action := range rule.Actions {
		if strings.TrimSpace(string(action.Type)) == "" {
			return domain.WrapError(domain.ErrInvalidInput, "validate rule", fmt.Errorf("action type is required"))
		}
	}
	return nil
}

func (uc *WorkflowAdminUseCase) logAudit(ctx context.Context, actor string, action domain.AuditAction, ruleID string, details map[string]string) {
	entry := &domain.AuditEntry{
		ID:           uuid.NewString(),
		Actor:        actor,
		Action:       action,
		ResourceType: "workflow",
		ResourceID:   ruleID,
		Details:      details,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		slog.Warn("audit_append_failed", "action", string(action), "error", err)
	}
}

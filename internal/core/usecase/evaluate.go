package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/docvault-ai/docvault/internal/core/domain"
	"github.com/docvault-ai/docvault/internal/core/ports"
)

// EvaluateWorkflowsUseCase runs every active workflow rule against one
// processed document and applies the actions of the rules that fire.
//
// The rule set (including each rule's active flag) is snapshotted when the
// pass starts; toggles mid-pass take effect on the next document only.
// Rules are evaluated in creation order, oldest first, and never
// short-circuit: several rules may fire for the same document.
type EvaluateWorkflowsUseCase struct {
	workflows ports.WorkflowRepository
	documents ports.DocumentRepository
	notifier  ports.Notifier
	audit     ports.AuditRepository
	now       func() time.Time
}

func NewEvaluateWorkflowsUseCase(
	workflows ports.WorkflowRepository,
	documents ports.DocumentRepository,
	notifier ports.Notifier,
	audit ports.AuditRepository,
) *EvaluateWorkflowsUseCase {
	return &EvaluateWorkflowsUseCase{
		workflows: workflows,
		documents: documents,
		notifier:  notifier,
		audit:     audit,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// EvaluateDocument returns one RuleOutcome per evaluated rule, fired or
// not, for audit and observability. A malformed condition or a failing
// action degrades that rule's outcome; it never aborts the pass.
func (uc *EvaluateWorkflowsUseCase) EvaluateDocument(ctx context.Context, doc *domain.Document) ([]domain.RuleOutcome, error) {
	activeOnly := true
	rules, err := uc.workflows.List(ctx, &activeOnly)
	if err != nil {
		return nil, fmt.Errorf("load active rules: %w", err)
	}

	now := uc.now()
	tags := mapset.NewSet(doc.Tags...)
	outcomes := make([]domain.RuleOutcome, 0, len(rules))

	for i := range rules {
		rule := &rules[i]
		outcome := domain.RuleOutcome{
			RuleID:   rule.ID,
			RuleName: rule.Name,
		}

		fired, diags := evaluateRule(doc, rule, now)
		outcome.Diagnostics = diags
		outcome.Fired = fired

		if fired {
			if err := uc.workflows.IncrementTriggerCount(ctx, rule.ID); err != nil {
				outcome.Diagnostics = append(outcome.Diagnostics, fmt.Sprintf("increment trigger count: %v", err))
			}
			outcome.Actions = uc.applyActions(ctx, doc, rule, tags)
			uc.recordFiring(ctx, doc, rule)
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// applyActions runs a fired rule's actions in declared order. One action
// failing (or being unknown) never stops the actions after it, and a
// failed notify never rolls back a tag or the trigger count.
func (uc *EvaluateWorkflowsUseCase) applyActions(
	ctx context.Context,
	doc *domain.Document,
	rule *domain.WorkflowRule,
	tags mapset.Set[string],
) []domain.AppliedAction {
	applied := make([]domain.AppliedAction, 0, len(rule.Actions))

	for _, action := range rule.Actions {
		record := domain.AppliedAction{Type: action.Type, Status: domain.ActionApplied}

		switch action.Type {
		case domain.ActionTag:
			if tags.Contains(action.Tag) {
				record.Detail = "tag already present"
				break
			}
			if err := uc.documents.MergeTags(ctx, doc.ID, []string{action.Tag}); err != nil {
				record.Status = domain.ActionFailed
				record.Detail = err.Error()
				break
			}
			tags.Add(action.Tag)
			doc.Tags = append(doc.Tags, action.Tag)

		case domain.ActionNotify:
			err := uc.notifier.Notify(ctx, domain.Notification{
				Recipient:  action.Recipient,
				Message:    action.Message,
				DocumentID: doc.ID,
				RuleID:     rule.ID,
			})
			if err != nil {
				// Fire-and-forget: the firing stands even when the
				// notification cannot be delivered.
				record.Status = domain.ActionFailed
				record.Detail = err.Error()
				slog.Warn("notify_action_failed", "rule_id", rule.ID, "document_id", doc.ID, "error", err)
			}

		case domain.ActionMove:
			if err := uc.documents.SetFolder(ctx, doc.ID, action.Folder); err != nil {
				record.Status = domain.ActionFailed
				record.Detail = err.Error()
				break
			}
			doc.Folder = action.Folder

		default:
			record.Status = domain.ActionSkipped
			record.Detail = fmt.Sprintf("unknown action type %q", action.Type)
			slog.Warn("unknown_workflow_action", "rule_id", rule.ID, "action_type", string(action.Type))
		}

		applied = append(applied, record)
	}

	return applied
}

func (uc *EvaluateWorkflowsUseCase) recordFiring(ctx context.Context, doc *domain.Document, rule *domain.WorkflowRule) {
	entry := &domain.AuditEntry{
		ID:           uuid.NewString(),
		Actor:        "system",
		Action:       domain.AuditWorkflowFired,
		ResourceType: "workflow",
		ResourceID:   rule.ID,
		Details: map[string]string{
			"document_id": doc.ID,
			"rule_name":   rule.Name,
		},
		CreatedAt: uc.now(),
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		slog.Warn("audit_append_failed", "action", string(domain.AuditWorkflowFired), "error", err)
	}
}

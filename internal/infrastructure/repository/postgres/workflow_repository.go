package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

const workflowColumns = `id, name, description, conditions, actions, is_active, trigger_count, created_at, updated_at`

type WorkflowRepository struct {
	db *sql.DB
}

func NewWorkflowRepository(db *sql.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

func (r *WorkflowRepository) Create(ctx context.Context, rule *domain.WorkflowRule) error {
	conditionsJSON, actionsJSON, err := marshalRuleBody(rule)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO workflow_rules (id, name, description, conditions, actions, is_active, trigger_count, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, rule.ID, rule.Name, rule.Description, conditionsJSON, actionsJSON, rule.Active, rule.TriggerCount, rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert workflow rule: %w", err)
	}
	return nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*domain.WorkflowRule, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+workflowColumns+`
FROM workflow_rules
WHERE id = $1
`, id)

	rule, err := scanWorkflowRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrWorkflowNotFound, "get workflow rule", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan workflow rule: %w", err)
	}
	return rule, nil
}

// List returns rules oldest first: the stable evaluation order the
// evaluator relies on.
func (r *WorkflowRepository) List(ctx context.Context, activeOnly *bool) ([]domain.WorkflowRule, error) {
	query := `
SELECT ` + workflowColumns + `
FROM workflow_rules
`
	var args []any
	if activeOnly != nil {
		args = append(args, *activeOnly)
		query += "WHERE is_active = $1\n"
	}
	query += "ORDER BY created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workflow rules: %w", err)
	}
	defer rows.Close()

	out := make([]domain.WorkflowRule, 0)
	for rows.Next() {
		rule, err := scanWorkflowRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow rule row: %w", err)
		}
		out = append(out, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflow rules: %w", err)
	}
	return out, nil
}

func (r *WorkflowRepository) Update(ctx context.Context, rule *domain.WorkflowRule) error {
	conditionsJSON, actionsJSON, err := marshalRuleBody(rule)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE workflow_rules
SET name = $2, description = $3, conditions = $4, actions = $5, is_active = $6, updated_at = $7
WHERE id = $1
`, rule.ID, rule.Name, rule.Description, conditionsJSON, actionsJSON, rule.Active, rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update workflow rule: %w", err)
	}
	return requireRow(result, domain.ErrWorkflowNotFound, "update workflow rule", rule.ID)
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM workflow_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workflow rule: %w", err)
	}
	return requireRow(result, domain.ErrWorkflowNotFound, "delete workflow rule", id)
}

func (r *WorkflowRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE workflow_rules
SET is_active = $2, updated_at = $3
WHERE id = $1
`, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set workflow active: %w", err)
	}
	return requireRow(result, domain.ErrWorkflowNotFound, "set workflow active", id)
}

// IncrementTriggerCount is a single atomic statement so concurrent
// evaluations never lose an increment; the counter only grows.
func (r *WorkflowRepository) IncrementTriggerCount(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE workflow_rules
SET trigger_count = trigger_count + 1, updated_at = $2
WHERE id = $1
`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("increment trigger count: %w", err)
	}
	return requireRow(result, domain.ErrWorkflowNotFound, "increment trigger count", id)
}

func marshalRuleBody(rule *domain.WorkflowRule) ([]byte, []byte, error) {
	conditionsJSON, err := json.Marshal(rule.Conditions)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal conditions: %w", err)
	}
	actionsJSON, err := json.Marshal(rule.Actions)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal actions: %w", err)
	}
	return conditionsJSON, actionsJSON, nil
}

func scanWorkflowRule(row rowScanner) (*domain.WorkflowRule, error) {
	var rule domain.WorkflowRule
	var conditionsRaw, actionsRaw []byte

	err := row.Scan(
		&rule.ID, &rule.Name, &rule.Description, &conditionsRaw, &actionsRaw,
		&rule.Active, &rule.TriggerCount, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(conditionsRaw, &rule.Conditions); err != nil {
		return nil, fmt.Errorf("unmarshal conditions: %w", err)
	}
	if err := json.Unmarshal(actionsRaw, &rule.Actions); err != nil {
		return nil, fmt.Errorf("unmarshal actions: %w", err)
	}
	return &rule, nil
}

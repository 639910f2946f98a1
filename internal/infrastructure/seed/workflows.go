package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/docvault-ai/docvault/internal/core/domain"
	"github.com/docvault-ai/docvault/internal/core/ports"
)

// LoadWorkflows creates workflow rules from a YAML seed file on first
// boot. Rules whose name already exists are skipped, so the seed can
// stay mounted across restarts without duplicating rules.
func LoadWorkflows(ctx context.Context, path string, workflows ports.WorkflowRepository) error {
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("workflow_seed_missing", "path", path)
			return nil
		}
		return fmt.Errorf("read workflow seed %q: %w", path, err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse workflow seed %q: %w", path, err)
	}

	existing, err := workflows.List(ctx, nil)
	if err != nil {
		return fmt.Errorf("list workflows for seeding: %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	for _, rule := range existing {
		known[rule.Name] = struct{}{}
	}

	created := 0
	for _, entry := range file.Workflows {
		if _, ok := known[entry.Name]; ok {
			continue
		}
		rule, err := entry.toRule()
		if err != nil {
			return fmt.Errorf("workflow seed %q: %w", entry.Name, err)
		}
		if err := workflows.Create(ctx, rule); err != nil {
			return fmt.Errorf("create seeded workflow %q: %w", entry.Name, err)
		}
		created++
	}

	if created > 0 {
		slog.Info("workflow_seed_applied", "path", path, "created", created)
	}
	return nil
}

type seedFile struct {
	Workflows []seedRule `yaml:"workflows"`
}

type seedRule struct {
	Name       string          `yaml:"name"`
	Active     *bool           `yaml:"active"`
	Conditions []seedCondition `yaml:"conditions"`
	Actions    []seedAction    `yaml:"actions"`
}

type seedCondition struct {
	Field    string `yaml:"field"`
	Operator string `yaml:"operator"`
	Value    string `yaml:"value"`
}

type seedAction struct {
	Type   string            `yaml:"type"`
	Params map[string]string `yaml:"params"`
}

func (s seedRule) toRule() (*domain.WorkflowRule, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	active := true
	if s.Active != nil {
		active = *s.Active
	}

	conditions := make([]domain.Condition, 0, len(s.Conditions))
	for _, c := range s.Conditions {
		conditions = append(conditions, domain.Condition{
			Field:    domain.ConditionField(c.Field),
			Operator: domain.ConditionOperator(c.Operator),
			Value:    c.Value,
		})
	}

	actions := make([]domain.Action, 0, len(s.Actions))
	for _, a := range s.Actions {
		action, err := domain.ActionFromParams(a.Type, a.Params)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	now := time.Now().UTC()
	return &domain.WorkflowRule{
		ID:         uuid.NewString(),
		Name:       s.Name,
		Active:     active,
		Conditions: conditions,
		Actions:    actions,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

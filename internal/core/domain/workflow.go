package domain

import (
	"fmt"
	"strings"
	"time"
)

type ConditionField string

const (
	FieldClassification ConditionField = "classification"
	FieldMimeType       ConditionField = "mime_type"
	FieldFileSize       ConditionField = "file_size"
	FieldConfidence     ConditionField = "confidence"
	FieldAgeDays        ConditionField = "age_days"
	FieldTag            ConditionField = "tag"

	// Entity-backed fields use the "entity_" prefix followed by the
	// entity type, e.g. entity_money, entity_organization.
	entityFieldPrefix = "entity_"
)

// EntityField reports whether the field targets extracted entities and,
// if so, which entity type.
func (f ConditionField) EntityField() (EntityType, bool) {
	name := string(f)
	if !strings.HasPrefix(name, entityFieldPrefix) {
		return "", false
	}
	return EntityType(strings.ToUpper(strings.TrimPrefix(name, entityFieldPrefix))), true
}

type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpContains    ConditionOperator = "contains"
	OpGreaterThan ConditionOperator = "greater_than"
	OpLessThan    ConditionOperator = "less_than"
	OpIn          ConditionOperator = "in"
)

// Condition is one field/operator/value predicate. All conditions in a
// rule are AND-ed; there is no OR or grouping.
type Condition struct {
	Field    ConditionField    `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value"`
}

type ActionType string

const (
	ActionTag    ActionType = "tag"
	ActionNotify ActionType = "notify"
	ActionMove   ActionType = "move"
)

// Action is a tagged variant: Type selects which of the per-type fields
// are meaningful. Tag adds Tag to the document tag set, Notify hands
// Recipient/Message to the notification publisher, Move sets Folder.
type Action struct {
	Type      ActionType `json:"type"`
	Tag       string     `json:"tag,omitempty"`
	Recipient string     `json:"recipient,omitempty"`
	Message   string     `json:"message,omitempty"`
	Folder    string     `json:"folder,omitempty"`
}

// ActionFromParams converts the wire-level {type, params} shape into a
// typed Action, validating the parameters the type requires.
func ActionFromParams(actionType string, params map[string]string) (Action, error) {
	switch ActionType(actionType) {
	case ActionTag:
		tag := strings.TrimSpace(params["tag"])
		if tag == "" {
			return Action{}, WrapError(ErrInvalidInput, "parse action", fmt.Errorf("tag action requires a 'tag' param"))
		}
		return Action{Type: ActionTag, Tag: tag}, nil
	case ActionNotify:
		recipient := strings.TrimSpace(params["recipient"])
		if recipient == "" {
			recipient = strings.TrimSpace(params["email"])
		}
		if recipient == "" {
			return Action{}, WrapError(ErrInvalidInput, "parse action", fmt.Errorf("notify action requires a 'recipient' param"))
		}
		return Action{Type: ActionNotify, Recipient: recipient, Message: params["message"]}, nil
	case ActionMove:
		folder := strings.TrimSpace(params["folder"])
		if folder == "" {
			return Action{}, WrapError(ErrInvalidInput, "parse action", fmt.Errorf("move action requires a 'folder' param"))
		}
		return Action{Type: ActionMove, Folder: folder}, nil
	default:
		// Unknown action types are kept as-is: the dispatcher applies
		// them as warned no-ops instead of rejecting the whole rule.
		return Action{Type: ActionType(actionType)}, nil
	}
}

// WorkflowRule is a user-authored condition-action mapping evaluated
// against every document that reaches the processed state while active.
type WorkflowRule struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Conditions   []Condition `json:"conditions"`
	Actions      []Action    `json:"actions"`
	Active       bool        `json:"is_active"`
	TriggerCount int64       `json:"trigger_count"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type ActionStatus string

const (
	ActionApplied ActionStatus = "applied"
	ActionSkipped ActionStatus = "skipped"
	ActionFailed  ActionStatus = "failed"
)

// AppliedAction records what happened to one action of a fired rule.
type AppliedAction struct {
	Type   ActionType   `json:"type"`
	Status ActionStatus `json:"status"`
	Detail string       `json:"detail,omitempty"`
}

// RuleOutcome is the per-rule audit record of one evaluation pass.
// Diagnostics collects degraded conditions and unknown actions; a
// malformed condition never aborts the pass, it only shows up here.
type RuleOutcome struct {
	RuleID      string          `json:"rule_id"`
	RuleName    string          `json:"rule_name"`
	Fired       bool            `json:"fired"`
	Actions     []AppliedAction `json:"actions_applied,omitempty"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
}

// Notification is the fire-and-forget payload handed to the
// notification publisher when a notify action fires.
type Notification struct {
	Recipient  string `json:"recipient"`
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
	RuleID     string `json:"rule_id"`
}

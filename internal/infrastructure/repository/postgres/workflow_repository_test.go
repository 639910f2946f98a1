package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

func newWorkflowRepoWithMock(t *testing.T) (*WorkflowRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewWorkflowRepository(db), mock, func() { _ = db.Close() }
}

func workflowRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "name", "description", "conditions", "actions",
		"is_active", "trigger_count", "created_at", "updated_at",
	})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range ids {
		rows.AddRow(
			id, "rule "+id, "",
			[]byte(`[{"field":"classification","operator":"equals","value":"invoice"}]`),
			[]byte(`[{"type":"tag","tag":"invoice"}]`),
			true, int64(0), base.Add(time.Duration(i)*time.Minute), base,
		)
	}
	return rows
}

func TestWorkflowListActiveOnlyOrdersByCreation(t *testing.T) {
	repo, mock, done := newWorkflowRepoWithMock(t)
	defer done()

	mock.ExpectQuery("ORDER BY created_at ASC").
		WithArgs(true).
		WillReturnRows(workflowRows("rule-1", "rule-2"))

	active := true
	rules, err := repo.List(context.Background(), &active)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(rules) != 2 || rules[0].ID != "rule-1" {
		t.Fatalf("unexpected rules %+v", rules)
	}
	if len(rules[0].Conditions) != 1 || rules[0].Conditions[0].Field != domain.FieldClassification {
		t.Fatalf("conditions not decoded, got %+v", rules[0].Conditions)
	}
	if rules[0].Actions[0].Type != domain.ActionTag || rules[0].Actions[0].Tag != "invoice" {
		t.Fatalf("actions not decoded, got %+v", rules[0].Actions)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestWorkflowIncrementTriggerCount(t *testing.T) {
	repo, mock, done := newWorkflowRepoWithMock(t)
	defer done()

	mock.ExpectExec("trigger_count = trigger_count \\+ 1").
		WithArgs("rule-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.IncrementTriggerCount(context.Background(), "rule-1"); err != nil {
		t.Fatalf("IncrementTriggerCount() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestWorkflowIncrementTriggerCountUnknownRule(t *testing.T) {
	repo, mock, done := newWorkflowRepoWithMock(t)
	defer done()

	mock.ExpectExec("trigger_count = trigger_count \\+ 1").
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.IncrementTriggerCount(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrWorkflowNotFound) {
		t.Fatalf("expected ErrWorkflowNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestWorkflowUpdateReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newWorkflowRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE workflow_rules").
		WithArgs("missing", "name", "", sqlmock.AnyArg(), sqlmock.AnyArg(), true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.WorkflowRule{
		ID:     "missing",
		Name:   "name",
		Active: true,
	})
	if !domain.IsKind(err, domain.ErrWorkflowNotFound) {
		t.Fatalf("expected ErrWorkflowNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

func newDocumentRepoWithMock(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewDocumentRepository(db), mock, func() { _ = db.Close() }
}

func documentRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "filename", "mime_type", "file_size", "storage_path", "folder",
		"classification", "confidence", "extracted_text", "tags", "entities",
		"status", "error_message", "created_at", "updated_at",
	}).AddRow(
		"doc-1", "invoice.pdf", "application/pdf", int64(1024), "doc-1_invoice.pdf", "",
		"invoice", 0.9, "total $12,500", []byte(`["finance"]`), []byte(`[{"type":"MONEY","value":"$12,500"}]`),
		string(domain.StatusProcessed), "", now, now,
	)
}

func TestDocumentGetByIDScansJSONColumns(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	mock.ExpectQuery("FROM documents").
		WithArgs("doc-1").
		WillReturnRows(documentRows())

	doc, err := repo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(doc.Tags) != 1 || doc.Tags[0] != "finance" {
		t.Fatalf("tags not decoded, got %v", doc.Tags)
	}
	if len(doc.Entities) != 1 || doc.Entities[0].Type != domain.EntityMoney {
		t.Fatalf("entities not decoded, got %v", doc.Entities)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	mock.ExpectQuery("FROM documents").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClaimForProcessingWinsOnlyOnce(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE documents").
		WithArgs("doc-1", string(domain.StatusProcessing), sqlmock.AnyArg(), string(domain.StatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE documents").
		WithArgs("doc-1", string(domain.StatusProcessing), sqlmock.AnyArg(), string(domain.StatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := repo.ClaimForProcessing(context.Background(), "doc-1")
	if err != nil || !claimed {
		t.Fatalf("first claim should win, got claimed=%v err=%v", claimed, err)
	}

	claimed, err = repo.ClaimForProcessing(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("second claim error = %v", err)
	}
	if claimed {
		t.Fatalf("second claim must lose")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMergeTagsEmptyInputIsNoop(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	if err := repo.MergeTags(context.Background(), "doc-1", nil); err != nil {
		t.Fatalf("MergeTags(nil) error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statement expected: %v", err)
	}
}

func TestMergeTagsReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE documents").
		WithArgs("missing", []byte(`["x"]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MergeTags(context.Background(), "missing", []string{"x"})
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListAppliesFilterAndCount(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("invoice", string(domain.StatusProcessed)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM documents").
		WithArgs("invoice", string(domain.StatusProcessed), 20, 0).
		WillReturnRows(documentRows())

	docs, total, err := repo.List(context.Background(), domain.DocumentFilter{
		Classification: "invoice",
		Status:         domain.StatusProcessed,
	}, 20, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || len(docs) != 1 {
		t.Fatalf("got total=%d len=%d", total, len(docs))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSearchCandidatesAddsClassificationFilter(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	mock.ExpectQuery("ILIKE").
		WithArgs("%acme%", "invoice").
		WillReturnRows(documentRows())

	docs, err := repo.SearchCandidates(context.Background(), domain.SearchQuery{
		Text:           "acme",
		Classification: "invoice",
	})
	if err != nil {
		t.Fatalf("SearchCandidates() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(docs))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

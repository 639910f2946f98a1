package ports

import (
	"context"
	"io"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, actor, filename, mimeType string, size int64, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document
// processing. ProcessByID returns the workflow outcomes of the evaluation
// pass so callers can observe fired rules and applied actions; a lost
// claim returns no outcomes and no error.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) ([]domain.RuleOutcome, error)
}

// DocumentService is the inbound read/mutate model for document metadata.
type DocumentService interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, filter domain.DocumentFilter, page, pageSize int) ([]domain.Document, int, error)
	ReplaceTags(ctx context.Context, id string, tags []string) (*domain.Document, error)
	Delete(ctx context.Context, actor, id string) error
}

// DocumentSearcher is the inbound contract for scored document search.
type DocumentSearcher interface {
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchHit, int, error)
}

// WorkflowAdmin is the inbound contract for workflow rule management.
type WorkflowAdmin interface {
	Create(ctx context.Context, actor string, rule *domain.WorkflowRule) error
	GetByID(ctx context.Context, id string) (*domain.WorkflowRule, error)
	List(ctx context.Context, activeOnly *bool) ([]domain.WorkflowRule, error)
	Update(ctx context.Context, actor string, rule *domain.WorkflowRule) error
	Delete(ctx context.Context, actor, id string) error
	Toggle(ctx context.Context, actor, id string) (bool, error)
}

// StatsReader exposes aggregate document statistics.
type StatsReader interface {
	ClassificationStats(ctx context.Context) (*domain.ClassificationStats, error)
}

// AuditReader lists recorded audit entries.
type AuditReader interface {
	ListAudit(ctx context.Context, filter domain.AuditFilter, page, pageSize int) ([]domain.AuditEntry, int, error)
}

package ports

import (
	"context"
	"io"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, filter domain.DocumentFilter, limit, offset int) ([]domain.Document, int, error)
	Delete(ctx context.Context, id string) error

	// ClaimForProcessing flips pending-to-processing and reports whether
	// this caller won the claim. A false return with nil error means the
	// document is already claimed or terminal; redeliveries skip it.
	ClaimForProcessing(ctx context.Context, id string) (bool, error)
	SaveProcessingResult(ctx context.Context, id string, result domain.ProcessingResult) error
	MarkError(ctx context.Context, id string, message string) error

	// MergeTags adds tags to the document's tag set atomically and
	// idempotently; adding an existing tag is a no-op.
	MergeTags(ctx context.Context, id string, tags []string) error
	ReplaceTags(ctx context.Context, id string, tags []string) error
	SetFolder(ctx context.Context, id string, folder string) error

	// SearchCandidates returns documents matching the query text in
	// filename, extracted text or entity values; scoring happens in the
	// search use case.
	SearchCandidates(ctx context.Context, query domain.SearchQuery) ([]domain.Document, error)
	ClassificationStats(ctx context.Context) (*domain.ClassificationStats, error)
}

// WorkflowRepository persists workflow rules.
type WorkflowRepository interface {
	Create(ctx context.Context, rule *domain.WorkflowRule) error
	GetByID(ctx context.Context, id string) (*domain.WorkflowRule, error)
	// List returns rules in creation order, oldest first. The evaluator
	// relies on that order.
	List(ctx context.Context, activeOnly *bool) ([]domain.WorkflowRule, error)
	Update(ctx context.Context, rule *domain.WorkflowRule) error
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	// IncrementTriggerCount adds exactly one firing to the rule counter.
	IncrementTriggerCount(ctx context.Context, id string) error
}

// AuditRepository appends and lists audit entries.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, filter domain.AuditFilter, limit, offset int) ([]domain.AuditEntry, int, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// Notifier hands off fire-and-forget notifications from notify actions.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// TextExtractor extracts plain text from stored document bytes.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document, data io.Reader) (string, error)
}

// DocumentClassifier assigns a classification label with confidence.
type DocumentClassifier interface {
	Classify(ctx context.Context, text string) (label string, confidence float64, err error)
}

// EntityExtractor finds typed entities in extracted text.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) ([]domain.Entity, error)
}

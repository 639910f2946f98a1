package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docvault-ai/docvault/internal/core/domain"
	"github.com/docvault-ai/docvault/internal/core/ports"
)

type IngestDocumentUseCase struct {
	repo       ports.DocumentRepository
	storage    ports.ObjectStorage
	queue      ports.MessageQueue
	audit      ports.AuditRepository
	allowedExt map[string]struct{}
	maxBytes   int64
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	audit ports.AuditRepository,
	allowedExtensions []string,
	maxBytes int64,
) *IngestDocumentUseCase {
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimSpace(ext))] = struct{}{}
	}
	return &IngestDocumentUseCase{
		repo:       repo,
		storage:    storage,
		queue:      queue,
		audit:      audit,
		allowedExt: allowed,
		maxBytes:   maxBytes,
	}
}

func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	actor, filename, mimeType string,
	size int64,
	body io.Reader,
) (*domain.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("filename is required"))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := uc.allowedExt[ext]; !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("file type %q not allowed", ext))
	}
	if uc.maxBytes > 0 && size > uc.maxBytes {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("file exceeds %d byte limit", uc.maxBytes))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		FileSize:    size,
		StoragePath: storageKey,
		Status:      domain.StatusPending,
		Tags:        []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	uc.logAudit(ctx, actor, doc)
	return doc, nil
}

func (uc *IngestDocumentUseCase) logAudit(ctx context.Context, actor string, doc *domain.Document) {
	entry := &domain.AuditEntry{
		ID:           uuid.NewString(),
		Actor:        actor,
		Action:       domain.AuditDocumentUploaded,
		ResourceType: "document",
		ResourceID:   doc.ID,
		Details:      map[string]string{"filename": doc.Filename},
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		slog.Warn("audit_append_failed", "action", string(domain.AuditDocumentUploaded), "error", err)
	}
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}

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

// DocumentServiceUseCase covers document reads and the few direct
// mutations the API allows: tag replacement and deletion.
type DocumentServiceUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	audit   ports.AuditRepository
}

func NewDocumentServiceUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	audit ports.AuditRepository,
) *DocumentServiceUseCase {
	return &DocumentServiceUseCase{repo: repo, storage: storage, audit: audit}
}

func (uc *DocumentServiceUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *DocumentServiceUseCase) List(ctx context.Context, filter domain.DocumentFilter, page, pageSize int) ([]domain.Document, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return uc.repo.List(ctx, filter, pageSize, (page-1)*pageSize)
}

// ReplaceTags overwrites the document tag set, deduplicating the input
// while preserving first-seen order.
func (uc *DocumentServiceUseCase) ReplaceTags(ctx context.Context, id string, tags []string) (*domain.Document, error) {
	seen := mapset.NewSetWithSize[string](len(tags))
	deduped := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" || seen.Contains(tag) {
			continue
		}
		seen.Add(tag)
		deduped = append(deduped, tag)
	}

	if err := uc.repo.ReplaceTags(ctx, id, deduped); err != nil {
		return nil, fmt.Errorf("replace tags: %w", err)
	}
	return uc.repo.GetByID(ctx, id)
}

func (uc *DocumentServiceUseCase) Delete(ctx context.Context, actor, id string) error {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := uc.storage.Delete(ctx, doc.StoragePath); err != nil {
		// Metadata is gone; an orphaned blob is a cleanup concern, not a
		// failed delete.
		slog.Warn("storage_delete_failed", "document_id", id, "storage_path", doc.StoragePath, "error", err)
	}

	entry := &domain.AuditEntry{
		ID:           uuid.NewString(),
		Actor:        actor,
		Action:       domain.AuditDocumentDeleted,
		ResourceType: "document",
		ResourceID:   id,
		Details:      map[string]string{"filename": doc.Filename},
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		slog.Warn("audit_append_failed", "action", string(domain.AuditDocumentDeleted), "error", err)
	}
	return nil
}

// AdminUseCase exposes aggregate statistics and the audit log.
type AdminUseCase struct {
	documents ports.DocumentRepository
	audit     ports.AuditRepository
}

func NewAdminUseCase(documents ports.DocumentRepository, audit ports.AuditRepository) *AdminUseCase {
	return &AdminUseCase{documents: documents, audit: audit}
}

func (uc *AdminUseCase) ClassificationStats(ctx context.Context) (*domain.ClassificationStats, error) {
	return uc.documents.ClassificationStats(ctx)
}

func (uc *AdminUseCase) ListAudit(ctx context.Context, filter domain.AuditFilter, page, pageSize int) ([]domain.AuditEntry, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	return uc.audit.List(ctx, filter, pageSize, (page-1)*pageSize)
}

package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

func TestReplaceTagsDeduplicatesPreservingOrder(t *testing.T) {
	doc := pendingDocument()
	repo := newFakeDocumentRepo(doc)
	uc := NewDocumentServiceUseCase(repo, newFakeStorage(), &fakeAudit{})

	got, err := uc.ReplaceTags(context.Background(), doc.ID, []string{"urgent", "finance", "urgent", "", "finance", "q1"})
	if err != nil {
		t.Fatalf("replace tags: %v", err)
	}

	want := []string{"urgent", "finance", "q1"}
	if !reflect.DeepEqual(got.Tags, want) {
		t.Fatalf("tags = %v, want %v", got.Tags, want)
	}
}

func TestDeleteRemovesMetadataAndBlob(t *testing.T) {
	doc := pendingDocument()
	repo := newFakeDocumentRepo(doc)
	storage := newFakeStorage()
	storage.files[doc.StoragePath] = []byte("raw")
	audit := &fakeAudit{}
	uc := NewDocumentServiceUseCase(repo, storage, audit)

	if err := uc.Delete(context.Background(), "carol", doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(repo.deleted) != 1 || repo.deleted[0] != doc.ID {
		t.Fatalf("metadata not deleted, got %v", repo.deleted)
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != doc.StoragePath {
		t.Fatalf("blob not deleted, got %v", storage.deleted)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != domain.AuditDocumentDeleted {
		t.Fatalf("expected DOCUMENT_DELETED audit entry, got %v", audit.actions())
	}
}

func TestDeleteUnknownDocument(t *testing.T) {
	uc := NewDocumentServiceUseCase(newFakeDocumentRepo(), newFakeStorage(), &fakeAudit{})

	err := uc.Delete(context.Background(), "carol", "missing")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type failingDeleteStorage struct {
	*fakeStorage
}

func (f *failingDeleteStorage) Delete(context.Context, string) error {
	return errors.New("disk detached")
}

func TestDeleteSurvivesStorageFailure(t *testing.T) {
	doc := pendingDocument()
	repo := newFakeDocumentRepo(doc)
	uc := NewDocumentServiceUseCase(repo, &failingDeleteStorage{newFakeStorage()}, &fakeAudit{})

	if err := uc.Delete(context.Background(), "carol", doc.ID); err != nil {
		t.Fatalf("storage failure must not fail the delete, got %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("metadata should still be deleted")
	}
}

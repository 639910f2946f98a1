package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

type fakeWorkflowRepo struct {
	rules        []domain.WorkflowRule
	increments   map[string]int
	listErr      error
	incrementErr error
	created      []domain.WorkflowRule
	updated      []domain.WorkflowRule
	deleted      []string
	setActive    map[string]bool
}

func newFakeWorkflowRepo(rules ...domain.WorkflowRule) *fakeWorkflowRepo {
	return &fakeWorkflowRepo{
		rules:      rules,
		increments: make(map[string]int),
		setActive:  make(map[string]bool),
	}
}

func (f *fakeWorkflowRepo) Create(_ context.Context, rule *domain.WorkflowRule) error {
	f.created = append(f.created, *rule)
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeWorkflowRepo) GetByID(_ context.Context, id string) (*domain.WorkflowRule, error) {
	for i := range f.rules {
		if f.rules[i].ID == id {
			rule := f.rules[i]
			return &rule, nil
		}
	}
	return nil, domain.WrapError(domain.ErrWorkflowNotFound, "get workflow", fmt.Errorf("id %s", id))
}

func (f *fakeWorkflowRepo) List(_ context.Context, activeOnly *bool) ([]domain.WorkflowRule, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.WorkflowRule, 0, len(f.rules))
	for _, rule := range f.rules {
		if activeOnly != nil && *activeOnly && !rule.Active {
			continue
		}
		out = append(out, rule)
	}
	return out, nil
}

func (f *fakeWorkflowRepo) Update(_ context.Context, rule *domain.WorkflowRule) error {
	f.updated = append(f.updated, *rule)
	for i := range f.rules {
		if f.rules[i].ID == rule.ID {
			f.rules[i] = *rule
			return nil
		}
	}
	return domain.WrapError(domain.ErrWorkflowNotFound, "update workflow", fmt.Errorf("id %s", rule.ID))
}

func (f *fakeWorkflowRepo) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeWorkflowRepo) SetActive(_ context.Context, id string, active bool) error {
	f.setActive[id] = active
	for i := range f.rules {
		if f.rules[i].ID == id {
			f.rules[i].Active = active
		}
	}
	return nil
}

func (f *fakeWorkflowRepo) IncrementTriggerCount(_ context.Context, id string) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	f.increments[id]++
	return nil
}

type fakeDocumentRepo struct {
	docs map[string]*domain.Document

	mergedTags   map[string][]string
	folders      map[string]string
	claimRefused bool
	claims       int
	savedResults map[string]domain.ProcessingResult
	markedErrors map[string]string
	deleted      []string
	candidates   []domain.Document
	mergeErr     error
	folderErr    error
}

func newFakeDocumentRepo(docs ...*domain.Document) *fakeDocumentRepo {
	f := &fakeDocumentRepo{
		docs:         make(map[string]*domain.Document),
		mergedTags:   make(map[string][]string),
		folders:      make(map[string]string),
		savedResults: make(map[string]domain.ProcessingResult),
		markedErrors: make(map[string]string),
	}
	for _, doc := range docs {
		f.docs[doc.ID] = doc
	}
	return f
}

func (f *fakeDocumentRepo) Create(_ context.Context, doc *domain.Document) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocumentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentRepo) List(_ context.Context, _ domain.DocumentFilter, limit, offset int) ([]domain.Document, int, error) {
	out := make([]domain.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		out = append(out, *doc)
	}
	return out, len(out), nil
}

func (f *fakeDocumentRepo) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.docs, id)
	return nil
}

func (f *fakeDocumentRepo) ClaimForProcessing(_ context.Context, id string) (bool, error) {
	f.claims++
	if f.claimRefused {
		return false, nil
	}
	doc, ok := f.docs[id]
	if !ok || doc.Status != domain.StatusPending {
		return false, nil
	}
	doc.Status = domain.StatusProcessing
	return true, nil
}

func (f *fakeDocumentRepo) SaveProcessingResult(_ context.Context, id string, result domain.ProcessingResult) error {
	f.savedResults[id] = result
	if doc, ok := f.docs[id]; ok {
		doc.Status = domain.StatusProcessed
	}
	return nil
}

func (f *fakeDocumentRepo) MarkError(_ context.Context, id, message string) error {
	f.markedErrors[id] = message
	if doc, ok := f.docs[id]; ok {
		doc.Status = domain.StatusError
	}
	return nil
}

func (f *fakeDocumentRepo) MergeTags(_ context.Context, id string, tags []string) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	f.mergedTags[id] = append(f.mergedTags[id], tags...)
	return nil
}

func (f *fakeDocumentRepo) ReplaceTags(_ context.Context, id string, tags []string) error {
	if doc, ok := f.docs[id]; ok {
		doc.Tags = tags
	}
	return nil
}

func (f *fakeDocumentRepo) SetFolder(_ context.Context, id, folder string) error {
	if f.folderErr != nil {
		return f.folderErr
	}
	f.folders[id] = folder
	return nil
}

func (f *fakeDocumentRepo) SearchCandidates(_ context.Context, _ domain.SearchQuery) ([]domain.Document, error) {
	return f.candidates, nil
}

func (f *fakeDocumentRepo) ClassificationStats(_ context.Context) (*domain.ClassificationStats, error) {
	return &domain.ClassificationStats{
		ByClassification: map[string]int{},
		ByStatus:         map[string]int{},
	}, nil
}

type fakeNotifier struct {
	sent []domain.Notification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, n domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

type fakeAudit struct {
	entries []domain.AuditEntry
}

func (f *fakeAudit) Append(_ context.Context, entry *domain.AuditEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAudit) List(_ context.Context, _ domain.AuditFilter, _, _ int) ([]domain.AuditEntry, int, error) {
	return f.entries, len(f.entries), nil
}

func (f *fakeAudit) actions() []domain.AuditAction {
	out := make([]domain.AuditAction, 0, len(f.entries))
	for _, entry := range f.entries {
		out = append(out, entry.Action)
	}
	return out
}

type fakeStorage struct {
	files   map[string][]byte
	saveErr error
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (f *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.files[key] = raw
	return nil
}

func (f *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.files[key]
	if !ok {
		return nil, fmt.Errorf("no stored object %q", key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.files, key)
	return nil
}

type fakeQueue struct {
	published []string
	err       error
}

func (f *fakeQueue) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *fakeQueue) SubscribeDocumentIngested(_ context.Context, _ func(context.Context, string) error) error {
	return nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ *domain.Document, _ io.Reader) (string, error) {
	return f.text, f.err
}

type fakeClassifier struct {
	label      string
	confidence float64
	err        error
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) (string, float64, error) {
	return f.label, f.confidence, f.err
}

type fakeEntityExtractor struct {
	entities []domain.Entity
	err      error
}

func (f *fakeEntityExtractor) Extract(_ context.Context, _ string) ([]domain.Entity, error) {
	return f.entities, f.err
}

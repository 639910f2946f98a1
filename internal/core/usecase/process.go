package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/docvault-ai/docvault/internal/core/domain"
	"github.com/docvault-ai/docvault/internal/core/ports"
)

// ProcessDocumentUseCase runs the ML pipeline for one ingested document:
// extract text, classify, extract entities, persist the result, then hand
// the processed snapshot to the workflow evaluator.
//
// Processing is claimed with a conditional pending-to-processing transition,
// so a redelivered queue message for an already-claimed or terminal
// document is a no-op: workflow evaluation runs exactly once per document.
type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	storage    ports.ObjectStorage
	extractor  ports.TextExtractor
	classifier ports.DocumentClassifier
	entities   ports.EntityExtractor
	evaluator  *EvaluateWorkflowsUseCase
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	classifier ports.DocumentClassifier,
	entities ports.EntityExtractor,
	evaluator *EvaluateWorkflowsUseCase,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:       repo,
		storage:    storage,
		extractor:  extractor,
		classifier: classifier,
		entities:   entities,
		evaluator:  evaluator,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) ([]domain.RuleOutcome, error) {
	claimed, err := uc.repo.ClaimForProcessing(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("claim document for processing: %w", err)
	}
	if !claimed {
		slog.Info("document_already_claimed", "document_id", documentID)
		return nil, nil
	}

	doc, result, err := uc.runPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.repo.MarkError(ctx, documentID, err.Error()); failErr != nil {
			return nil, fmt.Errorf("%w; mark error status: %v", err, failErr)
		}
		return nil, err
	}

	if err := uc.repo.SaveProcessingResult(ctx, documentID, *result); err != nil {
		if failErr := uc.repo.MarkError(ctx, documentID, err.Error()); failErr != nil {
			return nil, fmt.Errorf("%w; mark error status: %v", err, failErr)
		}
		return nil, fmt.Errorf("save processing result: %w", err)
	}

	uc.applyResult(doc, result)
	doc.Status = domain.StatusProcessed

	outcomes, err := uc.evaluator.EvaluateDocument(ctx, doc)
	if err != nil {
		// The document stays processed: evaluation failures must not
		// push a terminal document back into an error state.
		return nil, fmt.Errorf("evaluate workflows: %w", err)
	}

	fired := 0
	for _, outcome := range outcomes {
		if outcome.Fired {
			fired++
		}
	}
	slog.Info("document_processed",
		"document_id", documentID,
		"classification", result.Classification,
		"entities", len(result.Entities),
		"rules_evaluated", len(outcomes),
		"rules_fired", fired,
	)
	return outcomes, nil
}

func (uc *ProcessDocumentUseCase) runPipeline(ctx context.Context, documentID string) (*domain.Document, *domain.ProcessingResult, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch document by id: %w", err)
	}

	text, err := uc.extractText(ctx, doc)
	if err != nil {
		return nil, nil, err
	}

	label, confidence, err := uc.classifier.Classify(ctx, text)
	if err != nil {
		return nil, nil, fmt.Errorf("classify document: %w", err)
	}

	entities, err := uc.entities.Extract(ctx, text)
	if err != nil {
		return nil, nil, fmt.Errorf("extract entities: %w", err)
	}

	return doc, &domain.ProcessingResult{
		Text:           text,
		Classification: label,
		Confidence:     confidence,
		Entities:       entities,
	}, nil
}

func (uc *ProcessDocumentUseCase) extractText(ctx context.Context, doc *domain.Document) (string, error) {
	data, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open stored document: %w", err)
	}
	defer data.Close()

	text, err := uc.extractor.Extract(ctx, doc, data)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}
	return text, nil
}

func (uc *ProcessDocumentUseCase) applyResult(doc *domain.Document, result *domain.ProcessingResult) {
	doc.Classification = result.Classification
	doc.Confidence = result.Confidence
	doc.ExtractedText = result.Text
	doc.Entities = result.Entities
}

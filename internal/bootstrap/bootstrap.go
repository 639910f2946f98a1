package bootstrap

import (
	"context"
	"fmt"

	"github.com/docvault-ai/docvault/internal/config"
	"github.com/docvault-ai/docvault/internal/core/ports"
	"github.com/docvault-ai/docvault/internal/core/usecase"
	"github.com/docvault-ai/docvault/internal/infrastructure/extractor"
	"github.com/docvault-ai/docvault/internal/infrastructure/ml/ner"
	"github.com/docvault-ai/docvault/internal/infrastructure/ml/zeroshot"
	"github.com/docvault-ai/docvault/internal/infrastructure/notify"
	natsqueue "github.com/docvault-ai/docvault/internal/infrastructure/queue/nats"
	"github.com/docvault-ai/docvault/internal/infrastructure/repository/postgres"
	"github.com/docvault-ai/docvault/internal/infrastructure/resilience"
	"github.com/docvault-ai/docvault/internal/infrastructure/seed"
	"github.com/docvault-ai/docvault/internal/infrastructure/storage/localfs"
)

// App wires repositories, adapters and use cases for both binaries.
type App struct {
	Config config.Config

	Queue      ports.MessageQueue
	Resilience *resilience.Executor

	IngestUC    ports.DocumentIngestor
	ProcessUC   ports.DocumentProcessor
	DocumentsUC ports.DocumentService
	SearchUC    ports.DocumentSearcher
	WorkflowsUC ports.WorkflowAdmin
	StatsUC     ports.StatsReader
	AuditUC     ports.AuditReader

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	documents := postgres.NewDocumentRepository(db)
	workflows := postgres.NewWorkflowRepository(db)
	audit := postgres.NewAuditRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	notifier := notify.NewNATSNotifier(queue.Conn(), cfg.NATSNotifySubject)

	classifier := zeroshot.New(cfg.ClassifierURL, cfg.ClassifierModel, zeroshot.Options{
		ResilienceExecutor: executor,
	})
	entities := ner.New()
	extract := extractor.NewComposite(extractor.NewOCR(cfg.OCRLanguages))

	evaluateUC := usecase.NewEvaluateWorkflowsUseCase(workflows, documents, notifier, audit)
	ingestUC := usecase.NewIngestDocumentUseCase(documents, storage, queue, audit, cfg.AllowedExtensions, cfg.MaxUploadBytes)
	processUC := usecase.NewProcessDocumentUseCase(documents, storage, extract, classifier, entities, evaluateUC)
	documentsUC := usecase.NewDocumentServiceUseCase(documents, storage, audit)
	searchUC := usecase.NewSearchUseCase(documents)
	workflowsUC := usecase.NewWorkflowAdminUseCase(workflows, audit)
	adminUC := usecase.NewAdminUseCase(documents, audit)

	if err := seed.LoadWorkflows(ctx, cfg.WorkflowSeedPath, workflows); err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("seed workflows: %w", err)
	}

	return &App{
		Config:     cfg,
		Queue:      queue,
		Resilience: executor,

		IngestUC:    ingestUC,
		ProcessUC:   processUC,
		DocumentsUC: documentsUC,
		SearchUC:    searchUC,
		WorkflowsUC: workflowsUC,
		StatsUC:     adminUC,
		AuditUC:     adminUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

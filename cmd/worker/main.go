package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docvault-ai/docvault/internal/bootstrap"
	"github.com/docvault-ai/docvault/internal/config"
	"github.com/docvault-ai/docvault/internal/observability/logging"
	"github.com/docvault-ai/docvault/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorker()
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		workerMetrics.ProcessingInFlight.Inc()
		start := time.Now()
		outcomes, err := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.ProcessingInFlight.Dec()
		workerMetrics.ProcessDuration.Observe(time.Since(start).Seconds())

		for _, outcome := range outcomes {
			if !outcome.Fired {
				continue
			}
			workerMetrics.RulesFiredTotal.Inc()
			for _, action := range outcome.Actions {
				workerMetrics.ActionsTotal.WithLabelValues(string(action.Type), string(action.Status)).Inc()
			}
		}

		if err != nil {
			workerMetrics.ProcessedTotal.WithLabelValues("error").Inc()
			return err
		}
		workerMetrics.ProcessedTotal.WithLabelValues("processed").Inc()
		return nil
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}

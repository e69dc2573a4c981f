package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/panchayat-sahayika/internal/bootstrap"
	"github.com/kirillkom/panchayat-sahayika/internal/config"
	"github.com/kirillkom/panchayat-sahayika/internal/observability/logging"
	"github.com/kirillkom/panchayat-sahayika/internal/observability/metrics"
)

const (
	service        = "worker"
	processTimeout = 5 * time.Minute
	reindexTimeout = 30 * time.Minute
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(service)
	app, err := bootstrap.New(ctx, cfg,
		bootstrap.WithLogger(logger),
		bootstrap.WithMetrics(workerMetrics.PipelineMetrics),
		bootstrap.WithQueue(),
	)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	app.RebuildOnStartup(ctx)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("worker_metrics_listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		logger.Info("worker_subscribed", "subject", cfg.NATSIngestSubject)
		return app.Queue.SubscribeDocumentIngested(gctx, func(handlerCtx context.Context, documentID string) error {
			processCtx, cancel := context.WithTimeout(handlerCtx, processTimeout)
			defer cancel()

			started := time.Now()
			if doc, err := app.DocRepo.GetByID(processCtx, documentID); err == nil {
				workerMetrics.ObserveQueueLag(service, started.Sub(doc.CreatedAt))
			}
			workerMetrics.StartDocument()
			err := app.ProcessUC.ProcessByID(processCtx, documentID)
			workerMetrics.FinishDocument(service, time.Since(started), err)
			if err == nil {
				logger.Info("document_processed", "document_id", documentID, "duration_ms", time.Since(started).Milliseconds())
			}
			return err
		})
	})
	g.Go(func() error {
		logger.Info("worker_subscribed", "subject", cfg.NATSReindexSubject)
		return app.Queue.SubscribeSchemesReindex(gctx, func(handlerCtx context.Context) error {
			rebuildCtx, cancel := context.WithTimeout(handlerCtx, reindexTimeout)
			defer cancel()

			workerMetrics.StartReindex()
			report, err := app.IndexUC.RebuildFromSource(rebuildCtx)
			workerMetrics.FinishReindex(service, err)
			if err == nil {
				logger.Info("schemes_reindexed", "collection", report.Collection, "points", report.Points)
			}
			return err
		})
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker_failed", "error", err)
		os.Exit(1)
	}
}

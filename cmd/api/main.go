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

	httpadapter "github.com/kirillkom/panchayat-sahayika/internal/adapters/http"
	"github.com/kirillkom/panchayat-sahayika/internal/bootstrap"
	"github.com/kirillkom/panchayat-sahayika/internal/config"
	"github.com/kirillkom/panchayat-sahayika/internal/observability/logging"
	"github.com/kirillkom/panchayat-sahayika/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	slog.SetDefault(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	app, err := bootstrap.New(ctx, cfg,
		bootstrap.WithLogger(logger),
		bootstrap.WithMetrics(httpMetrics.PipelineMetrics),
		bootstrap.WithQueue(),
	)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	app.RebuildOnStartup(ctx)

	svc := httpadapter.Services{
		Search:  app.SearchUC,
		Diverse: app.Diverse,
		Ask:     app.AskUC,
		Indexer: app.IndexUC,
		Ingest:  app.IngestUC,
		Docs:    app.DocRepo,
	}
	if app.Queue != nil {
		svc.Reindex = app.Queue
	}
	router, err := httpadapter.NewRouter(cfg, svc,
		httpadapter.WithMetrics(httpMetrics),
		httpadapter.WithHealth(httpadapter.Health{
			SchemesAlias:   cfg.SchemesAlias,
			DocsCollection: cfg.DocsCollection,
			EmbedModel:     app.EmbedModel,
		}),
	)
	if err != nil {
		logger.Error("router_init_failed", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/kirillkom/panchayat-sahayika/internal/adapters/mcp"
	"github.com/kirillkom/panchayat-sahayika/internal/bootstrap"
	"github.com/kirillkom/panchayat-sahayika/internal/config"
	"github.com/kirillkom/panchayat-sahayika/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	// Stdout is the MCP transport.
	logger := logging.NewStderrLogger("mcp", cfg.LogLevel)
	slog.SetDefault(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.WithLogger(logger))
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	app.RebuildOnStartup(ctx)

	srv := mcpadapter.NewServer(app.SearchUC, app.AskUC, logger)
	logger.Info("mcp_serving_stdio", "server", mcpadapter.ServerName)
	if err := srv.Serve(ctx); err != nil {
		logger.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}

// Command reindex rebuilds the scheme index once and exits. With -import it
// first replaces the Postgres catalogue with the rows of a JSON or XLSX file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/kirillkom/panchayat-sahayika/internal/bootstrap"
	"github.com/kirillkom/panchayat-sahayika/internal/config"
	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/catalog"
	"github.com/kirillkom/panchayat-sahayika/internal/observability/logging"
)

func main() {
	importPath := flag.String("import", "", "JSON or XLSX catalogue to load into Postgres before rebuilding")
	sheet := flag.String("sheet", "", "sheet name for -import of an XLSX workbook (default: first sheet)")
	flag.Parse()

	cfg := config.Load()
	logger := logging.NewJSONLogger("reindex", cfg.LogLevel)
	slog.SetDefault(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.WithLogger(logger))
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	var report domain.RebuildReport
	if *importPath != "" {
		var schemes []domain.Scheme
		schemes, err = loadCatalogue(ctx, *importPath, *sheet)
		if err != nil {
			logger.Error("catalogue_load_failed", "path", *importPath, "error", err)
			os.Exit(1)
		}
		if err := app.Schemes.ReplaceAll(ctx, schemes); err != nil {
			logger.Error("catalogue_import_failed", "error", err)
			os.Exit(1)
		}
		logger.Info("catalogue_imported", "path", *importPath, "schemes", len(schemes))
		report, err = app.IndexUC.Rebuild(ctx, schemes)
	} else {
		report, err = app.IndexUC.RebuildFromSource(ctx)
	}
	if err != nil {
		logger.Error("rebuild_failed", "error", err)
		os.Exit(1)
	}
	logger.Info("rebuild_complete",
		"alias", report.Alias,
		"collection", report.Collection,
		"points", report.Points,
		"dimension", report.Dimension,
	)
}

func loadCatalogue(ctx context.Context, path, sheet string) ([]domain.Scheme, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return catalog.NewJSONFile(path).LoadSchemes(ctx)
	case ".xlsx":
		return catalog.NewXLSXFile(path, sheet).LoadSchemes(ctx)
	default:
		return nil, fmt.Errorf("unsupported catalogue format %q", filepath.Ext(path))
	}
}

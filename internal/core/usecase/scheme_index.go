package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/core/ports"
)

const dropCollectionTimeout = 30 * time.Second

// RebuildObserver receives the outcome of every rebuild attempt.
type RebuildObserver interface {
	ObserveSchemeRebuild(status string, points int, duration time.Duration)
}

type SchemeIndexOptions struct {
	Alias            string
	EmbedBatchSize   int
	EmbedConcurrency int
	Observer         RebuildObserver
}

// SchemeIndexUseCase owns the scheme index. A rebuild writes a new physical
// collection and repoints the search alias only after the upsert succeeded,
// so searches never observe a partial index.
type SchemeIndexUseCase struct {
	embedder ports.Embedder
	index    ports.SchemeIndex
	source   ports.SchemeSource
	opts     SchemeIndexOptions

	running atomic.Bool
	now     func() time.Time
}

func NewSchemeIndexUseCase(
	embedder ports.Embedder,
	index ports.SchemeIndex,
	source ports.SchemeSource,
	opts SchemeIndexOptions,
) *SchemeIndexUseCase {
	if strings.TrimSpace(opts.Alias) == "" {
		opts.Alias = "schemes"
	}
	return &SchemeIndexUseCase{
		embedder: embedder,
		index:    index,
		source:   source,
		opts:     opts,
		now:      time.Now,
	}
}

func (uc *SchemeIndexUseCase) RebuildFromSource(ctx context.Context) (domain.RebuildReport, error) {
	if uc.source == nil {
		return domain.RebuildReport{}, domain.WrapError(domain.ErrInvalidInput, "rebuild from source", errors.New("scheme source is not configured"))
	}
	schemes, err := uc.source.LoadSchemes(ctx)
	if err != nil {
		return domain.RebuildReport{}, fmt.Errorf("load schemes: %w", err)
	}
	return uc.Rebuild(ctx, schemes)
}

func (uc *SchemeIndexUseCase) Rebuild(ctx context.Context, schemes []domain.Scheme) (domain.RebuildReport, error) {
	if !uc.running.CompareAndSwap(false, true) {
		return domain.RebuildReport{}, fmt.Errorf("rebuild scheme index: %w", domain.ErrRebuildInProgress)
	}
	defer uc.running.Store(false)

	start := time.Now()
	report, err := uc.rebuild(ctx, schemes)
	duration := time.Since(start)

	if err != nil {
		uc.observe("error", 0, duration)
		slog.Error("scheme_index_rebuild_failed",
			"alias", uc.opts.Alias,
			"items", len(schemes),
			"duration_ms", float64(duration.Microseconds())/1000.0,
			"error", err,
		)
		return domain.RebuildReport{}, err
	}

	uc.observe("success", report.Points, duration)
	slog.Info("scheme_index_rebuilt",
		"alias", report.Alias,
		"collection", report.Collection,
		"points", report.Points,
		"dimension", report.Dimension,
		"duration_ms", float64(duration.Microseconds())/1000.0,
	)
	return report, nil
}

func (uc *SchemeIndexUseCase) rebuild(ctx context.Context, schemes []domain.Scheme) (domain.RebuildReport, error) {
	prepared, texts := prepareSchemes(schemes)

	var (
		vectors   [][]float32
		dimension int
		err       error
	)
	if len(prepared) == 0 {
		// An emptied catalogue still replaces the index; the collection
		// dimension comes from a single query embedding.
		dimension, err = uc.probeDimension(ctx)
	} else {
		vectors, err = embedInBatches(ctx, uc.embedder, texts, uc.opts.EmbedBatchSize, uc.opts.EmbedConcurrency)
		if err != nil {
			return domain.RebuildReport{}, fmt.Errorf("embed schemes: %w", err)
		}
		dimension, err = vectorDimension(vectors)
	}
	if err != nil {
		return domain.RebuildReport{}, err
	}

	collection := fmt.Sprintf("%s_%d", uc.opts.Alias, uc.now().UnixNano())
	if err := uc.index.CreateCollection(ctx, collection, dimension); err != nil {
		return domain.RebuildReport{}, fmt.Errorf("create collection %s: %w", collection, err)
	}

	points := make([]domain.SchemePoint, len(prepared))
	for i := range prepared {
		points[i] = domain.SchemePoint{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Scheme: prepared[i],
		}
	}

	if err := uc.index.UpsertSchemes(ctx, collection, points); err != nil {
		uc.dropQuietly(ctx, collection)
		return domain.RebuildReport{}, fmt.Errorf("upsert schemes: %w", err)
	}

	previous, err := uc.index.SwapAlias(ctx, uc.opts.Alias, collection)
	if err != nil {
		uc.dropQuietly(ctx, collection)
		return domain.RebuildReport{}, fmt.Errorf("swap alias %s: %w", uc.opts.Alias, err)
	}
	if previous != "" && previous != collection {
		uc.dropQuietly(ctx, previous)
	}

	return domain.RebuildReport{
		Collection: collection,
		Alias:      uc.opts.Alias,
		Points:     len(points),
		Dimension:  dimension,
	}, nil
}

// prepareSchemes applies defaults and computes the embedding text per scheme.
// A scheme with no text at all still gets a point, keyed by its natural key.
func prepareSchemes(schemes []domain.Scheme) ([]domain.Scheme, []string) {
	prepared := make([]domain.Scheme, len(schemes))
	texts := make([]string, len(schemes))
	for i, s := range schemes {
		n := s.Normalized()
		n.SearchBlob = n.BuildSearchBlob()
		prepared[i] = n

		text := n.SearchBlob
		if text == "" {
			text = n.NaturalKey()
		}
		if text == "" {
			text = "-"
		}
		texts[i] = text
	}
	return prepared, texts
}

func (uc *SchemeIndexUseCase) probeDimension(ctx context.Context) (int, error) {
	vector, err := uc.embedder.EmbedQuery(ctx, uc.opts.Alias)
	if err != nil {
		return 0, fmt.Errorf("embed dimension probe: %w", err)
	}
	return vectorDimension([][]float32{vector})
}

func vectorDimension(vectors [][]float32) (int, error) {
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "embed schemes", errors.New("empty embedding result"))
	}
	dimension := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dimension {
			return 0, domain.WrapError(
				domain.ErrInvalidInput,
				"embed schemes",
				fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), dimension),
			)
		}
	}
	return dimension, nil
}

func (uc *SchemeIndexUseCase) dropQuietly(ctx context.Context, collection string) {
	dropCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dropCollectionTimeout)
	defer cancel()
	if err := uc.index.DropCollection(dropCtx, collection); err != nil {
		slog.Warn("scheme_index_drop_failed", "collection", collection, "error", err)
	}
}

func (uc *SchemeIndexUseCase) observe(status string, points int, duration time.Duration) {
	if uc.opts.Observer == nil {
		return
	}
	uc.opts.Observer.ObserveSchemeRebuild(status, points, duration)
}

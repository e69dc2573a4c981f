package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/core/ports"
)

const (
	defaultEmbedBatchSize   = 32
	defaultEmbedConcurrency = 4
)

// embedInBatches embeds texts in fixed-size batches with bounded concurrency.
// The result is index-aligned with texts.
func embedInBatches(
	ctx context.Context,
	embedder ports.Embedder,
	texts []string,
	batchSize, concurrency int,
) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = defaultEmbedBatchSize
	}
	if concurrency <= 0 {
		concurrency = defaultEmbedConcurrency
	}

	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		g.Go(func() error {
			vectors, err := embedder.Embed(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
			}
			if len(vectors) != end-start {
				return domain.WrapError(
					domain.ErrInvalidInput,
					"embed batch",
					fmt.Errorf("vectors/texts mismatch: %d/%d", len(vectors), end-start),
				)
			}
			copy(out[start:end], vectors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

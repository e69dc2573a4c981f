package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	index     ports.DocumentIndex
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	index ports.DocumentIndex,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	pages, chunks, err := uc.processPipeline(ctx, documentID)
	if err == nil {
		err = uc.persistStats(ctx, documentID, pages, chunks)
	}
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}

	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (int, int, error) {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return 0, 0, err
	}

	pages, err := uc.extractPages(ctx, doc)
	if err != nil {
		return 0, 0, err
	}

	chunks, err := uc.chunk(pages)
	if err != nil {
		return 0, 0, err
	}

	vectors, err := uc.embed(ctx, chunks)
	if err != nil {
		return 0, 0, err
	}

	if err := uc.index.IndexChunks(ctx, doc, chunks, vectors); err != nil {
		return 0, 0, fmt.Errorf("index chunks in vector db: %w", err)
	}

	return len(pages), len(chunks), nil
}

func (uc *ProcessDocumentUseCase) loadDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *ProcessDocumentUseCase) extractPages(ctx context.Context, doc *domain.Document) ([]domain.PageText, error) {
	pages, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return pages, nil
		}
	}
	return nil, domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
}

// chunk splits every page separately so each chunk keeps its page number.
// ChunkIndex is document-wide.
func (uc *ProcessDocumentUseCase) chunk(pages []domain.PageText) ([]domain.DocumentChunk, error) {
	var chunks []domain.DocumentChunk
	for _, p := range pages {
		for _, text := range uc.chunker.Split(p.Text) {
			chunks = append(chunks, domain.DocumentChunk{
				Page:       p.Page,
				ChunkIndex: len(chunks),
				Text:       text,
			})
		}
	}
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}
	return chunks, nil
}

func (uc *ProcessDocumentUseCase) embed(ctx context.Context, chunks []domain.DocumentChunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedInBatches(ctx, uc.embedder, texts, defaultEmbedBatchSize, defaultEmbedConcurrency)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	return vectors, nil
}

func (uc *ProcessDocumentUseCase) persistStats(ctx context.Context, documentID string, pages, chunks int) error {
	if err := uc.repo.SaveIndexStats(ctx, documentID, pages, chunks); err != nil {
		return fmt.Errorf("save index stats: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}

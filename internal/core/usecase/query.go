package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/core/ports"
)

const defaultDocsTopK = 8

// DocumentQueryUseCase retrieves policy document chunks for a question.
type DocumentQueryUseCase struct {
	embedder ports.Embedder
	index    ports.DocumentIndex
}

func NewDocumentQueryUseCase(embedder ports.Embedder, index ports.DocumentIndex) *DocumentQueryUseCase {
	return &DocumentQueryUseCase{
		embedder: embedder,
		index:    index,
	}
}

func (uc *DocumentQueryUseCase) Retrieve(ctx context.Context, question string, topK int) (domain.DocumentRetrieval, error) {
	if strings.TrimSpace(question) == "" {
		return domain.DocumentRetrieval{}, domain.WrapError(domain.ErrInvalidInput, "retrieve documents", errors.New("question is required"))
	}
	if topK <= 0 {
		topK = defaultDocsTopK
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return domain.DocumentRetrieval{}, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := uc.index.Search(ctx, queryVector, topK, domain.SearchFilter{})
	if err != nil {
		return domain.DocumentRetrieval{}, fmt.Errorf("search document index: %w", err)
	}
	if chunks == nil {
		chunks = []domain.RetrievedChunk{}
	}

	return domain.DocumentRetrieval{
		Chunks:  chunks,
		Sources: uniqueSources(chunks),
	}, nil
}

// uniqueSources keeps the first chunk per (file, page) and skips chunks
// without a source file.
func uniqueSources(chunks []domain.RetrievedChunk) []domain.DocumentSource {
	type sourceKey struct {
		file string
		page int
	}
	seen := make(map[sourceKey]struct{}, len(chunks))
	out := make([]domain.DocumentSource, 0, len(chunks))
	for _, c := range chunks {
		if c.SourceFile == "" {
			continue
		}
		key := sourceKey{file: c.SourceFile, page: c.Page}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, domain.DocumentSource{
			SourceFile: c.SourceFile,
			Page:       c.Page,
			URL:        c.URL,
		})
	}
	return out
}

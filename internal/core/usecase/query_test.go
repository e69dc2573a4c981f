package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

type documentIndexFake struct {
	chunks []domain.RetrievedChunk
	limit  int
	err    error

	indexed       []domain.DocumentChunk
	indexedDocID  string
	indexErr      error
	indexedVector int
}

func (f *documentIndexFake) IndexChunks(_ context.Context, doc *domain.Document, chunks []domain.DocumentChunk, vectors [][]float32) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexedDocID = doc.ID
	f.indexed = chunks
	f.indexedVector = len(vectors)
	return nil
}

func (f *documentIndexFake) Search(_ context.Context, _ []float32, limit int, _ domain.SearchFilter) ([]domain.RetrievedChunk, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

func TestRetrieveDefaultsTopKAndDedupesSources(t *testing.T) {
	index := &documentIndexFake{chunks: []domain.RetrievedChunk{
		{SourceFile: "act.pdf", Page: 3, Text: "a", URL: "https://x/act.pdf"},
		{SourceFile: "act.pdf", Page: 3, Text: "b"},
		{SourceFile: "act.pdf", Page: 4, Text: "c"},
		{SourceFile: "", Page: 1, Text: "d"},
		{SourceFile: "rules.pdf", Page: 3, Text: "e"},
	}}
	uc := NewDocumentQueryUseCase(&embedderFake{}, index)

	res, err := uc.Retrieve(context.Background(), "gram sabha", 0)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if index.limit != 8 {
		t.Fatalf("expected default topK 8, got %d", index.limit)
	}
	if len(res.Chunks) != 5 {
		t.Fatalf("expected all chunks returned, got %d", len(res.Chunks))
	}
	if len(res.Sources) != 3 {
		t.Fatalf("expected 3 unique sources, got %+v", res.Sources)
	}
	if res.Sources[0].URL != "https://x/act.pdf" {
		t.Fatalf("expected first chunk metadata kept, got %+v", res.Sources[0])
	}
}

func TestRetrieveErrors(t *testing.T) {
	uc := NewDocumentQueryUseCase(&embedderFake{err: errors.New("embed fail")}, &documentIndexFake{})
	if _, err := uc.Retrieve(context.Background(), "q", 3); err == nil {
		t.Fatalf("expected embed error")
	}

	uc = NewDocumentQueryUseCase(&embedderFake{}, &documentIndexFake{err: errors.New("search fail")})
	if _, err := uc.Retrieve(context.Background(), "q", 3); err == nil {
		t.Fatalf("expected search error")
	}

	if _, err := uc.Retrieve(context.Background(), " ", 3); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank question, got %v", err)
	}
}

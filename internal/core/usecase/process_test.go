package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

type statusCall struct {
	status domain.DocumentStatus
	errMsg string
}

type processRepoFake struct {
	doc           *domain.Document
	getErr        error
	statsErr      error
	statusErr     error
	failStatusErr error
	statusCalls   []statusCall
	statsID       string
	pages         int
	chunks        int
}

func (f *processRepoFake) Create(context.Context, *domain.Document) error { return nil }

func (f *processRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copyDoc := *f.doc
	return &copyDoc, nil
}

func (f *processRepoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	if status == domain.StatusFailed && f.failStatusErr != nil {
		return f.failStatusErr
	}
	if f.statusErr != nil {
		return f.statusErr
	}
	return nil
}

func (f *processRepoFake) SaveIndexStats(_ context.Context, id string, pages, chunks int) error {
	if f.statsErr != nil {
		return f.statsErr
	}
	f.statsID = id
	f.pages = pages
	f.chunks = chunks
	return nil
}

type extractorFake struct {
	pages []domain.PageText
	err   error
}

func (f *extractorFake) Extract(context.Context, *domain.Document) ([]domain.PageText, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

// chunkerFake splits on "|".
type chunkerFake struct{}

func (chunkerFake) Split(text string) []string {
	var out []string
	for _, part := range strings.Split(text, "|") {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

type mismatchEmbedder struct{ embedderFake }

func (m *mismatchEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return [][]float32{{1}}, nil
}

func TestProcessByIDSuccess(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1"}}
	index := &documentIndexFake{}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{pages: []domain.PageText{{Page: 1, Text: "a|b"}, {Page: 2, Text: " "}, {Page: 3, Text: "c"}}},
		chunkerFake{},
		&embedderFake{},
		index,
	)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if len(repo.statusCalls) != 2 {
		t.Fatalf("expected 2 status calls, got %d", len(repo.statusCalls))
	}
	if repo.statusCalls[0].status != domain.StatusProcessing || repo.statusCalls[1].status != domain.StatusReady {
		t.Fatalf("unexpected status sequence: %+v", repo.statusCalls)
	}
	if repo.statsID != "doc-1" || repo.pages != 3 || repo.chunks != 3 {
		t.Fatalf("unexpected stats: id=%s pages=%d chunks=%d", repo.statsID, repo.pages, repo.chunks)
	}
	if index.indexedDocID != "doc-1" || index.indexedVector != 3 {
		t.Fatalf("expected 3 vectors indexed for doc-1, got %s/%d", index.indexedDocID, index.indexedVector)
	}
	last := index.indexed[2]
	if last.Page != 3 || last.ChunkIndex != 2 || last.Text != "c" {
		t.Fatalf("expected page-tagged chunk, got %+v", last)
	}
}

func TestProcessByIDMarksFailedOnExtractError(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1"}}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{err: errors.New("extract fail")},
		chunkerFake{},
		&embedderFake{},
		&documentIndexFake{},
	)

	err := uc.ProcessByID(context.Background(), "doc-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.statusCalls) != 2 {
		t.Fatalf("expected processing + failed status updates, got %d", len(repo.statusCalls))
	}
	if repo.statusCalls[1].status != domain.StatusFailed || !strings.Contains(repo.statusCalls[1].errMsg, "extract fail") {
		t.Fatalf("expected failed status, got %+v", repo.statusCalls[1])
	}
}

func TestProcessByIDRejectsBlankDocument(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1"}}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{pages: []domain.PageText{{Page: 1, Text: "  "}}},
		chunkerFake{},
		&embedderFake{},
		&documentIndexFake{},
	)

	err := uc.ProcessByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessByIDMarksFailedOnVectorMismatch(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1"}}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{pages: []domain.PageText{{Page: 1, Text: "a|b"}}},
		chunkerFake{},
		&mismatchEmbedder{},
		&documentIndexFake{},
	)

	err := uc.ProcessByID(context.Background(), "doc-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.statusCalls) != 2 || repo.statusCalls[1].status != domain.StatusFailed {
		t.Fatalf("expected final failed status, got %+v", repo.statusCalls)
	}
}

func TestProcessByIDMarksFailedOnIndexError(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1"}}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{pages: []domain.PageText{{Page: 1, Text: "a"}}},
		chunkerFake{},
		&embedderFake{},
		&documentIndexFake{indexErr: errors.New("qdrant down")},
	)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err == nil {
		t.Fatalf("expected error")
	}
	if repo.statsID != "" {
		t.Fatalf("expected no stats after index failure")
	}
	if repo.statusCalls[len(repo.statusCalls)-1].status != domain.StatusFailed {
		t.Fatalf("expected failed status, got %+v", repo.statusCalls)
	}
}

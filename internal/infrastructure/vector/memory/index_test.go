package memory

import (
	"context"
	"testing"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

func TestSchemeAliasLifecycle(t *testing.T) {
	ctx := context.Background()
	ix := New("docs")

	hits, err := ix.SearchSchemes(ctx, "schemes", []float32{1, 0}, 5, domain.SchemeFilter{})
	if err != nil || len(hits) != 0 {
		t.Fatalf("expected empty result before first build, got %v %v", hits, err)
	}

	if err := ix.CreateCollection(ctx, "schemes_1", 2); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	err = ix.UpsertSchemes(ctx, "schemes_1", []domain.SchemePoint{
		{ID: "a", Vector: []float32{1, 0}, Scheme: domain.Scheme{NameEN: "Awas", Category: "housing", Type: "scheme"}},
		{ID: "b", Vector: []float32{0, 1}, Scheme: domain.Scheme{NameEN: "Ujjwala", Category: "lpg", Type: "scheme"}},
	})
	if err != nil {
		t.Fatalf("UpsertSchemes() error = %v", err)
	}
	previous, err := ix.SwapAlias(ctx, "schemes", "schemes_1")
	if err != nil || previous != "" {
		t.Fatalf("expected first swap without previous, got %q %v", previous, err)
	}

	hits, err = ix.SearchSchemes(ctx, "schemes", []float32{1, 0.1}, 5, domain.SchemeFilter{})
	if err != nil {
		t.Fatalf("SearchSchemes() error = %v", err)
	}
	if len(hits) != 2 || hits[0].PointID != "a" {
		t.Fatalf("expected nearest point first, got %+v", hits)
	}

	hits, _ = ix.SearchSchemes(ctx, "schemes", []float32{1, 0}, 5, domain.SchemeFilter{Category: "lpg"})
	if len(hits) != 1 || hits[0].PointID != "b" {
		t.Fatalf("expected category filter to apply, got %+v", hits)
	}

	hits, _ = ix.SearchSchemes(ctx, "schemes", []float32{1, 0}, 5, domain.SchemeFilter{Category: "LPG"})
	if len(hits) != 0 {
		t.Fatalf("expected filter to match case-sensitively, got %+v", hits)
	}

	_ = ix.CreateCollection(ctx, "schemes_2", 2)
	previous, _ = ix.SwapAlias(ctx, "schemes", "schemes_2")
	if previous != "schemes_1" {
		t.Fatalf("expected previous schemes_1, got %q", previous)
	}
	_ = ix.DropCollection(ctx, previous)
	if ix.Aliases()["schemes"] != "schemes_2" {
		t.Fatalf("unexpected aliases: %v", ix.Aliases())
	}
}

func TestUpsertRejectsWrongDimension(t *testing.T) {
	ix := New("docs")
	_ = ix.CreateCollection(context.Background(), "c", 3)
	err := ix.UpsertSchemes(context.Background(), "c", []domain.SchemePoint{{ID: "a", Vector: []float32{1}}})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDocumentChunksRoundTrip(t *testing.T) {
	ctx := context.Background()
	ix := New("docs")
	doc := &domain.Document{ID: "d1", Filename: "act.pdf"}
	err := ix.IndexChunks(ctx, doc,
		[]domain.DocumentChunk{{Page: 1, Text: "gram sabha"}, {Page: 2, ChunkIndex: 1, Text: "budget"}},
		[][]float32{{1, 0}, {0, 1}},
	)
	if err != nil {
		t.Fatalf("IndexChunks() error = %v", err)
	}
	chunks, err := ix.Search(ctx, []float32{0, 1}, 1, domain.SearchFilter{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(chunks) != 1 || chunks[0].Page != 2 || chunks[0].SourceFile != "act.pdf" {
		t.Fatalf("unexpected chunks: %+v", chunks)
	}
}

package redisembed

import (
	"context"
	"errors"
	"testing"
)

type memStore struct {
	data   map[string][]byte
	getErr error
	sets   int
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.sets++
	m.data[key] = value
	return nil
}

type countingEmbedder struct {
	calls  int
	texts  []string
	failed bool
}

func (e *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	e.texts = append(e.texts, texts...)
	if e.failed {
		return nil, errors.New("down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 0.5}
	}
	return out, nil
}

func (e *countingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	v, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

type observerFake map[string]int

func (o observerFake) ObserveEmbeddingCache(result string, n int) { o[result] += n }

func TestEmbedOnlyCallsInnerForMisses(t *testing.T) {
	inner := &countingEmbedder{}
	obs := observerFake{}
	c := New(inner, newMemStore(), "e5", obs)

	if _, err := c.Embed(context.Background(), []string{"awas", "pension"}); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	got, err := c.Embed(context.Background(), []string{"pension", "ujjwala", "awas"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(inner.texts) != 3 || inner.texts[2] != "ujjwala" {
		t.Fatalf("expected only the new text embedded, got %v", inner.texts)
	}
	if got[0][0] != 7 || got[1][0] != 7 || got[2][0] != 4 {
		t.Fatalf("unexpected vectors: %v", got)
	}
	if obs["hit"] != 2 || obs["miss"] != 3 {
		t.Fatalf("unexpected hit/miss counts: %v", obs)
	}
}

func TestEmbedQueryRoundTripsVector(t *testing.T) {
	inner := &countingEmbedder{}
	c := New(inner, newMemStore(), "e5", nil)

	first, _ := c.EmbedQuery(context.Background(), "gas")
	second, err := c.EmbedQuery(context.Background(), "gas")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected one inner call, got %d", inner.calls)
	}
	if first[0] != second[0] || first[1] != second[1] {
		t.Fatalf("cached vector differs: %v vs %v", first, second)
	}
}

func TestStoreFailureFallsThrough(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("redis down")
	inner := &countingEmbedder{}
	c := New(inner, store, "e5", nil)

	if _, err := c.EmbedQuery(context.Background(), "gas"); err != nil {
		t.Fatalf("expected fallthrough, got %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected inner call on cache failure")
	}
}

func TestNamespaceSeparatesModels(t *testing.T) {
	a := New(&countingEmbedder{}, newMemStore(), "model-a", nil)
	b := New(&countingEmbedder{}, newMemStore(), "model-b", nil)
	if a.key("x") == b.key("x") {
		t.Fatalf("expected different keys per namespace")
	}
}

func TestBytesToVectorRejectsTruncatedData(t *testing.T) {
	if _, err := bytesToVector([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error")
	}
}

package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/resilience"
)

func testExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	})
}

func TestIndexChunksEnsuresCollectionOncePerVectorSize(t *testing.T) {
	var ensureCalls int32
	var upsertBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs":
			atomic.AddInt32(&ensureCalls, 1)
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs/points":
			_ = json.NewDecoder(r.Body).Decode(&upsertBody)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	index := NewDocumentIndex(New(server.URL, testExecutor()), "docs")
	doc := &domain.Document{ID: "doc-1", Filename: "act.pdf", SourceURL: "https://x/act.pdf"}
	chunks := []domain.DocumentChunk{{Page: 1, ChunkIndex: 0, Text: "a"}, {Page: 2, ChunkIndex: 1, Text: "b"}}
	vectors := [][]float32{{0.1, 0.2}, {0.3, 0.4}}

	if err := index.IndexChunks(context.Background(), doc, chunks, vectors); err != nil {
		t.Fatalf("first IndexChunks() error = %v", err)
	}
	if err := index.IndexChunks(context.Background(), doc, chunks, vectors); err != nil {
		t.Fatalf("second IndexChunks() error = %v", err)
	}
	if got := atomic.LoadInt32(&ensureCalls); got != 1 {
		t.Fatalf("expected ensure collection called once, got %d", got)
	}

	points := upsertBody["points"].([]any)
	payload := points[1].(map[string]any)["payload"].(map[string]any)
	if payload["source_file"] != "act.pdf" || payload["page"] != float64(2) || payload["url"] != "https://x/act.pdf" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestEnsureCollectionIncludesResponseBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/docs" {
			http.Error(w, "boom", http.StatusBadRequest)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	index := NewDocumentIndex(New(server.URL, testExecutor()), "docs")
	doc := &domain.Document{ID: "doc-1", Filename: "a.txt"}
	err := index.IndexChunks(context.Background(), doc, []domain.DocumentChunk{{Text: "a"}}, [][]float32{{0.1, 0.2}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected error to include body, got %v", err)
	}
}

func TestDocumentSearchDecodesChunks(t *testing.T) {
	var searchBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/collections/docs/points/search" {
			_ = json.NewDecoder(r.Body).Decode(&searchBody)
			_, _ = w.Write([]byte(`{"result":[{"id":"p1","score":0.82,"payload":{"doc_id":"d1","source_file":"act.pdf","page":4,"chunk_index":7,"text":"gram sabha"}}]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	index := NewDocumentIndex(New(server.URL, testExecutor()), "docs")
	chunks, err := index.Search(context.Background(), []float32{1, 0}, 8, domain.SearchFilter{SourceFile: "act.pdf"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(chunks) != 1 || chunks[0].Page != 4 || chunks[0].ChunkIndex != 7 || chunks[0].SourceFile != "act.pdf" {
		t.Fatalf("unexpected chunks: %+v", chunks)
	}
	if _, ok := searchBody["filter"]; !ok {
		t.Fatalf("expected source_file filter in body: %#v", searchBody)
	}
}

func TestSearchSchemesAppliesFilterAndDecodesPayload(t *testing.T) {
	var searchBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/collections/schemes/points/search" {
			_ = json.NewDecoder(r.Body).Decode(&searchBody)
			_, _ = w.Write([]byte(`{"result":[{"id":"9f1c","score":0.71,"payload":{"id":"","name_en":"Ujjwala","category":"lpg","tags":["gas"]}}]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, testExecutor())
	hits, err := client.SearchSchemes(context.Background(), "schemes", []float32{1, 0}, 50, domain.SchemeFilter{Category: "lpg", Type: "scheme"})
	if err != nil {
		t.Fatalf("SearchSchemes() error = %v", err)
	}
	if len(hits) != 1 || hits[0].PointID != "9f1c" || hits[0].Scheme.NameEN != "Ujjwala" || hits[0].Score != 0.71 {
		t.Fatalf("unexpected hits: %+v", hits)
	}
	if searchBody["limit"] != float64(50) {
		t.Fatalf("expected limit 50, got %v", searchBody["limit"])
	}
	must := searchBody["filter"].(map[string]any)["must"].([]any)
	if len(must) != 2 {
		t.Fatalf("expected category+type conditions, got %#v", must)
	}
	if first := must[0].(map[string]any); first["key"] != "category" {
		t.Fatalf("expected sorted conditions, got %#v", must)
	}
}

func TestSearchSchemesMissingAliasReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":{"error":"Not found: Collection schemes doesn't exist!"}}`, http.StatusNotFound)
	}))
	defer server.Close()

	hits, err := New(server.URL, testExecutor()).SearchSchemes(context.Background(), "schemes", []float32{1}, 5, domain.SchemeFilter{})
	if err != nil {
		t.Fatalf("SearchSchemes() error = %v", err)
	}
	if hits == nil || len(hits) != 0 {
		t.Fatalf("expected empty non-nil hits, got %#v", hits)
	}
}

func TestSearchSchemesRetriesAndWrapsTemporary(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := New(server.URL, testExecutor()).SearchSchemes(context.Background(), "schemes", []float32{1}, 5, domain.SchemeFilter{})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestSwapAliasReplacesPreviousTarget(t *testing.T) {
	var aliasBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/aliases":
			_, _ = w.Write([]byte(`{"result":{"aliases":[{"alias_name":"other","collection_name":"x"},{"alias_name":"schemes","collection_name":"schemes_1"}]}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/collections/aliases":
			_ = json.NewDecoder(r.Body).Decode(&aliasBody)
			_, _ = w.Write([]byte(`{"result":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	previous, err := New(server.URL, testExecutor()).SwapAlias(context.Background(), "schemes", "schemes_2")
	if err != nil {
		t.Fatalf("SwapAlias() error = %v", err)
	}
	if previous != "schemes_1" {
		t.Fatalf("expected previous schemes_1, got %q", previous)
	}
	actions := aliasBody["actions"].([]any)
	if len(actions) != 2 {
		t.Fatalf("expected delete+create actions, got %#v", actions)
	}
	create := actions[1].(map[string]any)["create_alias"].(map[string]any)
	if create["collection_name"] != "schemes_2" || create["alias_name"] != "schemes" {
		t.Fatalf("unexpected create action: %#v", create)
	}
}

func TestSwapAliasFirstBuildOnlyCreates(t *testing.T) {
	var aliasBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/aliases":
			_, _ = w.Write([]byte(`{"result":{"aliases":[]}}`))
		case "/collections/aliases":
			_ = json.NewDecoder(r.Body).Decode(&aliasBody)
			_, _ = w.Write([]byte(`{"result":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	previous, err := New(server.URL, testExecutor()).SwapAlias(context.Background(), "schemes", "schemes_1")
	if err != nil || previous != "" {
		t.Fatalf("expected no previous target, got %q err=%v", previous, err)
	}
	if actions := aliasBody["actions"].([]any); len(actions) != 1 {
		t.Fatalf("expected single create action, got %#v", actions)
	}
}

func TestDropCollectionIgnoresMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	if err := New(server.URL, testExecutor()).DropCollection(context.Background(), "schemes_0"); err != nil {
		t.Fatalf("expected missing collection to be ignored, got %v", err)
	}
}

func TestUpsertSchemesSendsPayload(t *testing.T) {
	var upsertBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/schemes_1/points" {
			if r.URL.Query().Get("wait") != "true" {
				t.Errorf("expected wait=true")
			}
			_ = json.NewDecoder(r.Body).Decode(&upsertBody)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	err := New(server.URL, testExecutor()).UpsertSchemes(context.Background(), "schemes_1", []domain.SchemePoint{
		{ID: "p1", Vector: []float32{1, 0}, Scheme: domain.Scheme{NameEN: "Ujjwala", SearchBlob: "blob"}},
	})
	if err != nil {
		t.Fatalf("UpsertSchemes() error = %v", err)
	}
	payload := upsertBody["points"].([]any)[0].(map[string]any)["payload"].(map[string]any)
	if payload["name_en"] != "Ujjwala" || payload["__search_blob"] != "blob" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

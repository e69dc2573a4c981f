// Package memory is an in-process vector index with the same alias semantics
// as the Qdrant adapter. It is meant for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

type storedPoint struct {
	id      string
	vector  []float32
	scheme  domain.Scheme
	chunk   domain.RetrievedChunk
	isChunk bool
}

type collection struct {
	dimension int
	points    []storedPoint
}

// Index implements both ports.SchemeIndex and ports.DocumentIndex.
type Index struct {
	docsCollection string

	mu          sync.RWMutex
	collections map[string]*collection
	aliases     map[string]string
}

func New(docsCollection string) *Index {
	return &Index{
		docsCollection: docsCollection,
		collections:    make(map[string]*collection),
		aliases:        make(map[string]string),
	}
}

func (ix *Index) CreateCollection(_ context.Context, name string, dimension int) error {
	if dimension <= 0 {
		return domain.WrapError(domain.ErrInvalidInput, "memory create collection", fmt.Errorf("dimension must be positive, got %d", dimension))
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.collections[name] = &collection{dimension: dimension}
	return nil
}

func (ix *Index) UpsertSchemes(_ context.Context, name string, points []domain.SchemePoint) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	c, ok := ix.collections[name]
	if !ok {
		return fmt.Errorf("memory upsert: collection %q not found", name)
	}
	for _, p := range points {
		if len(p.Vector) != c.dimension {
			return domain.WrapError(domain.ErrInvalidInput, "memory upsert", fmt.Errorf("vector size %d, collection expects %d", len(p.Vector), c.dimension))
		}
		c.points = append(c.points, storedPoint{id: p.ID, vector: p.Vector, scheme: p.Scheme})
	}
	return nil
}

func (ix *Index) SwapAlias(_ context.Context, alias, name string) (string, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, ok := ix.collections[name]; !ok {
		return "", fmt.Errorf("memory swap alias: collection %q not found", name)
	}
	previous := ix.aliases[alias]
	ix.aliases[alias] = name
	return previous, nil
}

func (ix *Index) DropCollection(_ context.Context, name string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.collections, name)
	return nil
}

func (ix *Index) SearchSchemes(
	_ context.Context,
	alias string,
	queryVector []float32,
	limit int,
	filter domain.SchemeFilter,
) ([]domain.SchemeHit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	c := ix.resolve(alias)
	if c == nil {
		return []domain.SchemeHit{}, nil
	}
	out := make([]domain.SchemeHit, 0, len(c.points))
	for _, p := range c.points {
		if !matchesScheme(p.scheme, filter) {
			continue
		}
		out = append(out, domain.SchemeHit{
			PointID: p.id,
			Score:   cosine(queryVector, p.vector),
			Scheme:  p.scheme,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (ix *Index) IndexChunks(_ context.Context, doc *domain.Document, chunks []domain.DocumentChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return domain.WrapError(domain.ErrInvalidInput, "memory index chunks", fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors)))
	}
	if len(chunks) == 0 {
		return nil
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	c, ok := ix.collections[ix.docsCollection]
	if !ok {
		c = &collection{dimension: len(vectors[0])}
		ix.collections[ix.docsCollection] = c
	}
	for i, chunk := range chunks {
		c.points = append(c.points, storedPoint{
			id:     uuid.NewString(),
			vector: vectors[i],
			chunk: domain.RetrievedChunk{
				DocumentID: doc.ID,
				SourceFile: doc.Filename,
				Page:       chunk.Page,
				ChunkIndex: chunk.ChunkIndex,
				URL:        doc.SourceURL,
				Text:       chunk.Text,
			},
			isChunk: true,
		})
	}
	return nil
}

func (ix *Index) Search(_ context.Context, queryVector []float32, limit int, filter domain.SearchFilter) ([]domain.RetrievedChunk, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	c := ix.collections[ix.docsCollection]
	if c == nil {
		return []domain.RetrievedChunk{}, nil
	}
	out := make([]domain.RetrievedChunk, 0, len(c.points))
	for _, p := range c.points {
		if !p.isChunk {
			continue
		}
		if filter.SourceFile != "" && p.chunk.SourceFile != filter.SourceFile {
			continue
		}
		chunk := p.chunk
		chunk.Score = cosine(queryVector, p.vector)
		out = append(out, chunk)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Aliases returns a copy of the alias table.
func (ix *Index) Aliases() map[string]string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return maps.Clone(ix.aliases)
}

func (ix *Index) resolve(name string) *collection {
	if target, ok := ix.aliases[name]; ok {
		return ix.collections[target]
	}
	return ix.collections[name]
}

// matchesScheme applies exact equality, as Qdrant's match.value does.
func matchesScheme(s domain.Scheme, f domain.SchemeFilter) bool {
	return (f.Category == "" || s.Category == f.Category) &&
		(f.Department == "" || s.Department == f.Department) &&
		(f.Type == "" || s.Type == f.Type)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

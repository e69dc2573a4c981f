package usecase

import (
	"context"
	"sync"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

type embedderFake struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	queries []string
	batches int

	started chan struct{}
	release chan struct{}
}

func (f *embedderFake) vectorFor(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	return []float32{1, float32(len(text) % 7)}
}

func (f *embedderFake) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.batches++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, f.vectorFor(text))
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.queries = append(f.queries, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.vectorFor(text), nil
}

type schemeIndexFake struct {
	hits      []domain.SchemeHit
	searchErr error

	lastAlias  string
	lastLimit  int
	lastFilter domain.SchemeFilter

	createErr error
	upsertErr error
	swapErr   error

	created map[string]int
	points  map[string][]domain.SchemePoint
	aliases map[string]string
	dropped []string
}

func newSchemeIndexFake() *schemeIndexFake {
	return &schemeIndexFake{
		created: map[string]int{},
		points:  map[string][]domain.SchemePoint{},
		aliases: map[string]string{},
	}
}

func (f *schemeIndexFake) CreateCollection(_ context.Context, name string, dimension int) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created[name] = dimension
	return nil
}

func (f *schemeIndexFake) UpsertSchemes(_ context.Context, collection string, points []domain.SchemePoint) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.points[collection] = append(f.points[collection], points...)
	return nil
}

func (f *schemeIndexFake) SwapAlias(_ context.Context, alias, collection string) (string, error) {
	if f.swapErr != nil {
		return "", f.swapErr
	}
	previous := f.aliases[alias]
	f.aliases[alias] = collection
	return previous, nil
}

func (f *schemeIndexFake) DropCollection(_ context.Context, name string) error {
	f.dropped = append(f.dropped, name)
	delete(f.created, name)
	delete(f.points, name)
	return nil
}

func (f *schemeIndexFake) SearchSchemes(_ context.Context, alias string, _ []float32, limit int, filter domain.SchemeFilter) ([]domain.SchemeHit, error) {
	f.lastAlias = alias
	f.lastLimit = limit
	f.lastFilter = filter
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	out := make([]domain.SchemeHit, len(f.hits))
	copy(out, f.hits)
	return out, nil
}

type rerankerFake struct {
	scores map[string]float64
	err    error
	query  string
}

func (f *rerankerFake) Score(_ context.Context, query string, texts []string) ([]float64, error) {
	f.query = query
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, len(texts))
	for i, text := range texts {
		out[i] = f.scores[text]
	}
	return out, nil
}

type schemeSourceFake struct {
	schemes []domain.Scheme
	err     error
}

func (f schemeSourceFake) LoadSchemes(context.Context) ([]domain.Scheme, error) {
	return f.schemes, f.err
}

func hit(id, nameEN string, score float64) domain.SchemeHit {
	return domain.SchemeHit{
		PointID: "point-" + id,
		Score:   score,
		Scheme:  domain.Scheme{ID: id, NameEN: nameEN},
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/core/ports"
)

// SchemeSearchUseCase runs hybrid search: vector similarity plus keyword
// boost, deduplicated by natural key and paginated.
type SchemeSearchUseCase struct {
	embedder ports.Embedder
	index    ports.SchemeIndex
	alias    string
	params   RankingParams
}

func NewSchemeSearchUseCase(
	embedder ports.Embedder,
	index ports.SchemeIndex,
	alias string,
	params RankingParams,
) *SchemeSearchUseCase {
	return &SchemeSearchUseCase{
		embedder: embedder,
		index:    index,
		alias:    alias,
		params:   params.normalize(),
	}
}

func (uc *SchemeSearchUseCase) Search(ctx context.Context, req domain.SchemeSearchRequest) (domain.SchemeSearchPage, error) {
	req = req.Clamped()
	if strings.TrimSpace(req.Question) == "" {
		return domain.SchemeSearchPage{}, domain.WrapError(domain.ErrInvalidInput, "search schemes", errors.New("question is required"))
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, req.Question)
	if err != nil {
		return domain.SchemeSearchPage{}, fmt.Errorf("embed query: %w", err)
	}

	hits, err := uc.index.SearchSchemes(ctx, uc.alias, queryVector, uc.params.Oversampling, req.Filter)
	if err != nil {
		return domain.SchemeSearchPage{}, fmt.Errorf("search scheme index: %w", err)
	}

	ranked := rankSchemeHits(req.Question, hits, req.MinScore, uc.params)
	return paginate(ranked, req.Page, req.Limit), nil
}

// rankSchemeHits drops hits under minScore, applies the keyword boost, keeps
// the best-scoring candidate per natural key and sorts by final score.
func rankSchemeHits(question string, hits []domain.SchemeHit, minScore float64, p RankingParams) []domain.ScoredScheme {
	out := make([]domain.ScoredScheme, 0, len(hits))
	byKey := make(map[string]int, len(hits))

	for _, hit := range hits {
		if hit.Score < minScore {
			continue
		}
		scheme := hit.Scheme.Normalized()
		if strings.TrimSpace(scheme.ID) == "" {
			scheme.ID = hit.PointID
		}

		boost := keywordBoost(question, scheme, p)
		candidate := domain.ScoredScheme{
			Scheme:       scheme,
			BaseScore:    hit.Score,
			KeywordBoost: boost,
			FinalScore:   hit.Score + boost,
		}

		key := scheme.NaturalKey()
		if idx, ok := byKey[key]; ok {
			if candidate.FinalScore > out[idx].FinalScore {
				out[idx] = candidate
			}
			continue
		}
		byKey[key] = len(out)
		out = append(out, candidate)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FinalScore != out[j].FinalScore {
			return out[i].FinalScore > out[j].FinalScore
		}
		return out[i].NaturalKey() < out[j].NaturalKey()
	})
	return out
}

func paginate(ranked []domain.ScoredScheme, page, limit int) domain.SchemeSearchPage {
	result := domain.SchemeSearchPage{
		Items: []domain.ScoredScheme{},
		Total: len(ranked),
		Page:  page,
		Limit: limit,
	}
	start := (page - 1) * limit
	if start >= len(ranked) {
		return result
	}
	end := start + limit
	if end > len(ranked) {
		end = len(ranked)
	}
	result.Items = append(result.Items, ranked[start:end]...)
	return result
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/core/ports"
	"github.com/kirillkom/panchayat-sahayika/internal/core/textnorm"
)

const defaultDiverseTopK = 10

// DiverseSearchUseCase re-scores vector candidates with a cross-encoder and
// picks a relevant but non-redundant subset with maximal marginal relevance.
// Returned items carry the vector score as BaseScore and the cross-encoder
// score as FinalScore.
type DiverseSearchUseCase struct {
	embedder ports.Embedder
	index    ports.SchemeIndex
	reranker ports.Reranker
	alias    string
	params   RankingParams
}

func NewDiverseSearchUseCase(
	embedder ports.Embedder,
	index ports.SchemeIndex,
	reranker ports.Reranker,
	alias string,
	params RankingParams,
) *DiverseSearchUseCase {
	return &DiverseSearchUseCase{
		embedder: embedder,
		index:    index,
		reranker: reranker,
		alias:    alias,
		params:   params.normalize(),
	}
}

type diverseCandidate struct {
	scheme    domain.ScoredScheme
	text      string
	relevance float64
}

func (uc *DiverseSearchUseCase) SearchDiverse(ctx context.Context, question string, topK int) ([]domain.ScoredScheme, error) {
	query := textnorm.Normalize(question)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search diverse", errors.New("question is required"))
	}
	if topK <= 0 {
		topK = defaultDiverseTopK
	}
	if topK > domain.MaxSearchLimit {
		topK = domain.MaxSearchLimit
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := uc.index.SearchSchemes(ctx, uc.alias, queryVector, uc.params.DiverseCandidates, domain.SchemeFilter{})
	if err != nil {
		return nil, fmt.Errorf("search scheme index: %w", err)
	}
	if len(hits) == 0 {
		return []domain.ScoredScheme{}, nil
	}

	candidates := make([]diverseCandidate, len(hits))
	texts := make([]string, len(hits))
	for i, hit := range hits {
		scheme := hit.Scheme.Normalized()
		if scheme.ID == "" {
			scheme.ID = hit.PointID
		}
		texts[i] = scheme.CombinedText()
		candidates[i] = diverseCandidate{
			scheme: domain.ScoredScheme{Scheme: scheme, BaseScore: hit.Score},
			text:   texts[i],
		}
	}

	scores, err := uc.reranker.Score(ctx, query, texts)
	if err != nil {
		return nil, fmt.Errorf("rerank candidates: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"rerank candidates",
			fmt.Errorf("scores/candidates mismatch: %d/%d", len(scores), len(candidates)),
		)
	}
	for i := range candidates {
		candidates[i].relevance = scores[i]
		candidates[i].scheme.FinalScore = scores[i]
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].relevance > candidates[j].relevance
	})

	rankedTexts := make([]string, len(candidates))
	for i, c := range candidates {
		rankedTexts[i] = c.text
	}
	vectors, err := embedInBatches(ctx, uc.embedder, rankedTexts, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}

	picked := selectMMR(queryVector, vectors, topK, uc.params.MMRLambda)
	out := make([]domain.ScoredScheme, 0, len(picked))
	for _, idx := range picked {
		out = append(out, candidates[idx].scheme)
	}
	return out, nil
}

// selectMMR greedily picks up to topK indices maximizing
// lambda*sim(candidate, query) - (1-lambda)*max sim(candidate, picked).
// Candidates are expected in relevance order; ties keep the earlier one.
func selectMMR(query []float32, vectors [][]float32, topK int, lambda float64) []int {
	n := len(vectors)
	if topK > n {
		topK = n
	}
	relevance := make([]float64, n)
	for i, v := range vectors {
		relevance[i] = cosine(v, query)
	}

	picked := make([]int, 0, topK)
	used := make([]bool, n)
	for len(picked) < topK {
		best := -1
		bestScore := math.Inf(-1)
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			redundancy := 0.0
			for _, j := range picked {
				redundancy = math.Max(redundancy, cosine(vectors[i], vectors[j]))
			}
			score := lambda*relevance[i] - (1-lambda)*redundancy
			if score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		picked = append(picked, best)
	}
	return picked
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

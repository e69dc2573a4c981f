package bootstrap

import (
	"github.com/kirillkom/panchayat-sahayika/internal/config"
	"github.com/kirillkom/panchayat-sahayika/internal/core/usecase"
)

func rankingParams(path string) (usecase.RankingParams, error) {
	overlay, err := config.LoadRanking(path)
	if err != nil {
		return usecase.RankingParams{}, err
	}
	return applyRanking(usecase.DefaultRankingParams(), overlay), nil
}

func applyRanking(p usecase.RankingParams, r config.Ranking) usecase.RankingParams {
	if r.FullMatchBoost != nil {
		p.FullMatchBoost = *r.FullMatchBoost
	}
	if r.TokenBoost != nil {
		p.TokenBoost = *r.TokenBoost
	}
	if r.MinTokenRunes != nil {
		p.MinTokenRunes = *r.MinTokenRunes
	}
	if r.StrongScore != nil {
		p.StrongScore = *r.StrongScore
	}
	if r.WeakScore != nil {
		p.WeakScore = *r.WeakScore
	}
	if len(r.TriggerWords) > 0 {
		p.TriggerWords = append([]string(nil), r.TriggerWords...)
	}
	if r.DiverseCandidates != nil {
		p.DiverseCandidates = *r.DiverseCandidates
	}
	if r.MMRLambda != nil {
		p.MMRLambda = *r.MMRLambda
	}
	return p
}

package usecase

import (
	"strings"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/core/textnorm"
)

// RankingParams holds the tunables of scheme search, mode selection and
// diversified re-ranking.
type RankingParams struct {
	Oversampling   int
	FullMatchBoost float64
	TokenBoost     float64
	MinTokenRunes  int

	StrongScore  float64
	WeakScore    float64
	TriggerWords []string

	DiverseCandidates int
	MMRLambda         float64
}

func DefaultTriggerWords() []string {
	return []string{
		"योजना", "yojana", "scheme", "स्कीम",
		"pension", "पेंशन", "subsidy", "सब्सिडी",
		"बीमा", "insurance", "scholarship", "छात्रवृत्ति",
	}
}

func DefaultRankingParams() RankingParams {
	return RankingParams{
		Oversampling:      domain.SearchOversampling,
		FullMatchBoost:    0.6,
		TokenBoost:        0.15,
		MinTokenRunes:     3,
		StrongScore:       0.60,
		WeakScore:         0.25,
		TriggerWords:      DefaultTriggerWords(),
		DiverseCandidates: 36,
		MMRLambda:         0.72,
	}
}

func (p RankingParams) normalize() RankingParams {
	out := p
	def := DefaultRankingParams()
	if out.Oversampling <= 0 {
		out.Oversampling = def.Oversampling
	}
	if out.MinTokenRunes <= 0 {
		out.MinTokenRunes = def.MinTokenRunes
	}
	if out.DiverseCandidates <= 0 {
		out.DiverseCandidates = def.DiverseCandidates
	}
	if out.MMRLambda <= 0 || out.MMRLambda > 1 {
		out.MMRLambda = def.MMRLambda
	}
	if len(out.TriggerWords) == 0 {
		out.TriggerWords = def.TriggerWords
	}
	normalized := make([]string, 0, len(out.TriggerWords))
	for _, w := range out.TriggerWords {
		if n := textnorm.Normalize(w); n != "" {
			normalized = append(normalized, n)
		}
	}
	out.TriggerWords = normalized
	return out
}

// keywordBoost rewards lexical overlap between the query and the scheme's
// name, category and department. The boost is not capped.
func keywordBoost(question string, s domain.Scheme, p RankingParams) float64 {
	q := textnorm.Normalize(question)
	if q == "" {
		return 0
	}
	name := textnorm.Normalize(s.NameHI + " " + s.NameEN)
	category := textnorm.Normalize(s.Category)
	department := textnorm.Normalize(s.Department)

	boost := 0.0
	if strings.Contains(name, q) {
		boost += p.FullMatchBoost
	}
	for _, token := range strings.Fields(q) {
		if textnorm.RuneLen(token) < p.MinTokenRunes {
			continue
		}
		if strings.Contains(name, token) || strings.Contains(category, token) || strings.Contains(department, token) {
			boost += p.TokenBoost
		}
	}
	return boost
}

package usecase

import (
	"strings"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/core/textnorm"
)

// ModeSelector decides whether ranked schemes are a good enough answer source
// or the question should go to document retrieval.
type ModeSelector struct {
	params RankingParams
}

func NewModeSelector(params RankingParams) ModeSelector {
	return ModeSelector{params: params.normalize()}
}

// UseStructuredMode uses the default thresholds and trigger vocabulary.
func UseStructuredMode(question string, ranked []domain.ScoredScheme, forced domain.AnswerMode) bool {
	return NewModeSelector(DefaultRankingParams()).UseStructuredMode(question, ranked, forced)
}

func (m ModeSelector) UseStructuredMode(question string, ranked []domain.ScoredScheme, forced domain.AnswerMode) bool {
	if forced == domain.ModeSchemes {
		return true
	}
	if len(ranked) == 0 {
		return false
	}

	top := ranked[0].TopScore()
	if top >= m.params.StrongScore {
		return true
	}
	return m.hasTriggerWord(question) && top >= m.params.WeakScore
}

func (m ModeSelector) hasTriggerWord(question string) bool {
	q := textnorm.Normalize(question)
	if q == "" {
		return false
	}
	for _, w := range m.params.TriggerWords {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}

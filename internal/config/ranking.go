package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Ranking is the optional YAML overlay for search and mode selection
// tunables. Nil fields keep the built-in defaults.
type Ranking struct {
	FullMatchBoost    *float64 `yaml:"full_match_boost"`
	TokenBoost        *float64 `yaml:"token_boost"`
	MinTokenRunes     *int     `yaml:"min_token_runes"`
	StrongScore       *float64 `yaml:"strong_score"`
	WeakScore         *float64 `yaml:"weak_score"`
	TriggerWords      []string `yaml:"trigger_words"`
	DiverseCandidates *int     `yaml:"diverse_candidates"`
	MMRLambda         *float64 `yaml:"mmr_lambda"`
}

// LoadRanking reads the overlay file. An empty path yields an empty overlay.
func LoadRanking(path string) (Ranking, error) {
	var out Ranking
	if path == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read ranking config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	// An empty or comment-only file decodes to io.EOF: no overrides.
	if err := dec.Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return out, fmt.Errorf("parse ranking config %s: %w", path, err)
	}
	if out.MMRLambda != nil && (*out.MMRLambda <= 0 || *out.MMRLambda > 1) {
		return out, fmt.Errorf("ranking config: mmr_lambda must be in (0, 1], got %v", *out.MMRLambda)
	}
	if out.StrongScore != nil && out.WeakScore != nil && *out.WeakScore > *out.StrongScore {
		return out, fmt.Errorf("ranking config: weak_score %v above strong_score %v", *out.WeakScore, *out.StrongScore)
	}
	return out, nil
}

package domain

import "strings"

const (
	DefaultSchemeType = "scheme"

	searchBlobNameRepeats = 5
	searchBlobSeparator   = " | "
)

// Scheme is a government scheme record as stored in the scheme index.
// Every text field is always present; missing values are empty strings.
type Scheme struct {
	ID            string   `json:"id"`
	NameHI        string   `json:"name_hi"`
	NameEN        string   `json:"name_en"`
	Category      string   `json:"category"`
	Department    string   `json:"department"`
	DescriptionHI string   `json:"description_hi"`
	DescriptionEN string   `json:"description_en"`
	Eligibility   string   `json:"eligibility"`
	Benefit       string   `json:"benefit"`
	ApplyProcess  string   `json:"apply_process"`
	ApplyLink     string   `json:"apply_link"`
	Type          string   `json:"type"`
	Tags          []string `json:"tags"`
	SearchBlob    string   `json:"__search_blob,omitempty"`
}

// Normalized returns a copy with defaults applied so consumers never branch on
// missing fields.
func (s Scheme) Normalized() Scheme {
	out := s
	if strings.TrimSpace(out.Type) == "" {
		out.Type = DefaultSchemeType
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

// DisplayName joins both names the way the keyword boost and the search blob see them.
func (s Scheme) DisplayName() string {
	return strings.TrimSpace(s.NameHI + " " + s.NameEN)
}

// NaturalKey identifies a scheme for deduplication.
func (s Scheme) NaturalKey() string {
	if key := strings.TrimSpace(s.NameHI); key != "" {
		return key
	}
	if key := strings.TrimSpace(s.NameEN); key != "" {
		return key
	}
	return s.ID
}

// BuildSearchBlob renders the name-weighted text used for embedding.
func (s Scheme) BuildSearchBlob() string {
	parts := make([]string, 0, 2)
	if name := s.DisplayName(); name != "" {
		names := make([]string, searchBlobNameRepeats)
		for i := range names {
			names[i] = name
		}
		parts = append(parts, strings.Join(names, " "))
	}

	rest := nonEmpty(
		s.Category,
		s.Department,
		s.DescriptionHI,
		s.DescriptionEN,
		s.Eligibility,
		s.Benefit,
		s.ApplyProcess,
	)
	if len(rest) > 0 {
		parts = append(parts, strings.Join(rest, searchBlobSeparator))
	}
	return strings.Join(parts, searchBlobSeparator)
}

// CombinedText is the text scored by the cross-encoder. The stored blob wins
// when present.
func (s Scheme) CombinedText() string {
	if strings.TrimSpace(s.SearchBlob) != "" {
		return s.SearchBlob
	}
	parts := nonEmpty(
		s.NameHI,
		s.NameEN,
		s.Category,
		s.Department,
		s.DescriptionHI,
		s.DescriptionEN,
		s.Eligibility,
		s.Benefit,
		s.ApplyProcess,
		strings.Join(s.Tags, " "),
	)
	return strings.Join(parts, " ")
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SchemePoint is one indexed scheme. ID is unrelated to the scheme's natural key.
type SchemePoint struct {
	ID     string
	Vector []float32
	Scheme Scheme
}

// ScoredScheme is a search candidate annotated with its scores.
type ScoredScheme struct {
	Scheme
	BaseScore    float64 `json:"_score"`
	KeywordBoost float64 `json:"_keyword_boost"`
	FinalScore   float64 `json:"_final_score"`
}

// TopScore is the score the mode selector looks at.
func (s ScoredScheme) TopScore() float64 {
	if s.FinalScore != 0 {
		return s.FinalScore
	}
	return s.BaseScore
}

// RebuildReport describes a finished index rebuild.
type RebuildReport struct {
	Collection string `json:"collection"`
	Alias      string `json:"alias"`
	Points     int    `json:"points"`
	Dimension  int    `json:"dimension"`
}

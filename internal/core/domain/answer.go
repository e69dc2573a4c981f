package domain

import "strings"

type AnswerMode string

const (
	ModeAuto    AnswerMode = "auto"
	ModeSchemes AnswerMode = "schemes"
	ModeDocs    AnswerMode = "docs"
)

// ParseAnswerMode maps client input to a mode; unknown values mean auto.
func ParseAnswerMode(raw string) AnswerMode {
	switch AnswerMode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeSchemes:
		return ModeSchemes
	case ModeDocs:
		return ModeDocs
	default:
		return ModeAuto
	}
}

type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AskRequest struct {
	Question string     `json:"question"`
	UILang   string     `json:"ui_lang"`
	Mode     AnswerMode `json:"mode"`
	History  []ChatTurn `json:"history"`
}

type OutcomeKind string

const (
	OutcomeOK       OutcomeKind = "ok"
	OutcomeFallback OutcomeKind = "fallback"
)

// Outcome tells callers whether the generator produced the text or a
// deterministic fallback did.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Reason string      `json:"reason,omitempty"`
}

func OK() Outcome { return Outcome{Kind: OutcomeOK} }

func Fallback(reason string) Outcome {
	return Outcome{Kind: OutcomeFallback, Reason: reason}
}

func (o Outcome) IsFallback() bool { return o.Kind == OutcomeFallback }

// AnswerSource references either a scheme or a document page.
type AnswerSource struct {
	NameHI     string  `json:"name_hi,omitempty"`
	NameEN     string  `json:"name_en,omitempty"`
	Department string  `json:"department,omitempty"`
	Category   string  `json:"category,omitempty"`
	ApplyLink  string  `json:"apply_link,omitempty"`
	Score      float64 `json:"score,omitempty"`
	SourceFile string  `json:"source_file,omitempty"`
	Page       int     `json:"page,omitempty"`
	URL        string  `json:"url,omitempty"`
}

type Answer struct {
	Text       string         `json:"text"`
	HTML       string         `json:"html"`
	Mode       AnswerMode     `json:"mode"`
	TargetLang string         `json:"target_lang"`
	Sources    []AnswerSource `json:"sources"`
	Outcome    Outcome        `json:"outcome"`
}

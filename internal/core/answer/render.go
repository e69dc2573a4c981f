// Package answer turns retrieval results into generator prompts and
// user-facing text.
package answer

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/kirillkom/panchayat-sahayika/internal/core/textnorm"
)

const (
	LangEnglish  = "en"
	LangHindi    = "hi"
	LangHinglish = "hinglish"
)

var boldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)

// RenderHTML escapes the text and turns **bold** spans into <strong> tags.
func RenderHTML(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	last := 0
	for _, m := range boldPattern.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:m[0]]))
		b.WriteString("<strong>")
		b.WriteString(html.EscapeString(text[m[2]:m[3]]))
		b.WriteString("</strong>")
		last = m[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}

// TargetLanguage picks the reply language: English for an English UI,
// otherwise Hindi for Devanagari questions and Hinglish for romanized ones.
func TargetLanguage(uiLang, question string) string {
	if strings.EqualFold(strings.TrimSpace(uiLang), LangEnglish) {
		return LangEnglish
	}
	if textnorm.ContainsDevanagari(question) {
		return LangHindi
	}
	return LangHinglish
}

func languageInstruction(target string) string {
	switch target {
	case LangEnglish:
		return "Write the final answer in simple English. Avoid Hindi script."
	case LangHindi:
		return "Write the final answer in very simple Hindi (Devanagari script) with everyday village-level words."
	default:
		return "Write the final answer in simple Hinglish (Roman Hindi with English letters). Do not use Devanagari characters."
	}
}

// Package textnorm canonicalizes free-form text for lexical comparison.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC, collapses whitespace runs, trims and lowercases.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	composed := norm.NFKC.String(text)
	return strings.ToLower(strings.Join(strings.Fields(composed), " "))
}

// Tokens splits the normalized text on whitespace.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

// RuneLen counts runes, so Devanagari words are measured by letters rather than bytes.
func RuneLen(s string) int {
	return len([]rune(s))
}

func ContainsDevanagari(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			return true
		}
	}
	return false
}

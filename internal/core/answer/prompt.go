package answer

import (
	"fmt"
	"strings"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

var (
	applyHints       = []string{"apply", "आवेदन", "फॉर्म", "form", "कैसे", "kaise", "कहाँ", "कहां", "kaha"}
	benefitHints     = []string{"लाभ", "benefit", "paisa", "₹", "kitna", "कितना", "राशि"}
	eligibilityHints = []string{"पात्रता", "eligibility", "eligible", "kaun", "कौन", "किसको", "kis ko", "kisko"}
)

// SchemesPrompt asks the generator to explain the matched schemes using only
// the given fields.
func SchemesPrompt(question, targetLang string, schemes []domain.ScoredScheme) string {
	var ctx strings.Builder
	for i, s := range schemes {
		if i > 0 {
			ctx.WriteString("---\n")
		}
		fmt.Fprintf(&ctx,
			"योजना: %s\nविवरण: %s\nपात्रता: %s\nलाभ: %s\nआवेदन प्रक्रिया: %s\nविभाग: %s\nश्रेणी: %s\nलिंक: %s\n",
			displayName(s.Scheme),
			firstNonEmpty(s.DescriptionHI, s.DescriptionEN),
			s.Eligibility,
			s.Benefit,
			s.ApplyProcess,
			s.Department,
			s.Category,
			s.ApplyLink,
		)
	}

	return fmt.Sprintf(`You are Panchayat Sahayika, a polite assistant for rural citizens of India.
Use only the scheme information below. Do not invent benefits, eligibility rules, amounts or links.
If a field is missing, say it is not available (उपलब्ध नहीं).
Wrap every scheme name in double asterisks, like **PM Awas Yojana**.
If several schemes match, explain the 2-3 most relevant ones.
End by suggesting help from the Gram Panchayat or CSC centre.

Focus:
%s

%s

Question:
%s

Schemes:
%s`, focusLines(question), languageInstruction(targetLang), question, ctx.String())
}

// DocsPrompt builds the documents-path prompt with recent conversation turns.
func DocsPrompt(question, targetLang string, history []domain.ChatTurn, chunks []domain.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString(`You are Panchayat Sahayika, an assistant for Gram Panchayats.
Answer only from the official Panchayati Raj documents in the context (acts, rules, guidelines, roles, schemes, training material).
Use simple words that a sarpanch or ward member understands. Avoid heavy legal language.
If the context does not contain the answer, say so clearly and do not guess.
Never mention document names, file names, page numbers or sources.
`)
	b.WriteString(languageInstruction(targetLang))
	b.WriteString("\n")

	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
	}

	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) != "" {
			texts = append(texts, c.Text)
		}
	}
	fmt.Fprintf(&b, "\nQuestion:\n%s\n\nContext:\n%s\n", question, strings.Join(texts, "\n\n---\n\n"))
	return b.String()
}

func focusLines(question string) string {
	q := strings.ToLower(question)
	var lines []string
	if containsAny(q, applyHints) {
		lines = append(lines, "- The user asks how to apply: explain the application process step by step with every required document.")
	}
	if containsAny(q, benefitHints) {
		lines = append(lines, "- The user asks about benefits or amounts: explain the benefit field completely, including every amount.")
	}
	if containsAny(q, eligibilityHints) {
		lines = append(lines, "- The user asks who is eligible: list every eligibility condition separately.")
	}
	if len(lines) == 0 {
		return "- Follow the general rules."
	}
	return strings.Join(lines, "\n")
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func displayName(s domain.Scheme) string {
	return firstNonEmpty(s.NameHI, s.NameEN)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

package answer

import (
	"fmt"
	"strings"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

const (
	notAvailable     = "उपलब्ध नहीं"
	maxExcerptRunes  = 400
	maxFallbackParts = 3
)

// SchemeCards renders schemes deterministically, without the generator.
func SchemeCards(schemes []domain.ScoredScheme) string {
	cards := make([]string, 0, len(schemes))
	for _, s := range schemes {
		cards = append(cards, schemeCard(s.Scheme))
	}
	return fmt.Sprintf("आपके सवाल के आधार पर %d योजनाएँ मिलीं:\n\n%s\n\n**English:** Listed top matches with eligibility, benefits and how to apply.",
		len(schemes), strings.Join(cards, "\n\n"))
}

func schemeCard(s domain.Scheme) string {
	name := displayName(s)
	if name == "" {
		name = "-"
	}
	lines := []string{
		fmt.Sprintf("• **%s**", name),
		fmt.Sprintf("  - पात्रता: %s", orNotAvailable(s.Eligibility)),
		fmt.Sprintf("  - लाभ: %s", orNotAvailable(s.Benefit)),
		fmt.Sprintf("  - आवेदन: %s", orNotAvailable(s.ApplyProcess)),
	}
	if strings.TrimSpace(s.ApplyLink) != "" {
		lines = append(lines, fmt.Sprintf("  - लिंक: %s", s.ApplyLink))
	}
	return strings.Join(lines, "\n")
}

func NoSchemesMessage() string {
	return "माफ़ कीजिए, इस सवाल से मिलती-जुलती कोई योजना नहीं मिली। कृपया अलग शब्दों में पूछें, या ज़िला/विभाग/श्रेणी लिखें।\n\n" +
		"**English:** No strong matches. Try different words or add location/department."
}

func NoDocumentsMessage() string {
	return "माफ़ कीजिए, इस सवाल के लिए दस्तावेज़ों में जानकारी उपलब्ध नहीं है।\n\n" +
		"**English:** The documents do not contain information for this question."
}

// DocumentExcerpts is the documents-path fallback: the top excerpts verbatim.
func DocumentExcerpts(chunks []domain.RetrievedChunk) string {
	parts := make([]string, 0, maxFallbackParts)
	for _, c := range chunks {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		parts = append(parts, "• "+truncateRunes(text, maxExcerptRunes))
		if len(parts) == maxFallbackParts {
			break
		}
	}
	if len(parts) == 0 {
		return NoDocumentsMessage()
	}
	return "दस्तावेज़ों से संबंधित अंश:\n\n" + strings.Join(parts, "\n\n")
}

func orNotAvailable(v string) string {
	if strings.TrimSpace(v) == "" {
		return notAvailable
	}
	return v
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}

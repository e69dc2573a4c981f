package answer

import (
	"strings"
	"testing"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

func TestRenderHTMLConvertsBoldAndEscapes(t *testing.T) {
	got := RenderHTML("Apply for **PM Awas <Gramin>** & **Ujjwala** now")
	want := "Apply for <strong>PM Awas &lt;Gramin&gt;</strong> &amp; <strong>Ujjwala</strong> now"
	if got != want {
		t.Fatalf("unexpected html:\n got: %s\nwant: %s", got, want)
	}
}

func TestRenderHTMLLeavesUnpairedMarkers(t *testing.T) {
	if got := RenderHTML("5 ** 3"); got != "5 ** 3" {
		t.Fatalf("unexpected html: %s", got)
	}
	if got := RenderHTML(""); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestTargetLanguage(t *testing.T) {
	cases := []struct {
		ui, question, want string
	}{
		{"en", "पेंशन कैसे मिलेगी", LangEnglish},
		{"hi", "पेंशन कैसे मिलेगी", LangHindi},
		{"hi", "pension kaise milegi", LangHinglish},
		{"", "pension kaise milegi", LangHinglish},
	}
	for _, tc := range cases {
		if got := TargetLanguage(tc.ui, tc.question); got != tc.want {
			t.Fatalf("TargetLanguage(%q, %q) = %q, want %q", tc.ui, tc.question, got, tc.want)
		}
	}
}

func TestSchemeCardsMarksMissingFields(t *testing.T) {
	text := SchemeCards([]domain.ScoredScheme{
		{Scheme: domain.Scheme{NameEN: "Ujjwala", Benefit: "free LPG", ApplyLink: "https://example.org"}},
	})
	if !strings.Contains(text, "**Ujjwala**") {
		t.Fatalf("expected bold scheme name, got %s", text)
	}
	if !strings.Contains(text, "पात्रता: "+notAvailable) {
		t.Fatalf("expected missing eligibility marker, got %s", text)
	}
	if !strings.Contains(text, "https://example.org") {
		t.Fatalf("expected apply link, got %s", text)
	}
}

func TestSchemesPromptIncludesFocusAndLanguage(t *testing.T) {
	prompt := SchemesPrompt("pension ke liye kaise apply kare", LangHinglish, []domain.ScoredScheme{
		{Scheme: domain.Scheme{NameHI: "वृद्धावस्था पेंशन", Eligibility: "60+"}},
	})
	if !strings.Contains(prompt, "how to apply") {
		t.Fatalf("expected apply focus in prompt")
	}
	if !strings.Contains(prompt, "Hinglish") {
		t.Fatalf("expected hinglish instruction in prompt")
	}
	if !strings.Contains(prompt, "वृद्धावस्था पेंशन") {
		t.Fatalf("expected scheme context in prompt")
	}
}

func TestDocsPromptIncludesHistoryAndContext(t *testing.T) {
	prompt := DocsPrompt("gram sabha kab hoti hai", LangHinglish,
		[]domain.ChatTurn{{Role: "user", Content: "namaste"}},
		[]domain.RetrievedChunk{{Text: "Gram sabha meets twice a year."}, {Text: "  "}},
	)
	if !strings.Contains(prompt, "user: namaste") {
		t.Fatalf("expected history in prompt")
	}
	if !strings.Contains(prompt, "Gram sabha meets twice a year.") {
		t.Fatalf("expected context in prompt")
	}
}

func TestDocumentExcerptsLimitsAndTruncates(t *testing.T) {
	long := strings.Repeat("क", maxExcerptRunes+10)
	text := DocumentExcerpts([]domain.RetrievedChunk{{Text: long}, {Text: "b"}, {Text: "c"}, {Text: "d"}})
	if strings.Contains(text, "• d") {
		t.Fatalf("expected at most %d excerpts", maxFallbackParts)
	}
	if strings.Contains(text, long) {
		t.Fatalf("expected long excerpt to be truncated")
	}
	if DocumentExcerpts(nil) != NoDocumentsMessage() {
		t.Fatalf("expected no-documents message for empty context")
	}
}

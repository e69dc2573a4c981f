package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/panchayat-sahayika/internal/core/answer"
	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/core/ports"
)

type AskOptions struct {
	SchemeLimit    int
	SchemeMinScore float64
	DocsTopK       int
	HistoryTurns   int
}

func DefaultAskOptions() AskOptions {
	return AskOptions{
		SchemeLimit:    5,
		SchemeMinScore: domain.DefaultMinScore,
		DocsTopK:       defaultDocsTopK,
		HistoryTurns:   4,
	}
}

// AskUseCase answers a question either from the scheme index or from policy
// documents. Generator failures never fail the request; they produce a
// deterministic answer marked as a fallback.
type AskUseCase struct {
	search    ports.SchemeSearcher
	docs      ports.DocumentRetriever
	generator ports.AnswerGenerator
	selector  ModeSelector
	opts      AskOptions
}

func NewAskUseCase(
	search ports.SchemeSearcher,
	docs ports.DocumentRetriever,
	generator ports.AnswerGenerator,
	selector ModeSelector,
	opts AskOptions,
) *AskUseCase {
	def := DefaultAskOptions()
	if opts.SchemeLimit <= 0 {
		opts.SchemeLimit = def.SchemeLimit
	}
	if opts.DocsTopK <= 0 {
		opts.DocsTopK = def.DocsTopK
	}
	if opts.HistoryTurns < 0 {
		opts.HistoryTurns = def.HistoryTurns
	}
	return &AskUseCase{
		search:    search,
		docs:      docs,
		generator: generator,
		selector:  selector,
		opts:      opts,
	}
}

func (uc *AskUseCase) Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("question is required"))
	}
	mode := domain.ParseAnswerMode(string(req.Mode))
	target := answer.TargetLanguage(req.UILang, question)

	var schemes []domain.ScoredScheme
	useSchemes := false
	if mode != domain.ModeDocs {
		page, err := uc.search.Search(ctx, domain.SchemeSearchRequest{
			Question: question,
			Limit:    uc.opts.SchemeLimit,
			Page:     1,
			MinScore: uc.opts.SchemeMinScore,
		})
		if err != nil {
			return nil, fmt.Errorf("search schemes: %w", err)
		}
		schemes = page.Items
		useSchemes = uc.selector.UseStructuredMode(question, schemes, mode)
	}

	var (
		result *domain.Answer
		err    error
	)
	if useSchemes {
		result = uc.answerFromSchemes(ctx, question, target, schemes)
	} else {
		result, err = uc.answerFromDocs(ctx, question, target, uc.recentHistory(req.History))
		if err != nil {
			return nil, err
		}
	}

	result.TargetLang = target
	result.HTML = answer.RenderHTML(result.Text)
	return result, nil
}

func (uc *AskUseCase) answerFromSchemes(ctx context.Context, question, target string, schemes []domain.ScoredScheme) *domain.Answer {
	result := &domain.Answer{
		Mode:    domain.ModeSchemes,
		Sources: schemeSources(schemes),
	}
	if len(schemes) == 0 {
		result.Text = answer.NoSchemesMessage()
		result.Outcome = domain.Fallback("no_matching_schemes")
		return result
	}

	text, outcome := uc.generate(ctx, answer.SchemesPrompt(question, target, schemes))
	if outcome.IsFallback() {
		text = answer.SchemeCards(schemes)
	}
	result.Text = text
	result.Outcome = outcome
	return result
}

func (uc *AskUseCase) answerFromDocs(ctx context.Context, question, target string, history []domain.ChatTurn) (*domain.Answer, error) {
	retrieval, err := uc.docs.Retrieve(ctx, question, uc.opts.DocsTopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve documents: %w", err)
	}

	result := &domain.Answer{
		Mode:    domain.ModeDocs,
		Sources: documentSources(retrieval.Sources),
	}
	if len(retrieval.Chunks) == 0 {
		result.Text = answer.NoDocumentsMessage()
		result.Outcome = domain.Fallback("no_document_context")
		return result, nil
	}

	text, outcome := uc.generate(ctx, answer.DocsPrompt(question, target, history, retrieval.Chunks))
	if outcome.IsFallback() {
		text = answer.DocumentExcerpts(retrieval.Chunks)
	}
	result.Text = text
	result.Outcome = outcome
	return result, nil
}

func (uc *AskUseCase) generate(ctx context.Context, prompt string) (string, domain.Outcome) {
	if uc.generator == nil {
		return "", domain.Fallback("generator_disabled")
	}
	text, err := uc.generator.GenerateFromPrompt(ctx, prompt)
	if err != nil {
		slog.Warn("answer_generation_failed", "error", err)
		return "", domain.Fallback("generator_failed: " + err.Error())
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.Fallback("generator_empty")
	}
	return text, domain.OK()
}

func (uc *AskUseCase) recentHistory(history []domain.ChatTurn) []domain.ChatTurn {
	if uc.opts.HistoryTurns == 0 || len(history) == 0 {
		return nil
	}
	if len(history) > uc.opts.HistoryTurns {
		history = history[len(history)-uc.opts.HistoryTurns:]
	}
	return history
}

func schemeSources(schemes []domain.ScoredScheme) []domain.AnswerSource {
	out := make([]domain.AnswerSource, 0, len(schemes))
	for _, s := range schemes {
		out = append(out, domain.AnswerSource{
			NameHI:     s.NameHI,
			NameEN:     s.NameEN,
			Department: s.Department,
			Category:   s.Category,
			ApplyLink:  s.ApplyLink,
			Score:      s.BaseScore,
		})
	}
	return out
}

func documentSources(sources []domain.DocumentSource) []domain.AnswerSource {
	out := make([]domain.AnswerSource, 0, len(sources))
	for _, s := range sources {
		out = append(out, domain.AnswerSource{
			SourceFile: s.SourceFile,
			Page:       s.Page,
			URL:        s.URL,
		})
	}
	return out
}

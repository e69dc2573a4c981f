// Package openai embeds text through any OpenAI-compatible embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/resilience"
)

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	executor   *resilience.Executor
}

func NewEmbedder(cfg Config, executor *resilience.Executor) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		executor:   executor,
	}
}

func (e *Embedder) Model() string {
	return string(e.model)
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	var resp openai.EmbeddingResponse
	err := e.executor.Execute(ctx, "openai.embed", func(callCtx context.Context) error {
		out, err := e.client.CreateEmbeddings(callCtx, req)
		if err != nil {
			return err
		}
		resp = out
		return nil
	}, classifyOpenAIError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("openai embed", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"openai embed",
			fmt.Errorf("embeddings/texts mismatch: %d/%d", len(resp.Data), len(texts)),
		)
	}
	// Data carries its own index; providers are not required to keep order.
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("openai embed: index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func classifyOpenAIError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	switch code := statusCode(err); {
	case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	case code > 0:
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if class := classifyOpenAIError(err); class.Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	if statusCode(err) == http.StatusUnauthorized {
		return domain.WrapError(domain.ErrUnauthorized, operation, err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}

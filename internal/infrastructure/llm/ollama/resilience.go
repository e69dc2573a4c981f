package ollama

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/resilience"
)

// HTTPStatusError is a non-2xx Ollama reply. Body carries Ollama's own
// message, e.g. "model \"bge-m3\" not found, try pulling it first".
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

var (
	retryTransient = resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	failPermanent  = resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	skipBreaker    = resilience.ErrorClassification{}
)

// classifyOllamaError: 408/429/5xx and network errors retry and count against
// the breaker; other statuses are caller mistakes and leave the breaker alone.
func classifyOllamaError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return skipBreaker
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return skipBreaker
	case resilience.IsCircuitOpen(err):
		return retryTransient
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if isRetryableHTTPStatus(statusErr.StatusCode) {
			return retryTransient
		}
		return skipBreaker
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return retryTransient
	}
	return failPermanent
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyOllamaError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

func isRetryableHTTPStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError && code != http.StatusNotImplemented
}

package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrRebuildInProgress):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers client errors with the error text. Server-side failures
// get a generic message and are logged with the request id.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status < http.StatusInternalServerError {
		writeErrorMessage(w, status, strings.TrimSpace(err.Error()))
		return
	}

	slog.Error("request_failed",
		"request_id", requestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
	message := "internal error"
	switch status {
	case http.StatusServiceUnavailable:
		message = "upstream temporarily unavailable"
		w.Header().Set("Retry-After", "5")
	case http.StatusGatewayTimeout:
		message = "request timed out"
	}
	writeErrorMessage(w, status, message)
}

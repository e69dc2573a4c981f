package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

func TestMapErrorToHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.WrapError(domain.ErrInvalidInput, "search", errors.New("question is required")), http.StatusBadRequest},
		{domain.WrapError(domain.ErrUnauthorized, "embed", errors.New("401")), http.StatusUnauthorized},
		{domain.WrapError(domain.ErrDocumentNotFound, "get", errors.New("id=x")), http.StatusNotFound},
		{fmt.Errorf("rebuild scheme index: %w", domain.ErrRebuildInProgress), http.StatusConflict},
		{fmt.Errorf("embed query: %w", domain.WrapError(domain.ErrTemporary, "ollama", errors.New("503"))), http.StatusServiceUnavailable},
		{fmt.Errorf("ask: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := mapErrorToHTTPStatus(tc.err); got != tc.want {
			t.Fatalf("mapErrorToHTTPStatus(%v): expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestSearchMapsInvalidInputTo400(t *testing.T) {
	search := &searchFake{err: domain.WrapError(domain.ErrInvalidInput, "search schemes", errors.New("question is required"))}
	handler := newTestHandler(testConfig(), Services{Search: search})

	req := httptest.NewRequest(http.MethodPost, "/v1/schemes/search", strings.NewReader(`{"question":""}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "question is required") {
		t.Fatalf("expected error detail in body, got %s", res.Body.String())
	}
}

func TestAskHidesInternalErrorDetails(t *testing.T) {
	handler := newTestHandler(testConfig(), Services{Ask: &askFake{err: errors.New("pq: password authentication failed")}})

	payload, _ := json.Marshal(map[string]any{"question": "pension"})
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	if strings.Contains(res.Body.String(), "password") {
		t.Fatalf("internal error leaked to client: %s", res.Body.String())
	}
}

func TestAskTemporaryFailureIs503(t *testing.T) {
	err := fmt.Errorf("search schemes: %w", domain.WrapError(domain.ErrTemporary, "qdrant search", errors.New("connection refused")))
	handler := newTestHandler(testConfig(), Services{Ask: &askFake{err: err}})

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"question":"awas"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestGetDocumentByIDReturns404ForNotFound(t *testing.T) {
	handler := newTestHandler(testConfig(), Services{
		Docs: docsFake{err: domain.WrapError(domain.ErrDocumentNotFound, "get", errors.New("id=missing"))},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestRejectsUnknownJSONFields(t *testing.T) {
	handler := newTestHandler(testConfig(), Services{Search: &searchFake{}})

	req := httptest.NewRequest(http.MethodPost, "/v1/schemes/search", strings.NewReader(`{"question":"x","lmit":3}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", res.Code)
	}
}

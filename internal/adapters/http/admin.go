package httpadapter

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// adminRebuildTimeout bounds a synchronous rebuild. It replaces the
// per-request timeout, which is sized for searches.
const adminRebuildTimeout = 30 * time.Minute

type reindexRequest struct {
	Async bool `json:"async"`
}

// requireAdmin guards admin endpoints with a bearer token. Without a
// configured key the endpoints are closed.
func (rt *Router) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rt.cfg.AdminAPIKey == "" {
			writeErrorMessage(w, http.StatusForbidden, "admin api is disabled")
			return
		}
		if !isAuthorizedBearerHeader(r.Header.Get("Authorization"), rt.cfg.AdminAPIKey) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func isAuthorizedBearerHeader(headerValue, expectedToken string) bool {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" || expectedToken == "" {
		return false
	}
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(headerValue, bearerPrefix))
	return subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) == 1
}

func (rt *Router) reindex(w http.ResponseWriter, r *http.Request) {
	var req reindexRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeErrorMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	if req.Async {
		if rt.svc.Reindex == nil {
			writeErrorMessage(w, http.StatusNotImplemented, "queued reindex is not configured")
			return
		}
		if err := rt.svc.Reindex.PublishSchemesReindex(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
		slog.Info("scheme_reindex_queued", "request_id", requestIDFromContext(r.Context()))
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
		return
	}

	if rt.svc.Indexer == nil {
		writeErrorMessage(w, http.StatusNotImplemented, "scheme indexer is not configured")
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), adminRebuildTimeout)
	defer cancel()
	// The server write deadline is sized for searches too.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Now().Add(adminRebuildTimeout))

	report, err := rt.svc.Indexer.RebuildFromSource(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

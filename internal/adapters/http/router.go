package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kirillkom/panchayat-sahayika/internal/config"
	"github.com/kirillkom/panchayat-sahayika/internal/core/ports"
	"github.com/kirillkom/panchayat-sahayika/internal/observability/metrics"
)

// Services are the inbound ports the router dispatches to. Diverse and
// Indexer may be nil when the deployment has no reranker or no admin surface.
type Services struct {
	Search  ports.SchemeSearcher
	Diverse ports.DiverseSearcher
	Ask     ports.AskService
	Indexer ports.SchemeIndexer
	Ingest  ports.DocumentIngestor
	Docs    ports.DocumentReader
	Reindex ReindexPublisher
}

// ReindexPublisher queues a rebuild for the worker instead of running it inline.
type ReindexPublisher interface {
	PublishSchemesReindex(ctx context.Context) error
}

// Health is reported verbatim by /healthz.
type Health struct {
	SchemesAlias   string `json:"schemes_alias"`
	DocsCollection string `json:"docs_collection"`
	EmbedModel     string `json:"embed_model"`
}

type Router struct {
	cfg      config.Config
	svc      Services
	health   Health
	metrics  *metrics.HTTPServerMetrics
	openapi  []byte
	limiter  *clientRateLimiter
}

type Option func(*Router)

func WithMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(rt *Router) { rt.metrics = m }
}

func WithHealth(h Health) Option {
	return func(rt *Router) { rt.health = h }
}

func NewRouter(cfg config.Config, svc Services, opts ...Option) (*Router, error) {
	doc, err := loadOpenAPI()
	if err != nil {
		return nil, err
	}
	rt := &Router{
		cfg:     cfg,
		svc:     svc,
		openapi: doc,
		health:  Health{SchemesAlias: cfg.SchemesAlias, DocsCollection: cfg.DocsCollection},
	}
	for _, opt := range opts {
		opt(rt)
	}
	if cfg.RateLimitRPS > 0 {
		rt.limiter = newClientRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	return rt, nil
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/schemes/search", rt.searchSchemes)
	api.HandleFunc("POST /v1/schemes/search/diverse", rt.searchSchemesDiverse)
	api.HandleFunc("POST /v1/ask", rt.ask)
	api.HandleFunc("POST /v1/admin/reindex", rt.requireAdmin(rt.reindex))
	api.HandleFunc("POST /v1/documents", rt.uploadDocument)
	api.HandleFunc("GET /v1/documents/{id}", rt.getDocumentByID)

	var guarded http.Handler = api
	if rt.cfg.RequestTimeout > 0 {
		guarded = timeoutMiddleware(guarded, rt.cfg.RequestTimeout)
	}
	if rt.cfg.MaxInFlight > 0 {
		guarded = backpressureMiddleware(guarded, rt.cfg.MaxInFlight, backpressureWait, rt.recordRejected)
	}
	if rt.limiter != nil {
		guarded = rateLimitMiddleware(guarded, rt.limiter, rt.recordRejected)
	}

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", rt.healthz)
	root.HandleFunc("GET /openapi.json", rt.openAPISpec)
	if rt.metrics != nil {
		root.Handle("GET /metrics", rt.metrics.Handler())
	}
	root.Handle("/v1/", guarded)

	var handler http.Handler = root
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) recordRejected(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected("api", reason)
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		Health
	}{Status: "ok", Health: rt.health})
}

func (rt *Router) openAPISpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rt.openapi)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

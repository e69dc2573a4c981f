package httpadapter

import (
	"net/http"
	"time"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

const defaultSearchLimit = 10

type searchSchemesRequest struct {
	Question string              `json:"question"`
	Limit    int                 `json:"limit"`
	Page     int                 `json:"page"`
	MinScore *float64            `json:"min_score"`
	Filter   domain.SchemeFilter `json:"filter"`
}

func (req searchSchemesRequest) toDomain() domain.SchemeSearchRequest {
	out := domain.SchemeSearchRequest{
		Question: req.Question,
		Limit:    req.Limit,
		Page:     req.Page,
		MinScore: domain.DefaultMinScore,
		Filter:   req.Filter,
	}
	if out.Limit == 0 {
		out.Limit = defaultSearchLimit
	}
	if req.MinScore != nil {
		out.MinScore = *req.MinScore
	}
	return out
}

func (rt *Router) searchSchemes(w http.ResponseWriter, r *http.Request) {
	var req searchSchemesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	start := time.Now()
	page, err := rt.svc.Search.Search(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordSearch("api", "search", page.Total, time.Since(start))
	}
	writeJSON(w, http.StatusOK, page)
}

type diverseSearchRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

func (rt *Router) searchSchemesDiverse(w http.ResponseWriter, r *http.Request) {
	if rt.svc.Diverse == nil {
		writeErrorMessage(w, http.StatusNotImplemented, "diverse search is not configured")
		return
	}
	var req diverseSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	start := time.Now()
	items, err := rt.svc.Diverse.SearchDiverse(r.Context(), req.Question, req.TopK)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordSearch("api", "diverse", len(items), time.Since(start))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

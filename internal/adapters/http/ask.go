package httpadapter

import (
	"net/http"
	"time"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	var req domain.AskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	start := time.Now()
	answer, err := rt.svc.Ask.Ask(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordAnswer("api", string(answer.Mode), string(answer.Outcome.Kind), answer.Outcome.Reason, time.Since(start))
	}
	writeJSON(w, http.StatusOK, answer)
}

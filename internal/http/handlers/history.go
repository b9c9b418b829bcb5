package handlers

import (
	"net/http"
	"strconv"

	"github.com/Purvav0511/cinefibo/internal/domain"
)

// ShotsHistory lists recent completed renders, newest first. Without a
// configured database the endpoint is unavailable rather than broken.
func (a *App) ShotsHistory(w http.ResponseWriter, r *http.Request) {
	if a.History == nil {
		a.error(w, http.StatusServiceUnavailable, "history_unavailable", "render history is not configured")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			a.error(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	records, err := a.History.Recent(r.Context(), limit)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	if records == nil {
		records = []domain.RenderRecord{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": records})
}

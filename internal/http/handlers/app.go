package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Purvav0511/cinefibo/internal/domain"
	"github.com/Purvav0511/cinefibo/internal/infra"
	"github.com/Purvav0511/cinefibo/internal/studio"
)

// HistoryReader lists recent renders for the history endpoint.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]domain.RenderRecord, error)
}

// App aggregates the handler dependencies. History is nil when no database
// is configured; the history endpoint reports that instead of failing.
type App struct {
	Studio  *studio.Service
	History HistoryReader
	Logger  *infra.Logger
}

func NewApp(svc *studio.Service, history HistoryReader, logger *infra.Logger) *App {
	return &App{Studio: svc, History: history, Logger: logger}
}

// Health reports liveness for load balancer probes.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]string{"error": slug, "message": message})
}

// renderError maps service failures onto transport statuses: invalid input
// is the caller's fault, upstream generation failures are a bad gateway, and
// everything else is internal.
func (a *App) renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "invalid_input", err.Error())
	case isUpstreamFailure(err):
		a.log().Error().Err(err).Str("path", r.URL.Path).Msg("upstream generation failure")
		a.error(w, http.StatusBadGateway, "upstream_failure", err.Error())
	default:
		a.log().Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func isUpstreamFailure(err error) bool {
	return errors.Is(err, domain.ErrSubmitFailed) ||
		errors.Is(err, domain.ErrPollFailed) ||
		errors.Is(err, domain.ErrGenerationFailed) ||
		errors.Is(err, domain.ErrNoImageResult) ||
		errors.Is(err, domain.ErrPollBudgetExceeded)
}

func (a *App) log() *infra.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	discard := zerolog.New(io.Discard)
	l := infra.Logger(discard)
	return &l
}

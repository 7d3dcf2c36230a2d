package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Dosada05/vr-score-keeper/services"
)

type HomeHandler struct {
	standingsService services.StandingsService
}

func NewHomeHandler(ss services.StandingsService) *HomeHandler {
	return &HomeHandler{standingsService: ss}
}

// SummaryHandler godoc
// @Summary      Home summary
// @Description  Standings of the active tournament(s) and of every earlier tournament.
// @Tags         standings
// @Produce      json
// @Success      200 {object} models.Summary
// @Security     BearerAuth
// @Router       / [get]
func (h *HomeHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := h.standingsService.Summary(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, summary)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Healthz godoc
// @Summary      Liveness and database check
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} map[string]string
// @Router       /healthz [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		serviceUnavailableResponse(w, r, "database unavailable")
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"status": "ok"})
}

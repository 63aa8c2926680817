package handlers

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/api/response"
	"github.com/ramonehamilton/mana-tomb/internal/auth"
	"github.com/ramonehamilton/mana-tomb/internal/charts"
	"github.com/ramonehamilton/mana-tomb/internal/decks"
)

// StatsHandler serves deck composition data and charts.
type StatsHandler struct {
	service *decks.Service
	logger  *zap.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(service *decks.Service, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{service: service, logger: orNop(logger)}
}

func (h *StatsHandler) load(w http.ResponseWriter, r *http.Request) (*decks.Stats, bool) {
	viewerID, _ := auth.UserIDFromContext(r.Context())
	stats, err := h.service.DeckComposition(r.Context(), viewerID,
		chi.URLParam(r, "deckID"),
		r.URL.Query().Get("board"),
	)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return nil, false
	}
	return stats, true
}

// GetStats returns the mana curve and color distribution of a deck board.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, ok := h.load(w, r)
	if !ok {
		return
	}
	response.Success(w, stats)
}

// GetCharts renders the mana curve and color distribution as an HTML page.
func (h *StatsHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	stats, ok := h.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := charts.RenderDeckStats(&buf, stats.DeckName, stats.Composition, charts.DefaultChartConfig()); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.HTML(w, buf.Bytes())
}

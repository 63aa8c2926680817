package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/api/response"
	"github.com/ramonehamilton/mana-tomb/internal/scryfall"
)

// scryfallPageSize is the number of cards Scryfall returns per search page.
const scryfallPageSize = 175

// CardSearcher searches the card database.
type CardSearcher interface {
	SearchCards(ctx context.Context, query string, page int) (*scryfall.SearchResult, error)
}

// CardHandler proxies card searches to Scryfall.
type CardHandler struct {
	searcher CardSearcher
	logger   *zap.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(searcher CardSearcher, logger *zap.Logger) *CardHandler {
	return &CardHandler{searcher: searcher, logger: orNop(logger)}
}

// SearchCards searches cards with Scryfall query syntax. A query with no
// matches yields an empty page.
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, errors.New("query parameter q is required"))
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			response.BadRequest(w, errors.New("page must be a positive integer"))
			return
		}
		page = p
	}

	result, err := h.searcher.SearchCards(r.Context(), query, page)
	if scryfall.IsNotFound(err) {
		response.Paginated(w, []scryfall.Card{}, page, scryfallPageSize, 0)
		return
	}
	if err != nil {
		h.logger.Warn("Card search failed", zap.String("query", query), zap.Error(err))
		response.BadGateway(w, errors.New("card search unavailable"))
		return
	}

	cards := result.Data
	if cards == nil {
		cards = []scryfall.Card{}
	}
	response.Paginated(w, cards, page, scryfallPageSize, result.TotalCards)
}

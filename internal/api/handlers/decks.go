package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/api/response"
	"github.com/ramonehamilton/mana-tomb/internal/auth"
	"github.com/ramonehamilton/mana-tomb/internal/decks"
	"github.com/ramonehamilton/mana-tomb/internal/storage/models"
)

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	service *decks.Service
	logger  *zap.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(service *decks.Service, logger *zap.Logger) *DeckHandler {
	return &DeckHandler{service: service, logger: orNop(logger)}
}

// CreateDeckRequest represents a request to create a deck.
type CreateDeckRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Format      string `json:"format"`
}

// UpdateDeckRequest represents a request to update a deck. Omitted fields
// are left unchanged.
type UpdateDeckRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Format      *string `json:"format,omitempty"`
}

// VisibilityRequest toggles whether a deck is public.
type VisibilityRequest struct {
	IsPublic *bool `json:"is_public"`
}

// ListDecks returns the current user's decks.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	list, err := h.service.ListDecks(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.Success(w, list)
}

// CreateDeck creates a new deck for the current user.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req CreateDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	deck, err := h.service.CreateDeck(r.Context(), userID, decks.DeckInput{
		Name:        req.Name,
		Description: req.Description,
		Format:      req.Format,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.Created(w, deck)
}

// GetDeck returns a deck with its cards. Anonymous viewers may read public decks.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	if deckID == "" {
		response.BadRequest(w, errDeckIDNeeded)
		return
	}

	viewerID, _ := auth.UserIDFromContext(r.Context())
	deck, err := h.service.GetDeck(r.Context(), viewerID, deckID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.Success(w, deck)
}

// UpdateDeck updates a deck's metadata.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	deckID := chi.URLParam(r, "deckID")

	var req UpdateDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	deck, err := h.service.UpdateDeck(r.Context(), userID, deckID, decks.DeckUpdate{
		Name:        req.Name,
		Description: req.Description,
		Format:      req.Format,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.Success(w, deck)
}

// DeleteDeck deletes a deck.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteDeck(r.Context(), userID, chi.URLParam(r, "deckID")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.Success(w, map[string]string{"message": "Deck deleted successfully"})
}

// SetVisibility marks a deck public or private.
func (h *DeckHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req VisibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.IsPublic == nil {
		response.BadRequest(w, &decks.ValidationError{Field: "is_public", Message: "is_public is required"})
		return
	}

	deck, err := h.service.SetVisibility(r.Context(), userID, chi.URLParam(r, "deckID"), *req.IsPublic)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.Success(w, deck)
}

// AddCardRequest adds one copy of a card to a deck. Either a full card or a
// card ID is required; an ID alone must resolve through the card cache or
// Scryfall.
type AddCardRequest struct {
	Card   *models.Card `json:"card,omitempty"`
	CardID string       `json:"card_id,omitempty"`
	Board  string       `json:"board,omitempty"`
}

// AddCard adds a card to a deck.
func (h *DeckHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	deckID := chi.URLParam(r, "deckID")

	var req AddCardRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	var (
		deck *models.Deck
		err  error
	)
	switch {
	case req.Card != nil && req.Card.ScryfallID != "":
		deck, err = h.service.AddCard(r.Context(), userID, deckID, *req.Card, req.Board)
	case req.CardID != "":
		deck, err = h.service.AddCardByID(r.Context(), userID, deckID, req.CardID, req.Board)
	default:
		response.BadRequest(w, &decks.ValidationError{Field: "card", Message: "card or card_id is required"})
		return
	}
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.Success(w, deck)
}

// RemoveCard removes one copy of a card from a deck board.
func (h *DeckHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	deck, err := h.service.RemoveCard(r.Context(), userID,
		chi.URLParam(r, "deckID"),
		chi.URLParam(r, "cardID"),
		r.URL.Query().Get("board"),
	)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.Success(w, deck)
}

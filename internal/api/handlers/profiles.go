package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/api/response"
	"github.com/ramonehamilton/mana-tomb/internal/decks"
)

// ProfileHandler serves public user profiles.
type ProfileHandler struct {
	service *decks.Service
	logger  *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service *decks.Service, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{service: service, logger: orNop(logger)}
}

// GetProfile returns a user's username and public decks.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		response.BadRequest(w, errors.New("username is required"))
		return
	}

	profile, err := h.service.Profile(r.Context(), username)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.Success(w, profile)
}

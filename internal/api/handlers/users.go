package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/api/response"
	"github.com/ramonehamilton/mana-tomb/internal/auth"
	"github.com/ramonehamilton/mana-tomb/internal/decks"
)

// UserHandler handles registration, login and the current user.
type UserHandler struct {
	service  *decks.Service
	sessions *auth.SessionManager
	logger   *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *decks.Service, sessions *auth.SessionManager, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: service, sessions: sessions, logger: orNop(logger)}
}

// RegisterRequest represents a request to create an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.Created(w, user)
}

// Login checks credentials and starts a session.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	if err := h.sessions.Login(w, r, user.ID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.Success(w, user)
}

// Logout ends the current session.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.Success(w, map[string]string{"message": "Successfully logged out"})
}

// Me returns the authenticated user.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.Success(w, user)
}

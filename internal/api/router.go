package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/mana-tomb/internal/api/handlers"
	"github.com/ramonehamilton/mana-tomb/internal/api/response"
	"github.com/ramonehamilton/mana-tomb/internal/auth"
	"github.com/ramonehamilton/mana-tomb/internal/metrics"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint (no JSON content-type requirement)
	s.router.Get("/ws", s.wsHub.ServeWs)

	userHandler := handlers.NewUserHandler(s.decks, s.sessions, s.logger)
	profileHandler := handlers.NewProfileHandler(s.decks, s.logger)
	deckHandler := handlers.NewDeckHandler(s.decks, s.logger)
	statsHandler := handlers.NewStatsHandler(s.decks, s.logger)
	cardHandler := handlers.NewCardHandler(s.cards, s.logger)

	requireUser := s.sessions.Middleware(func(w http.ResponseWriter, r *http.Request) {
		response.Unauthorized(w, auth.ErrNotAuthenticated)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.healthCheck)

		r.Post("/users/register", userHandler.Register)
		r.Post("/users/login", userHandler.Login)
		r.Get("/profiles/{username}", profileHandler.GetProfile)
		r.Get("/cards/search", cardHandler.SearchCards)

		// Public decks are readable without a session
		r.Group(func(r chi.Router) {
			r.Use(s.sessions.Optional)
			r.Get("/decks/{deckID}", deckHandler.GetDeck)
			r.Get("/decks/{deckID}/stats", statsHandler.GetStats)
			r.Get("/decks/{deckID}/charts", statsHandler.GetCharts)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Get("/users/me", userHandler.Me)
			r.Post("/users/logout", userHandler.Logout)

			r.Get("/decks", deckHandler.ListDecks)
			r.Post("/decks", deckHandler.CreateDeck)
			r.Put("/decks/{deckID}", deckHandler.UpdateDeck)
			r.Delete("/decks/{deckID}", deckHandler.DeleteDeck)
			r.Put("/decks/{deckID}/visibility", deckHandler.SetVisibility)
			r.Post("/decks/{deckID}/cards", deckHandler.AddCard)
			r.Delete("/decks/{deckID}/cards/{cardID}", deckHandler.RemoveCard)
		})
	})
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Clients   int            `json:"websocket_clients"`
	Metrics   *metrics.Stats `json:"metrics,omitempty"`
}

// healthCheck returns the server health status.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Clients:   s.wsHub.ClientCount(),
		Metrics:   s.metrics.Snapshot(),
	})
}

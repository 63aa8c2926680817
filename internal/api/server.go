package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/api/handlers"
	"github.com/ramonehamilton/mana-tomb/internal/api/response"
	"github.com/ramonehamilton/mana-tomb/internal/api/websocket"
	"github.com/ramonehamilton/mana-tomb/internal/auth"
	"github.com/ramonehamilton/mana-tomb/internal/config"
	"github.com/ramonehamilton/mana-tomb/internal/decks"
	"github.com/ramonehamilton/mana-tomb/internal/metrics"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	listener   net.Listener
	cfg        Config

	// WebSocket hub for deck update events
	wsHub *websocket.Hub

	decks    *decks.Service
	sessions *auth.SessionManager
	cards    handlers.CardSearcher
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Port           int
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000"},
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   60 * time.Second,
		RequestTimeout: 60 * time.Second,
	}
}

// ConfigFrom derives the server configuration from the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ReadTimeout:    cfg.ReadTimeout(),
		WriteTimeout:   cfg.WriteTimeout(),
		RequestTimeout: cfg.RequestTimeout(),
	}
}

// Dependencies are the services the API server exposes.
type Dependencies struct {
	Decks    *decks.Service
	Sessions *auth.SessionManager
	Cards    handlers.CardSearcher
	Hub      *websocket.Hub
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// NewServer creates a new API server. Decks and Sessions are required; a hub
// is created when none is given.
func NewServer(cfg Config, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}

	hub := deps.Hub
	if hub == nil {
		hub = websocket.NewHub(websocket.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			Identify:       identifyFunc(deps.Sessions),
			Logger:         deps.Logger.Named("websocket"),
		})
	}

	s := &Server{
		router:   chi.NewRouter(),
		cfg:      cfg,
		wsHub:    hub,
		decks:    deps.Decks,
		sessions: deps.Sessions,
		cards:    deps.Cards,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// identifyFunc resolves websocket clients to the session user, or anonymous.
func identifyFunc(sessions *auth.SessionManager) func(*http.Request) string {
	return func(r *http.Request) string {
		if sessions == nil {
			return ""
		}
		userID, err := sessions.UserID(r)
		if err != nil {
			return ""
		}
		return userID
	}
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	// Request ID for tracing
	s.router.Use(middleware.RequestID)

	// Real IP detection
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(requestLogger(s.logger, s.metrics))

	// Panic recovery
	s.router.Use(middleware.Recoverer)

	// Request timeout
	s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))

	// CORS configuration; credentials require explicit origins
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Content-Type enforcement for POST/PUT/PATCH only (not GET/DELETE/OPTIONS)
	s.router.Use(jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			// Skip if there's no content
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				response.UnsupportedMediaType(w, errors.New("Content-Type must be application/json"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request with zap and records its latency.
func requestLogger(logger *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.RecordRequest(elapsed, status)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", elapsed),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote", r.RemoteAddr),
			}
			if status >= http.StatusInternalServerError {
				logger.Warn("HTTP request", fields...)
				return
			}
			logger.Info("HTTP request", fields...)
		})
	}
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the WebSocket hub and the HTTP server in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	s.listener = listener

	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", zap.String("addr", listener.Addr().String()))
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server and the WebSocket hub.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()

	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the address the server is listening on, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.cfg.Port
}

// WebSocketHub returns the WebSocket hub.
func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}

// NewWebSocketObserver creates an observer that forwards dispatched events
// to this server's WebSocket clients.
func (s *Server) NewWebSocketObserver() *websocket.WebSocketObserver {
	return websocket.NewWebSocketObserver(s.wsHub)
}

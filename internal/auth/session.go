package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// SessionName is the cookie that carries the signed session.
const SessionName = "mana-tomb-session"

const userIDKey = "user_id"

var (
	// ErrNotAuthenticated is returned when a request carries no valid session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// SessionOptions configures the session cookie.
type SessionOptions struct {
	Secret   string
	Secure   bool
	SameSite string // lax, strict or none
	MaxAge   time.Duration
}

// SessionManager issues and reads cookie-backed sessions.
type SessionManager struct {
	store  *sessions.CookieStore
	logger *zap.Logger
}

// NewSessionManager creates a session manager signing cookies with opts.Secret.
func NewSessionManager(opts SessionOptions, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}

	store := sessions.NewCookieStore([]byte(opts.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: parseSameSite(opts.SameSite),
	}

	return &SessionManager{store: store, logger: logger}
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(value) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Login records userID in the session and writes the cookie.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, userID string) error {
	// A stale or forged cookie yields a fresh session alongside the error.
	session, _ := m.store.Get(r, SessionName)
	session.Values[userIDKey] = userID
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Logout expires the session cookie.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, SessionName)
	delete(session.Values, userIDKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// UserID returns the user stored in the request's session.
func (m *SessionManager) UserID(r *http.Request) (string, error) {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		m.logger.Debug("Rejected session cookie", zap.Error(err))
		return "", ErrNotAuthenticated
	}
	userID, ok := session.Values[userIDKey].(string)
	if !ok || userID == "" {
		return "", ErrNotAuthenticated
	}
	return userID, nil
}

type contextKey struct{}

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserIDFromContext returns the authenticated user ID set by Middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(contextKey{}).(string)
	return userID, ok && userID != ""
}

// Middleware rejects requests without a valid session. unauthorized writes
// the rejection so callers control the response format.
func (m *SessionManager) Middleware(unauthorized http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := m.UserID(r)
			if err != nil {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// Optional attaches the session user to the request context when one is
// present and lets anonymous requests through.
func (m *SessionManager) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := m.UserID(r); err == nil {
			r = r.WithContext(WithUserID(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

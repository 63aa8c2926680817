package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager() *SessionManager {
	return NewSessionManager(SessionOptions{
		Secret:   testSecret,
		SameSite: "lax",
		MaxAge:   time.Hour,
	}, nil)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
	assert.False(t, CheckPassword("not-a-hash", "correct horse"))
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteStrictMode, parseSameSite("Strict"))
	assert.Equal(t, http.SameSiteNoneMode, parseSameSite("none"))
	assert.Equal(t, http.SameSiteLaxMode, parseSameSite("lax"))
	assert.Equal(t, http.SameSiteLaxMode, parseSameSite(""))
}

// loginCookie logs userID in and returns the issued cookie.
func loginCookie(t *testing.T, m *SessionManager, userID string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, m.Login(rec, req, userID))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	return cookies[0]
}

func TestSessionManager_LoginRoundTrip(t *testing.T) {
	m := newTestManager()
	cookie := loginCookie(t, m, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookie)

	userID, err := m.UserID(req)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestSessionManager_NoCookie(t *testing.T) {
	m := newTestManager()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)

	_, err := m.UserID(req)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSessionManager_ForeignSecret(t *testing.T) {
	cookie := loginCookie(t, NewSessionManager(SessionOptions{
		Secret: strings.Repeat("x", 32),
		MaxAge: time.Hour,
	}, nil), "user-1")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookie)

	_, err := newTestManager().UserID(req)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSessionManager_Logout(t *testing.T) {
	m := newTestManager()
	cookie := loginCookie(t, m, "user-1")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	require.NoError(t, m.Logout(rec, req))

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, SessionName, cleared[0].Name)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestMiddleware(t *testing.T) {
	m := newTestManager()

	var seen string
	handler := m.Middleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("rejects anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("passes user id through context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(loginCookie(t, m, "user-7"))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "user-7", seen)
	})
}

func TestUserIDFromContext_Empty(t *testing.T) {
	_, ok := UserIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}

func TestOptional(t *testing.T) {
	m := newTestManager()

	handler := m.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())
		_, _ = w.Write([]byte(userID))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(loginCookie(t, m, "user-9"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "user-9", rec.Body.String())
}

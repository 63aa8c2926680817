package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mana-tomb/internal/auth"
	"github.com/ramonehamilton/mana-tomb/internal/decks"
	"github.com/ramonehamilton/mana-tomb/internal/storage"
	"github.com/ramonehamilton/mana-tomb/internal/storage/models"
)

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func newDeckService(t *testing.T) *decks.Service {
	t.Helper()
	return decks.NewService(storage.NewTestService(t))
}

func newSessions() *auth.SessionManager {
	return auth.NewSessionManager(auth.SessionOptions{Secret: "handlers-test-secret-0123456789ab"}, nil)
}

// newRequest builds a request with optional JSON body, authenticated user and
// chi URL parameters.
func newRequest(t *testing.T, method, target string, body any, userID string, params map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if userID != "" {
		ctx = auth.WithUserID(ctx, userID)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func registerUser(t *testing.T, svc *decks.Service, username string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), username, username+"@example.com", "password123")
	require.NoError(t, err)
	return user
}

func createTestDeck(t *testing.T, svc *decks.Service, ownerID string) *models.Deck {
	t.Helper()
	deck, err := svc.CreateDeck(context.Background(), ownerID, decks.DeckInput{Name: "Burn", Format: "modern"})
	require.NoError(t, err)
	return deck
}

var testBolt = models.Card{ScryfallID: "bolt", Name: "Lightning Bolt", CMC: 1, Colors: []string{"R"}}

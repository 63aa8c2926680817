package scryfall

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mana-tomb/internal/metrics"
)

func newTestClient(url string) *Client {
	client := NewClient(Options{BaseURL: url, RateLimit: 1000})
	client.initialBackoff = time.Millisecond
	return client
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Options{})

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultUserAgent, client.userAgent)
	assert.NotNil(t, client.rateLimiter)
	assert.NotNil(t, client.logger)
}

func TestNewClient_TrimsBaseURL(t *testing.T) {
	client := NewClient(Options{BaseURL: "http://mirror.local/"})
	assert.Equal(t, "http://mirror.local", client.baseURL)
}

func TestClient_GetCard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cards/test-id", r.URL.Path)
		assert.Equal(t, "Tester/2.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "test-id",
			"name": "Lightning Bolt",
			"mana_cost": "{R}",
			"cmc": 1.0,
			"type_line": "Instant",
			"colors": ["R"],
			"color_identity": ["R"]
		}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, UserAgent: "Tester/2.0", RateLimit: 1000})

	card, err := client.GetCard(context.Background(), "test-id")
	require.NoError(t, err)
	assert.Equal(t, "Lightning Bolt", card.Name)
	assert.Equal(t, 1.0, card.CMC)
	assert.Equal(t, []string{"R"}, card.Colors)
}

func TestClient_SearchCardsEscapesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cards/search", r.URL.Path)
		assert.Equal(t, `t:instant o:"deal 3" c>=r&x`, r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		_, _ = w.Write([]byte(`{"object":"list","total_cards":1,"has_more":false,"data":[{"id":"a","name":"Lightning Bolt","cmc":1}]}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).SearchCards(context.Background(), `t:instant o:"deal 3" c>=r&x`, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCards)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Lightning Bolt", result.Data[0].Name)
}

func TestClient_SearchCardsFirstPageOmitsParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("page"))
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).SearchCards(context.Background(), "bolt", 0)
	require.NoError(t, err)
}

func TestClient_NotFoundError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"object":"error","code":"not_found","status":404,"details":"No card found"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetCard(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"object":"error","code":"bad_request","status":400,"details":"All of your terms were ignored."}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).SearchCards(context.Background(), "zzz", 1)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "All of your terms were ignored.")
	assert.False(t, IsNotFound(err))
}

func TestClient_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"id":"x","name":"Opt"}`))
	}))
	defer server.Close()

	card, err := newTestClient(server.URL).GetCard(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "Opt", card.Name)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetCard(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(maxRetries+1), calls.Load())
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.initialBackoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetCard(ctx, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_RateLimiting(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"id":"test","name":"Test Card"}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, RateLimit: 10})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.GetCard(context.Background(), "test")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(3), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestClient_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cards/ok":
			_, _ = w.Write([]byte(`{"id": "ok", "name": "Opt"}`))
		case "/cards/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		}
	}))
	defer server.Close()

	m := metrics.New()
	client := NewClient(Options{BaseURL: server.URL, RateLimit: 1000, Metrics: m})
	ctx := context.Background()

	_, err := client.GetCard(ctx, "ok")
	require.NoError(t, err)
	_, err = client.GetCard(ctx, "missing")
	require.True(t, IsNotFound(err))
	_, err = client.GetCard(ctx, "broken")
	require.Error(t, err)

	stats := m.Snapshot()
	assert.Equal(t, uint64(3), stats.ScryfallCalls)
	assert.Equal(t, uint64(1), stats.ScryfallErrors, "a missing card is not a failure")
	assert.Equal(t, 3, stats.ScryfallLatency.Count)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 2*time.Second, retryAfter("2"))
	assert.Equal(t, maxBackoff, retryAfter("120"))
	assert.Equal(t, time.Duration(0), retryAfter(""))
	assert.Equal(t, time.Duration(0), retryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}

func TestCard_FaceFallbacks(t *testing.T) {
	card := &Card{
		CardFaces: []CardFace{
			{Name: "Front", Colors: []string{"G"}, ImageURIs: &ImageURIs{Normal: "front.jpg"}},
			{Name: "Back", Colors: []string{"G", "B"}},
		},
	}

	assert.Equal(t, []string{"G", "B"}, card.FaceColors())
	require.NotNil(t, card.Images())
	assert.Equal(t, "front.jpg", card.Images().Normal)

	plain := &Card{Colors: []string{"U"}}
	assert.Equal(t, []string{"U"}, plain.FaceColors())
	assert.Nil(t, plain.Images())
}

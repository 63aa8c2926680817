package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mana-tomb/internal/api/response"
	"github.com/ramonehamilton/mana-tomb/internal/scryfall"
)

type stubSearcher struct {
	query  string
	page   int
	result *scryfall.SearchResult
	err    error
}

func (s *stubSearcher) SearchCards(ctx context.Context, query string, page int) (*scryfall.SearchResult, error) {
	s.query = query
	s.page = page
	return s.result, s.err
}

func TestCardHandler_SearchCards(t *testing.T) {
	searcher := &stubSearcher{result: &scryfall.SearchResult{
		TotalCards: 2,
		Data: []scryfall.Card{
			{ID: "bolt", Name: "Lightning Bolt"},
			{ID: "helix", Name: "Lightning Helix"},
		},
	}}
	h := NewCardHandler(searcher, nil)

	rec := httptest.NewRecorder()
	h.SearchCards(rec, httptest.NewRequest(http.MethodGet, "/api/cards/search?q=lightning&page=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lightning", searcher.query)
	assert.Equal(t, 2, searcher.page)

	var body struct {
		Data       []scryfall.Card `json:"data"`
		Page       int             `json:"page"`
		TotalCount int             `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 2, body.TotalCount)
}

func TestCardHandler_NoMatches(t *testing.T) {
	h := NewCardHandler(&stubSearcher{err: &scryfall.NotFoundError{URL: "https://api.scryfall.com/cards/search"}}, nil)

	rec := httptest.NewRecorder()
	h.SearchCards(rec, httptest.NewRequest(http.MethodGet, "/api/cards/search?q=zzzz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body response.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []any{}, body.Data)
	assert.Zero(t, body.TotalCount)
}

func TestCardHandler_BadRequests(t *testing.T) {
	h := NewCardHandler(&stubSearcher{}, nil)

	for _, target := range []string{
		"/api/cards/search",
		"/api/cards/search?q=%20",
		"/api/cards/search?q=bolt&page=0",
		"/api/cards/search?q=bolt&page=abc",
	} {
		rec := httptest.NewRecorder()
		h.SearchCards(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestCardHandler_UpstreamFailure(t *testing.T) {
	h := NewCardHandler(&stubSearcher{err: errors.New("connection refused")}, nil)

	rec := httptest.NewRecorder()
	h.SearchCards(rec, httptest.NewRequest(http.MethodGet, "/api/cards/search?q=bolt", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

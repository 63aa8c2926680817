package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mana-tomb/internal/storage/models"
)

func TestDeckHandler_CreateAndList(t *testing.T) {
	svc := newDeckService(t)
	h := NewDeckHandler(svc, nil)
	alice := registerUser(t, svc, "alice")

	rec := httptest.NewRecorder()
	h.CreateDeck(rec, newRequest(t, http.MethodPost, "/api/decks", CreateDeckRequest{
		Name:   "Mono Red",
		Format: "pauper",
	}, alice.ID, nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Deck
	decodeData(t, rec, &created)
	assert.Equal(t, "Mono Red", created.Name)
	assert.Equal(t, alice.ID, created.UserID)

	rec = httptest.NewRecorder()
	h.ListDecks(rec, newRequest(t, http.MethodGet, "/api/decks", nil, alice.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.Deck
	decodeData(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestDeckHandler_CreateValidation(t *testing.T) {
	svc := newDeckService(t)
	h := NewDeckHandler(svc, nil)
	alice := registerUser(t, svc, "alice")

	rec := httptest.NewRecorder()
	h.CreateDeck(rec, newRequest(t, http.MethodPost, "/api/decks", CreateDeckRequest{Name: "  "}, alice.ID, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "deck name is required")
}

func TestDeckHandler_GetDeck(t *testing.T) {
	svc := newDeckService(t)
	h := NewDeckHandler(svc, nil)
	alice := registerUser(t, svc, "alice")
	bob := registerUser(t, svc, "bob")
	deck := createTestDeck(t, svc, alice.ID)
	params := map[string]string{"deckID": deck.ID}

	tests := []struct {
		name   string
		viewer string
		status int
	}{
		{"owner", alice.ID, http.StatusOK},
		{"other user", bob.ID, http.StatusNotFound},
		{"anonymous", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.GetDeck(rec, newRequest(t, http.MethodGet, "/api/decks/"+deck.ID, nil, tt.viewer, params))
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	t.Run("public deck is readable anonymously", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.SetVisibility(rec, newRequest(t, http.MethodPut, "/api/decks/"+deck.ID+"/visibility",
			map[string]bool{"is_public": true}, alice.ID, params))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.GetDeck(rec, newRequest(t, http.MethodGet, "/api/decks/"+deck.ID, nil, "", params))
		require.Equal(t, http.StatusOK, rec.Code)

		var got models.Deck
		decodeData(t, rec, &got)
		assert.True(t, got.IsPublic)
	})
}

func TestDeckHandler_UpdateAndDelete(t *testing.T) {
	svc := newDeckService(t)
	h := NewDeckHandler(svc, nil)
	alice := registerUser(t, svc, "alice")
	bob := registerUser(t, svc, "bob")
	deck := createTestDeck(t, svc, alice.ID)
	params := map[string]string{"deckID": deck.ID}

	name := "Boros Burn"
	rec := httptest.NewRecorder()
	h.UpdateDeck(rec, newRequest(t, http.MethodPut, "/api/decks/"+deck.ID, UpdateDeckRequest{Name: &name}, alice.ID, params))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Deck
	decodeData(t, rec, &updated)
	assert.Equal(t, "Boros Burn", updated.Name)
	assert.Equal(t, "modern", updated.Format)

	rec = httptest.NewRecorder()
	h.UpdateDeck(rec, newRequest(t, http.MethodPut, "/api/decks/"+deck.ID, UpdateDeckRequest{Name: &name}, bob.ID, params))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.DeleteDeck(rec, newRequest(t, http.MethodDelete, "/api/decks/"+deck.ID, nil, bob.ID, params))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.DeleteDeck(rec, newRequest(t, http.MethodDelete, "/api/decks/"+deck.ID, nil, alice.ID, params))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Deck deleted successfully")

	rec = httptest.NewRecorder()
	h.DeleteDeck(rec, newRequest(t, http.MethodDelete, "/api/decks/"+deck.ID, nil, alice.ID, params))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeckHandler_SetVisibilityRequiresField(t *testing.T) {
	svc := newDeckService(t)
	h := NewDeckHandler(svc, nil)
	alice := registerUser(t, svc, "alice")
	deck := createTestDeck(t, svc, alice.ID)

	rec := httptest.NewRecorder()
	h.SetVisibility(rec, newRequest(t, http.MethodPut, "/api/decks/"+deck.ID+"/visibility",
		map[string]string{}, alice.ID, map[string]string{"deckID": deck.ID}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeckHandler_Cards(t *testing.T) {
	svc := newDeckService(t)
	h := NewDeckHandler(svc, nil)
	alice := registerUser(t, svc, "alice")
	deck := createTestDeck(t, svc, alice.ID)
	params := map[string]string{"deckID": deck.ID}

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.AddCard(rec, newRequest(t, http.MethodPost, "/api/decks/"+deck.ID+"/cards",
			AddCardRequest{Card: &testBolt}, alice.ID, params))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.AddCard(rec, newRequest(t, http.MethodPost, "/api/decks/"+deck.ID+"/cards",
		AddCardRequest{CardID: "bolt", Board: models.BoardMaybe}, alice.ID, params))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Deck
	decodeData(t, rec, &got)
	require.Len(t, got.Mainboard, 1)
	assert.Equal(t, 2, got.Mainboard[0].Quantity)
	require.Len(t, got.Maybeboard, 1)
	assert.Equal(t, int64(3), got.Revision)

	removeParams := map[string]string{"deckID": deck.ID, "cardID": "bolt"}

	rec = httptest.NewRecorder()
	h.RemoveCard(rec, newRequest(t, http.MethodDelete, "/api/decks/"+deck.ID+"/cards/bolt?board=maybeboard",
		nil, alice.ID, removeParams))
	require.Equal(t, http.StatusOK, rec.Code)
	got = models.Deck{}
	decodeData(t, rec, &got)
	assert.Empty(t, got.Maybeboard)
	require.Len(t, got.Mainboard, 1)

	rec = httptest.NewRecorder()
	h.RemoveCard(rec, newRequest(t, http.MethodDelete, "/api/decks/"+deck.ID+"/cards/bolt?board=maybeboard",
		nil, alice.ID, removeParams))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.RemoveCard(rec, newRequest(t, http.MethodDelete, "/api/decks/"+deck.ID+"/cards/bolt?board=sideboard",
		nil, alice.ID, removeParams))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeckHandler_AddCardErrors(t *testing.T) {
	svc := newDeckService(t)
	h := NewDeckHandler(svc, nil)
	alice := registerUser(t, svc, "alice")
	deck := createTestDeck(t, svc, alice.ID)
	params := map[string]string{"deckID": deck.ID}

	tests := []struct {
		name   string
		body   AddCardRequest
		status int
	}{
		{"missing card", AddCardRequest{}, http.StatusBadRequest},
		{"unknown card id without fetcher", AddCardRequest{CardID: "nope"}, http.StatusNotFound},
		{"invalid board", AddCardRequest{Card: &testBolt, Board: "sideboard"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.AddCard(rec, newRequest(t, http.MethodPost, "/api/decks/"+deck.ID+"/cards", tt.body, alice.ID, params))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

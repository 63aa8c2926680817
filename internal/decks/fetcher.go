package decks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ramonehamilton/mana-tomb/internal/scryfall"
	"github.com/ramonehamilton/mana-tomb/internal/storage/models"
)

// ScryfallFetcher resolves uncached cards through the Scryfall API.
type ScryfallFetcher struct {
	Client *scryfall.Client
}

// FetchCard implements CardFetcher.
func (f *ScryfallFetcher) FetchCard(ctx context.Context, id string) (*models.Card, error) {
	card, err := f.Client.GetCard(ctx, id)
	if scryfall.IsNotFound(err) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, err
	}
	return CardFromScryfall(card)
}

// CardFromScryfall converts an API card to the cached card model.
func CardFromScryfall(card *scryfall.Card) (*models.Card, error) {
	result := &models.Card{
		ScryfallID:    card.ID,
		Name:          card.Name,
		ManaCost:      card.ManaCost,
		CMC:           card.CMC,
		TypeLine:      card.TypeLine,
		OracleText:    card.OracleText,
		Colors:        card.FaceColors(),
		ColorIdentity: card.ColorIdentity,
	}

	if images := card.Images(); images != nil {
		raw, err := json.Marshal(images)
		if err != nil {
			return nil, fmt.Errorf("failed to encode image uris: %w", err)
		}
		result.ImageURIs = raw
	}

	return result, nil
}

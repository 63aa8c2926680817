package decks

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/mana-tomb/internal/composition"
	"github.com/ramonehamilton/mana-tomb/internal/storage"
	"github.com/ramonehamilton/mana-tomb/internal/storage/models"
)

// Stats is the composition of one board of a deck.
type Stats struct {
	DeckID   string `json:"deckId"`
	DeckName string `json:"deckName"`
	Board    string `json:"board"`
	Revision int64  `json:"revision"`
	composition.Composition
}

// DeckComposition aggregates the mana curve and color distribution of a
// deck's board. Results are reused until the deck's cards change.
func (s *Service) DeckComposition(ctx context.Context, viewerID, deckID, board string) (*Stats, error) {
	board, err := normalizeBoard(board)
	if err != nil {
		return nil, err
	}

	deck, err := s.visibleDeck(ctx, viewerID, deckID)
	if err != nil {
		return nil, err
	}

	comp, revision, err := s.composition(ctx, deck, board)
	if err != nil {
		return nil, err
	}

	return &Stats{
		DeckID:      deck.ID,
		DeckName:    deck.Name,
		Board:       board,
		Revision:    revision,
		Composition: comp,
	}, nil
}

// composition returns the cached composition of deck's board. On a miss the
// revision and the cards are read in one transaction, so the result is cached
// under the revision its cards belong to even if the deck changed after deck
// was loaded.
func (s *Service) composition(ctx context.Context, deck *models.Deck, board string) (composition.Composition, int64, error) {
	key := deck.ID + "/" + board
	missed := false

	comp, revision, err := s.cache.GetOrCompute(key, deck.Revision, func() ([]composition.CardEntry, int64, error) {
		missed = true

		var (
			cards    []*models.DeckCard
			revision int64
		)
		err := s.store.InTx(ctx, func(repos storage.Repositories) error {
			current, err := repos.Decks.GetByID(ctx, deck.ID)
			if err != nil {
				return err
			}
			if current == nil {
				return ErrDeckNotFound
			}
			revision = current.Revision

			cards, err = repos.Decks.GetCards(ctx, deck.ID)
			return err
		})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load deck cards: %w", err)
		}
		return Entries(cards, board), revision, nil
	})
	if err != nil {
		return composition.Composition{}, 0, err
	}

	if missed {
		s.metrics.RecordCompositionMiss()
	} else {
		s.metrics.RecordCompositionHit()
	}
	return comp, revision, nil
}

// Entries converts the cards on board to composition entries.
func Entries(cards []*models.DeckCard, board string) []composition.CardEntry {
	entries := make([]composition.CardEntry, 0, len(cards))
	for _, card := range cards {
		if card.Board != board {
			continue
		}
		entries = append(entries, composition.CardEntry{
			Quantity:      card.Quantity,
			ConvertedCost: card.CMC,
			Colors:        card.Colors,
		})
	}
	return entries
}

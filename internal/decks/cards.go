package decks

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/events"
	"github.com/ramonehamilton/mana-tomb/internal/storage"
	"github.com/ramonehamilton/mana-tomb/internal/storage/models"
)

// normalizeBoard maps an empty board to main and rejects unknown boards.
func normalizeBoard(board string) (string, error) {
	board = strings.ToLower(strings.TrimSpace(board))
	if board == "" {
		return models.BoardMain, nil
	}
	if !models.ValidBoard(board) {
		return "", ErrInvalidBoard
	}
	return board, nil
}

// AddCard caches card and adds one copy of it to the deck's board. The
// board defaults to main.
func (s *Service) AddCard(ctx context.Context, ownerID, deckID string, card models.Card, board string) (*models.Deck, error) {
	board, err := normalizeBoard(board)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(card.ScryfallID) == "" {
		return nil, invalid("card.id", "card id is required")
	}
	if strings.TrimSpace(card.Name) == "" {
		return nil, invalid("card.name", "card name is required")
	}

	if _, err := s.ownedDeck(ctx, ownerID, deckID); err != nil {
		return nil, err
	}

	err = storage.RetryOnBusy(ctx, func() error {
		return s.store.InTx(ctx, func(repos storage.Repositories) error {
			if err := repos.Cards.Upsert(ctx, &card); err != nil {
				return err
			}
			return repos.Decks.AddCard(ctx, deckID, card.ScryfallID, board, s.now())
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add card to deck: %w", err)
	}

	s.logger.Debug("Added card to deck",
		zap.String("deck_id", deckID),
		zap.String("card_id", card.ScryfallID),
		zap.String("board", board))

	return s.afterCardChange(ctx, ownerID, deckID)
}

// AddCardByID adds a card by Scryfall ID, resolving it from the local cache
// or, failing that, the configured CardFetcher.
func (s *Service) AddCardByID(ctx context.Context, ownerID, deckID, cardID, board string) (*models.Deck, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, invalid("card_id", "card id is required")
	}

	card, err := s.store.CardRepo().GetByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cached card: %w", err)
	}
	if card == nil {
		if s.fetcher == nil {
			return nil, ErrCardNotFound
		}
		if card, err = s.fetcher.FetchCard(ctx, cardID); err != nil {
			return nil, err
		}
		if card == nil {
			return nil, ErrCardNotFound
		}
	}

	return s.AddCard(ctx, ownerID, deckID, *card, board)
}

// RemoveCard removes one copy of a card from the deck's board, deleting it
// from the board when the last copy goes.
func (s *Service) RemoveCard(ctx context.Context, ownerID, deckID, cardID, board string) (*models.Deck, error) {
	board, err := normalizeBoard(board)
	if err != nil {
		return nil, err
	}

	if _, err := s.ownedDeck(ctx, ownerID, deckID); err != nil {
		return nil, err
	}

	var removed bool
	err = storage.RetryOnBusy(ctx, func() error {
		return s.store.InTx(ctx, func(repos storage.Repositories) error {
			var err error
			removed, err = repos.Decks.RemoveCard(ctx, deckID, cardID, board, s.now())
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove card from deck: %w", err)
	}
	if !removed {
		return nil, ErrCardNotInDeck
	}

	return s.afterCardChange(ctx, ownerID, deckID)
}

// afterCardChange reloads the deck and publishes its new main board
// composition.
func (s *Service) afterCardChange(ctx context.Context, ownerID, deckID string) (*models.Deck, error) {
	deck, err := s.GetDeck(ctx, ownerID, deckID)
	if err != nil {
		return nil, err
	}

	comp, revision, err := s.composition(ctx, deck, models.BoardMain)
	if err != nil {
		s.logger.Warn("Failed to compute composition for deck update", zap.String("deck_id", deckID), zap.Error(err))
		return deck, nil
	}

	audience := deck.UserID
	if deck.IsPublic {
		audience = ""
	}
	s.publish(events.DeckUpdated, audience, events.DeckUpdatedEvent{
		DeckID:      deck.ID,
		Revision:    revision,
		Composition: comp,
	})

	return deck, nil
}

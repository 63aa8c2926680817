package decks

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/storage"
	"github.com/ramonehamilton/mana-tomb/internal/storage/models"
)

// DeckInput holds the fields supplied when creating a deck.
type DeckInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Format      string `json:"format"`
}

// DeckUpdate holds the fields to change on a deck. Nil fields are left as is.
type DeckUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Format      *string `json:"format"`
}

// CreateDeck creates an empty private deck owned by ownerID.
func (s *Service) CreateDeck(ctx context.Context, ownerID string, input DeckInput) (*models.Deck, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "deck name is required")
	}

	now := s.now()
	deck := &models.Deck{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Format:      strings.TrimSpace(input.Format),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := storage.RetryOnBusy(ctx, func() error {
		return s.store.DeckRepo().Create(ctx, deck)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}

	s.logger.Info("Created deck",
		zap.String("deck_id", deck.ID),
		zap.String("user_id", ownerID),
		zap.String("name", deck.Name))
	return deck, nil
}

// ListDecks returns the owner's decks, most recently updated first.
func (s *Service) ListDecks(ctx context.Context, ownerID string) ([]*models.Deck, error) {
	decks, err := s.store.DeckRepo().ListByUser(ctx, ownerID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

// GetDeck returns a deck with its cards grouped by board. Private decks are
// only visible to their owner.
func (s *Service) GetDeck(ctx context.Context, viewerID, deckID string) (*models.Deck, error) {
	deck, err := s.visibleDeck(ctx, viewerID, deckID)
	if err != nil {
		return nil, err
	}

	cards, err := s.store.DeckRepo().GetCards(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck cards: %w", err)
	}

	deck.Mainboard = make([]*models.DeckCard, 0)
	deck.Maybeboard = make([]*models.DeckCard, 0)
	for _, card := range cards {
		switch card.Board {
		case models.BoardMaybe:
			deck.Maybeboard = append(deck.Maybeboard, card)
		default:
			deck.Mainboard = append(deck.Mainboard, card)
		}
	}

	return deck, nil
}

// UpdateDeck changes a deck's name, description or format.
func (s *Service) UpdateDeck(ctx context.Context, ownerID, deckID string, update DeckUpdate) (*models.Deck, error) {
	deck, err := s.ownedDeck(ctx, ownerID, deckID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, invalid("name", "deck name is required")
		}
		deck.Name = name
	}
	if update.Description != nil {
		deck.Description = strings.TrimSpace(*update.Description)
	}
	if update.Format != nil {
		deck.Format = strings.TrimSpace(*update.Format)
	}
	deck.UpdatedAt = s.now()

	var found bool
	err = storage.RetryOnBusy(ctx, func() error {
		var err error
		found, err = s.store.DeckRepo().Update(ctx, deck)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update deck: %w", err)
	}
	if !found {
		return nil, ErrDeckNotFound
	}

	return deck, nil
}

// DeleteDeck removes a deck and its cards.
func (s *Service) DeleteDeck(ctx context.Context, ownerID, deckID string) error {
	if _, err := s.ownedDeck(ctx, ownerID, deckID); err != nil {
		return err
	}

	var found bool
	err := storage.RetryOnBusy(ctx, func() error {
		var err error
		found, err = s.store.DeckRepo().Delete(ctx, deckID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	if !found {
		return ErrDeckNotFound
	}

	s.cache.Invalidate(deckID + "/")
	s.logger.Info("Deleted deck", zap.String("deck_id", deckID), zap.String("user_id", ownerID))
	return nil
}

// SetVisibility makes a deck public or private.
func (s *Service) SetVisibility(ctx context.Context, ownerID, deckID string, public bool) (*models.Deck, error) {
	deck, err := s.ownedDeck(ctx, ownerID, deckID)
	if err != nil {
		return nil, err
	}

	deck.IsPublic = public
	deck.UpdatedAt = s.now()

	err = storage.RetryOnBusy(ctx, func() error {
		_, err := s.store.DeckRepo().SetVisibility(ctx, deckID, public, deck.UpdatedAt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set deck visibility: %w", err)
	}

	return deck, nil
}

// ownedDeck loads a deck the user is allowed to modify.
func (s *Service) ownedDeck(ctx context.Context, ownerID, deckID string) (*models.Deck, error) {
	deck, err := s.store.DeckRepo().GetByID(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}
	if deck.UserID != ownerID {
		return nil, ErrForbidden
	}
	return deck, nil
}

// visibleDeck loads a deck the viewer may read. Private decks of other
// users are reported as missing.
func (s *Service) visibleDeck(ctx context.Context, viewerID, deckID string) (*models.Deck, error) {
	deck, err := s.store.DeckRepo().GetByID(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	if deck == nil || (!deck.IsPublic && deck.UserID != viewerID) {
		return nil, ErrDeckNotFound
	}
	return deck, nil
}

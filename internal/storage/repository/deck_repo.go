package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/mana-tomb/internal/storage/models"
)

// DeckRepository handles database operations for decks and their cards.
type DeckRepository interface {
	// Create inserts a new deck.
	Create(ctx context.Context, deck *models.Deck) error

	// GetByID retrieves a deck without its cards. Returns nil when not found.
	GetByID(ctx context.Context, id string) (*models.Deck, error)

	// ListByUser retrieves a user's decks, most recently updated first.
	ListByUser(ctx context.Context, userID string, publicOnly bool) ([]*models.Deck, error)

	// Update saves name, description and format. Reports whether the deck exists.
	Update(ctx context.Context, deck *models.Deck) (bool, error)

	// Delete removes a deck and its cards. Reports whether the deck existed.
	Delete(ctx context.Context, id string) (bool, error)

	// SetVisibility marks a deck public or private. Reports whether the deck exists.
	SetVisibility(ctx context.Context, id string, public bool, at time.Time) (bool, error)

	// AddCard adds one copy of a cached card to a board.
	AddCard(ctx context.Context, deckID, cardID, board string, at time.Time) error

	// RemoveCard removes one copy of a card from a board, deleting the row
	// when the last copy goes. Reports whether the card was on the board.
	RemoveCard(ctx context.Context, deckID, cardID, board string, at time.Time) (bool, error)

	// GetCards retrieves every card in a deck across all boards.
	GetCards(ctx context.Context, deckID string) ([]*models.DeckCard, error)
}

type deckRepository struct {
	db Querier
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db Querier) DeckRepository {
	return &deckRepository{db: db}
}

const deckColumns = `id, user_id, name, description, format, is_public, revision, created_at, updated_at`

func scanDeck(scan func(dest ...any) error) (*models.Deck, error) {
	deck := &models.Deck{}
	err := scan(
		&deck.ID,
		&deck.UserID,
		&deck.Name,
		&deck.Description,
		&deck.Format,
		&deck.IsPublic,
		&deck.Revision,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return deck, nil
}

func (r *deckRepository) Create(ctx context.Context, deck *models.Deck) error {
	query := `
		INSERT INTO decks (
			id, user_id, name, description, format,
			is_public, revision, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		deck.ID,
		deck.UserID,
		deck.Name,
		deck.Description,
		deck.Format,
		deck.IsPublic,
		deck.Revision,
		deck.CreatedAt,
		deck.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}

	return nil
}

func (r *deckRepository) GetByID(ctx context.Context, id string) (*models.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE id = ?`

	deck, err := scanDeck(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck by id: %w", err)
	}

	return deck, nil
}

func (r *deckRepository) ListByUser(ctx context.Context, userID string, publicOnly bool) ([]*models.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE user_id = ?`
	if publicOnly {
		query += ` AND is_public = 1`
	}
	query += ` ORDER BY updated_at DESC, name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	decks := make([]*models.Deck, 0)
	for rows.Next() {
		deck, err := scanDeck(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, deck)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}

	return decks, nil
}

func (r *deckRepository) Update(ctx context.Context, deck *models.Deck) (bool, error) {
	query := `
		UPDATE decks
		SET name = ?, description = ?, format = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		deck.Name,
		deck.Description,
		deck.Format,
		deck.UpdatedAt,
		deck.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update deck: %w", err)
	}

	return affected(result)
}

func (r *deckRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete deck: %w", err)
	}

	return affected(result)
}

func (r *deckRepository) SetVisibility(ctx context.Context, id string, public bool, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE decks SET is_public = ?, updated_at = ? WHERE id = ?`,
		public, at, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update deck visibility: %w", err)
	}

	return affected(result)
}

func (r *deckRepository) AddCard(ctx context.Context, deckID, cardID, board string, at time.Time) error {
	query := `
		INSERT INTO deck_cards (deck_id, card_scryfall_id, board, quantity)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(deck_id, card_scryfall_id, board) DO UPDATE SET
			quantity = deck_cards.quantity + 1
	`

	if _, err := r.db.ExecContext(ctx, query, deckID, cardID, board); err != nil {
		return fmt.Errorf("failed to add card to deck: %w", err)
	}

	return r.bumpRevision(ctx, deckID, at)
}

func (r *deckRepository) RemoveCard(ctx context.Context, deckID, cardID, board string, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE deck_cards SET quantity = quantity - 1
		WHERE deck_id = ? AND card_scryfall_id = ? AND board = ? AND quantity > 1
	`, deckID, cardID, board)
	if err != nil {
		return false, fmt.Errorf("failed to decrement card quantity: %w", err)
	}

	changed, err := affected(result)
	if err != nil {
		return false, err
	}

	if !changed {
		result, err = r.db.ExecContext(ctx,
			`DELETE FROM deck_cards WHERE deck_id = ? AND card_scryfall_id = ? AND board = ?`,
			deckID, cardID, board,
		)
		if err != nil {
			return false, fmt.Errorf("failed to remove card from deck: %w", err)
		}
		if changed, err = affected(result); err != nil || !changed {
			return false, err
		}
	}

	return true, r.bumpRevision(ctx, deckID, at)
}

func (r *deckRepository) GetCards(ctx context.Context, deckID string) ([]*models.DeckCard, error) {
	query := `
		SELECT c.scryfall_id, c.name, c.image_uris, c.mana_cost, c.cmc,
		       c.type_line, c.oracle_text, c.colors, c.color_identity,
		       dc.board, dc.quantity
		FROM deck_cards dc
		JOIN cards c ON c.scryfall_id = dc.card_scryfall_id
		WHERE dc.deck_id = ?
		ORDER BY dc.board, c.cmc, c.name
	`

	rows, err := r.db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck cards: %w", err)
	}
	defer rows.Close()

	cards := make([]*models.DeckCard, 0)
	for rows.Next() {
		dc := &models.DeckCard{}
		card, err := scanCard(rows.Scan, &dc.Board, &dc.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck card: %w", err)
		}
		dc.Card = *card
		cards = append(cards, dc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deck cards: %w", err)
	}

	return cards, nil
}

// bumpRevision marks the deck's card list as changed.
func (r *deckRepository) bumpRevision(ctx context.Context, deckID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE decks SET revision = revision + 1, updated_at = ? WHERE id = ?`,
		at, deckID,
	)
	if err != nil {
		return fmt.Errorf("failed to bump deck revision: %w", err)
	}
	return nil
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

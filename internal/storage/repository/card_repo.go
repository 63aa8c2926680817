package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ramonehamilton/mana-tomb/internal/storage/models"
)

// CardRepository handles the local cache of Scryfall cards.
type CardRepository interface {
	// Upsert caches a card. An already cached card is left unchanged.
	Upsert(ctx context.Context, card *models.Card) error

	// GetByID retrieves a cached card. Returns nil when not found.
	GetByID(ctx context.Context, scryfallID string) (*models.Card, error)
}

type cardRepository struct {
	db Querier
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db Querier) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Upsert(ctx context.Context, card *models.Card) error {
	colors, err := encodeStrings(card.Colors)
	if err != nil {
		return err
	}
	identity, err := encodeStrings(card.ColorIdentity)
	if err != nil {
		return err
	}

	var imageURIs sql.NullString
	if len(card.ImageURIs) > 0 {
		imageURIs = sql.NullString{String: string(card.ImageURIs), Valid: true}
	}

	query := `
		INSERT INTO cards (
			scryfall_id, name, image_uris, mana_cost, cmc,
			type_line, oracle_text, colors, color_identity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scryfall_id) DO NOTHING
	`

	_, err = r.db.ExecContext(ctx, query,
		card.ScryfallID,
		card.Name,
		imageURIs,
		card.ManaCost,
		card.CMC,
		card.TypeLine,
		card.OracleText,
		colors,
		identity,
	)
	if err != nil {
		return fmt.Errorf("failed to cache card: %w", err)
	}

	return nil
}

func (r *cardRepository) GetByID(ctx context.Context, scryfallID string) (*models.Card, error) {
	query := `
		SELECT scryfall_id, name, image_uris, mana_cost, cmc,
		       type_line, oracle_text, colors, color_identity
		FROM cards
		WHERE scryfall_id = ?
	`

	card, err := scanCard(r.db.QueryRowContext(ctx, query, scryfallID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

// scanCard reads the nine card columns in their canonical order followed by
// any extra destinations.
func scanCard(scan func(dest ...any) error, extra ...any) (*models.Card, error) {
	card := &models.Card{}
	var imageURIs sql.NullString
	var colors, identity string

	dest := []any{
		&card.ScryfallID,
		&card.Name,
		&imageURIs,
		&card.ManaCost,
		&card.CMC,
		&card.TypeLine,
		&card.OracleText,
		&colors,
		&identity,
	}
	if err := scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	var err error
	if card.Colors, err = decodeStrings(colors); err != nil {
		return nil, err
	}
	if card.ColorIdentity, err = decodeStrings(identity); err != nil {
		return nil, err
	}
	if imageURIs.Valid && imageURIs.String != "" {
		card.ImageURIs = []byte(imageURIs.String)
	}
	return card, nil
}

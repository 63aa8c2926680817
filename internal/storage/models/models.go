package models

import (
	"encoding/json"
	"time"
)

// Boards a card can be placed on within a deck.
const (
	BoardMain  = "main"
	BoardMaybe = "maybeboard"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Card is a Scryfall card cached locally when it is added to a deck.
type Card struct {
	ScryfallID    string          `json:"id"`
	Name          string          `json:"name"`
	ImageURIs     json.RawMessage `json:"image_uris,omitempty"`
	ManaCost      string          `json:"mana_cost"`
	CMC           float64         `json:"cmc"`
	TypeLine      string          `json:"type_line"`
	OracleText    string          `json:"oracle_text"`
	Colors        []string        `json:"colors"`
	ColorIdentity []string        `json:"color_identity"`
}

// Deck is a user's deck list. Mainboard and Maybeboard are only populated
// when a single deck is loaded with its cards.
type Deck struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Format      string      `json:"format"`
	IsPublic    bool        `json:"is_public"`
	Revision    int64       `json:"revision"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Mainboard   []*DeckCard `json:"mainboard,omitempty"`
	Maybeboard  []*DeckCard `json:"maybeboard,omitempty"`
}

// DeckCard is a card in one board of a deck along with its quantity.
type DeckCard struct {
	Card
	Board    string `json:"board"`
	Quantity int    `json:"quantity"`
}

// Profile is the public view of a user.
type Profile struct {
	Username    string  `json:"username"`
	PublicDecks []*Deck `json:"public_decks"`
}

// ValidBoard reports whether board names a known board.
func ValidBoard(board string) bool {
	return board == BoardMain || board == BoardMaybe
}

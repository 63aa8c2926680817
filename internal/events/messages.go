package events

import (
	"github.com/ramonehamilton/mana-tomb/internal/composition"
)

// Event types.
const (
	// DeckUpdated is sent after a deck's cards change.
	DeckUpdated = "deck:updated"
)

// DeckUpdatedEvent is the payload for deck:updated events. Composition
// describes the deck's main board.
type DeckUpdatedEvent struct {
	DeckID      string                  `json:"deckId"`
	Revision    int64                   `json:"revision"`
	Composition composition.Composition `json:"composition"`
}

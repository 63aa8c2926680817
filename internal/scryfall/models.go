package scryfall

import (
	"errors"
	"fmt"
)

// Card represents a Magic card from Scryfall.
type Card struct {
	ID            string     `json:"id"`
	OracleID      string     `json:"oracle_id,omitempty"`
	Name          string     `json:"name"`
	Layout        string     `json:"layout,omitempty"`
	ImageURIs     *ImageURIs `json:"image_uris,omitempty"`
	ManaCost      string     `json:"mana_cost,omitempty"`
	CMC           float64    `json:"cmc"`
	TypeLine      string     `json:"type_line"`
	OracleText    string     `json:"oracle_text,omitempty"`
	Colors        []string   `json:"colors,omitempty"`
	ColorIdentity []string   `json:"color_identity"`
	SetCode       string     `json:"set,omitempty"`
	Rarity        string     `json:"rarity,omitempty"`

	// Card faces (for DFCs, MDFCs, split cards)
	CardFaces []CardFace `json:"card_faces,omitempty"`
}

// CardFace represents one face of a multi-faced card.
type CardFace struct {
	Name       string     `json:"name"`
	ManaCost   string     `json:"mana_cost,omitempty"`
	TypeLine   string     `json:"type_line"`
	OracleText string     `json:"oracle_text,omitempty"`
	Colors     []string   `json:"colors,omitempty"`
	ImageURIs  *ImageURIs `json:"image_uris,omitempty"`
}

// ImageURIs contains URLs for card images in various sizes.
type ImageURIs struct {
	Small      string `json:"small,omitempty"`
	Normal     string `json:"normal,omitempty"`
	Large      string `json:"large,omitempty"`
	PNG        string `json:"png,omitempty"`
	ArtCrop    string `json:"art_crop,omitempty"`
	BorderCrop string `json:"border_crop,omitempty"`
}

// FaceColors returns the card's colors, falling back to the union of its
// faces' colors for double-faced cards that only carry colors per face.
func (c *Card) FaceColors() []string {
	if len(c.Colors) > 0 || len(c.CardFaces) == 0 {
		return c.Colors
	}

	seen := make(map[string]bool)
	var colors []string
	for _, face := range c.CardFaces {
		for _, color := range face.Colors {
			if !seen[color] {
				seen[color] = true
				colors = append(colors, color)
			}
		}
	}
	return colors
}

// Images returns the card's image URIs, falling back to the front face.
func (c *Card) Images() *ImageURIs {
	if c.ImageURIs != nil {
		return c.ImageURIs
	}
	for _, face := range c.CardFaces {
		if face.ImageURIs != nil {
			return face.ImageURIs
		}
	}
	return nil
}

// SearchResult represents search results from Scryfall.
type SearchResult struct {
	Object     string   `json:"object"`
	TotalCards int      `json:"total_cards"`
	HasMore    bool     `json:"has_more"`
	NextPage   string   `json:"next_page,omitempty"`
	Data       []Card   `json:"data"`
	Warnings   []string `json:"warnings,omitempty"`
}

// APIError represents an error response from the Scryfall API.
type APIError struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Type     string   `json:"type,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Details)
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Code)
}

// NotFoundError represents a 404 error from the API.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// IsNotFound returns true if the error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Package composition derives chart-ready views of a deck board: a mana curve
// histogram and a color distribution.
package composition

import (
	"math"
	"strconv"
)

// Color symbols in WUBRG order.
const (
	ColorWhite     = "W"
	ColorBlue      = "U"
	ColorBlack     = "B"
	ColorRed       = "R"
	ColorGreen     = "G"
	ColorColorless = "Colorless"
)

// CurveBuckets is the number of mana curve buckets. The last bucket collects
// every card with a mana value of seven or more.
const CurveBuckets = 8

// colorKeys lists the distribution keys in output order.
var colorKeys = [...]string{ColorWhite, ColorBlue, ColorBlack, ColorRed, ColorGreen, ColorColorless}

// ColorKeys returns the distribution keys in output order.
func ColorKeys() []string {
	keys := colorKeys
	return keys[:]
}

// CardEntry is one distinct card in a board.
type CardEntry struct {
	Quantity      int      `json:"quantity"`
	ConvertedCost float64  `json:"cmc"`
	Colors        []string `json:"colors"`
}

// ManaCurveBucket is one bar of the mana curve.
type ManaCurveBucket struct {
	Label string `json:"cmc"`
	Count int    `json:"count"`
}

// ColorSlice is one slice of the color distribution.
type ColorSlice struct {
	Color string `json:"name"`
	Count int    `json:"value"`
}

// Composition holds both derived views of a board.
type Composition struct {
	ManaCurve         [CurveBuckets]ManaCurveBucket `json:"manaCurve"`
	ColorDistribution []ColorSlice                  `json:"colorDistribution"`
}

// TotalCards returns the sum of all mana curve counts.
func (c Composition) TotalCards() int {
	total := 0
	for _, b := range c.ManaCurve {
		total += b.Count
	}
	return total
}

// colorIndex maps a color symbol to its accumulator slot.
func colorIndex(symbol string) (int, bool) {
	switch symbol {
	case ColorWhite:
		return 0, true
	case ColorBlue:
		return 1, true
	case ColorBlack:
		return 2, true
	case ColorRed:
		return 3, true
	case ColorGreen:
		return 4, true
	}
	return 0, false
}

// curveIndex returns the bucket for a mana value, or false when the value
// cannot be placed on the curve.
func curveIndex(cost float64) (int, bool) {
	if math.IsNaN(cost) {
		return 0, false
	}
	floor := math.Floor(cost)
	if floor < 0 {
		return 0, false
	}
	if floor >= CurveBuckets-1 {
		return CurveBuckets - 1, true
	}
	return int(floor), true
}

// Aggregate computes the mana curve and color distribution of entries.
//
// Quantities are summed as given. A multicolored card adds its full quantity
// to every color it lists; a card without colors counts as Colorless.
// Unknown color symbols are ignored.
func Aggregate(entries []CardEntry) Composition {
	var curve [CurveBuckets]int
	var colors [len(colorKeys)]int
	colorless := len(colorKeys) - 1

	for _, e := range entries {
		if idx, ok := curveIndex(e.ConvertedCost); ok {
			curve[idx] += e.Quantity
		}

		if len(e.Colors) == 0 {
			colors[colorless] += e.Quantity
			continue
		}
		for _, symbol := range e.Colors {
			if idx, ok := colorIndex(symbol); ok {
				colors[idx] += e.Quantity
			}
		}
	}

	var result Composition
	for i, count := range curve {
		label := strconv.Itoa(i)
		if i == CurveBuckets-1 {
			label += "+"
		}
		result.ManaCurve[i] = ManaCurveBucket{Label: label, Count: count}
	}

	result.ColorDistribution = make([]ColorSlice, 0, len(colors))
	for i, count := range colors {
		if count == 0 {
			continue
		}
		result.ColorDistribution = append(result.ColorDistribution, ColorSlice{
			Color: colorKeys[i],
			Count: count,
		})
	}

	return result
}

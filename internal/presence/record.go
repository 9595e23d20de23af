// Package presence holds the server-side presence registry and the identity
// allocator that seeds new records.
package presence

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a fixed visual attribute: a hue paired with constant saturation and lightness.
type Color struct {
	Hue        float64
	Saturation float64
	Lightness  float64
	Hex        string
}

// NewColor builds a Color from HSL components. Hue is in degrees, saturation and lightness in [0,1].
func NewColor(hue, saturation, lightness float64) Color {
	return Color{
		Hue:        hue,
		Saturation: saturation,
		Lightness:  lightness,
		Hex:        colorful.Hsl(hue, saturation, lightness).Clamped().Hex(),
	}
}

// Position is a normalized 2-D coordinate.
type Position struct {
	X float64
	Y float64
}

// Record is the authoritative state of one live connection.
type Record struct {
	UserID       string
	ConnectionID string
	Color        Color
	Position     Position
	Intensity    float64
}

// Clamp maps any float into [0,1]. Non-finite values become 0.
func Clamp(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

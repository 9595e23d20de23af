package presence

import (
	"math/rand/v2"

	"github.com/vovakirdan/pulse-server/internal/utils"
)

const (
	// DefaultMargin keeps positions away from the edges of the unit square.
	DefaultMargin = 0.1
	// DefaultSaturation and DefaultLightness are tuned for visibility on a dark background.
	DefaultSaturation = 0.85
	DefaultLightness  = 0.6
)

// Source supplies uniform floats in [0,1).
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// AllocatorOptions configures an Allocator. Zero values fall back to defaults.
type AllocatorOptions struct {
	Margin     float64
	Saturation float64
	Lightness  float64
	Source     Source
	NewID      func() string
}

// Allocator mints identities and initial attributes for new connections.
type Allocator struct {
	margin     float64
	saturation float64
	lightness  float64
	rnd        Source
	newID      func() string
}

// NewAllocator constructs an allocator from options.
func NewAllocator(opts AllocatorOptions) *Allocator {
	a := &Allocator{
		margin:     opts.Margin,
		saturation: opts.Saturation,
		lightness:  opts.Lightness,
		rnd:        opts.Source,
		newID:      opts.NewID,
	}
	if a.margin <= 0 || a.margin >= 0.5 {
		a.margin = DefaultMargin
	}
	if a.saturation <= 0 {
		a.saturation = DefaultSaturation
	}
	if a.lightness <= 0 {
		a.lightness = DefaultLightness
	}
	if a.rnd == nil {
		a.rnd = globalSource{}
	}
	if a.newID == nil {
		a.newID = utils.NewToken
	}
	return a
}

// Allocate returns a fresh user id, colour and position. The id is not
// checked against live records.
func (a *Allocator) Allocate() (string, Color, Position) {
	hue := a.rnd.Float64() * 360
	span := 1 - 2*a.margin
	pos := Position{
		X: a.margin + a.rnd.Float64()*span,
		Y: a.margin + a.rnd.Float64()*span,
	}
	return a.newID(), NewColor(hue, a.saturation, a.lightness), pos
}

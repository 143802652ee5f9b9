package rsid

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Golden-ratio hue rotation parameters.
const (
	GoldenRatioConjugate = 0.618033988749895
	PaletteSaturation    = 0.5
	PaletteValue         = 0.95
)

// ColorAt returns the display colour for the i-th distinct RSID as an RGB
// hex string. Hue advances by the golden-ratio conjugate so that any prefix
// of the sequence is well spread around the colour wheel.
func ColorAt(i int) string {
	_, hue := math.Modf(float64(i) * GoldenRatioConjugate)
	return colorful.Hsv(hue*360, PaletteSaturation, PaletteValue).Hex()
}

// Palette assigns colours lazily in first-seen order.
type Palette struct {
	colors map[string]string
	order  []string
}

// NewPalette returns an empty palette.
func NewPalette() *Palette {
	return &Palette{colors: make(map[string]string)}
}

// Color returns the colour for id, assigning the next one on first sight.
func (p *Palette) Color(id string) string {
	if c, ok := p.colors[id]; ok {
		return c
	}
	c := ColorAt(len(p.order))
	p.colors[id] = c
	p.order = append(p.order, id)
	return c
}

// Map returns a copy of the id to colour mapping.
func (p *Palette) Map() map[string]string {
	out := make(map[string]string, len(p.colors))
	for k, v := range p.colors {
		out[k] = v
	}
	return out
}

// Order returns ids in the order colours were assigned.
func (p *Palette) Order() []string {
	return append([]string(nil), p.order...)
}

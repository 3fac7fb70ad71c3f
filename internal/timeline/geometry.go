// Package timeline implements the in-memory video editing domain model:
// clips, transitions, tracks and the timeline container that ties them
// together. The model is single-owner: it requires no synchronization and
// is read-only from the render queue's perspective.
package timeline

import "fmt"

// Position is a 2D position on screen, in pixels from the top-left corner.
type Position struct {
	X float64
	Y float64
}

// Size holds width and height dimensions in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Color is an RGBA color with 8-bit channels.
type Color struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

// RGB returns a fully opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Hex returns the color as "#rrggbb". The alpha channel is not encoded.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

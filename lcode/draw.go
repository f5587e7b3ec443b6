package lcode

import (
	"github.com/ahearne/lightcone/vm"
)

// Pt is a point in diagram space: time on the vertical axis, position on the
// horizontal, both in the diagram's natural units (years, lightyears, c = 1).
type Pt struct {
	T, X float64
}

// DrawContext is the backend a command list replays against. Implementations
// translate diagram space to device space; this package never sees pixels.
// Save and Restore scope style, alpha, and transform state.
type DrawContext interface {
	Save()
	Restore()
	SetAlpha(a float64)
	SetStyle(s *Style)

	Clear(b *vm.Bounds)
	Line(from, to Pt)
	Polyline(pts []Pt)
	Dot(at Pt, radius float64)
	Text(at Pt, text string)
}

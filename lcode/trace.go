package lcode

import (
	"fmt"
	"io"
	"strings"

	"github.com/ahearne/lightcone/vm"
)

// TraceContext is a text drawing backend: every operation appends one line.
// Tests assert on its output and the CLI's dump mode prints it.
type TraceContext struct {
	w     io.Writer
	depth int
}

// NewTraceContext creates a trace backend writing to w.
func NewTraceContext(w io.Writer) *TraceContext {
	return &TraceContext{w: w}
}

func (t *TraceContext) line(format string, args ...interface{}) {
	fmt.Fprintf(t.w, "%s%s\n", strings.Repeat("  ", t.depth), fmt.Sprintf(format, args...))
}

// Save implements the DrawContext interface.
func (t *TraceContext) Save() {
	t.line("save")
	t.depth++
}

// Restore implements the DrawContext interface.
func (t *TraceContext) Restore() {
	if t.depth > 0 {
		t.depth--
	}
	t.line("restore")
}

// SetAlpha implements the DrawContext interface.
func (t *TraceContext) SetAlpha(a float64) {
	t.line("alpha %g", a)
}

// SetStyle implements the DrawContext interface.
func (t *TraceContext) SetStyle(s *Style) {
	t.line("style color=%q width=%g", s.Color, s.LineWidth)
}

// Clear implements the DrawContext interface.
func (t *TraceContext) Clear(b *vm.Bounds) {
	t.line("clear t=[%g,%g] x=[%g,%g]", b.TMin, b.TMax, b.XMin, b.XMax)
}

// Line implements the DrawContext interface.
func (t *TraceContext) Line(from, to Pt) {
	t.line("line (%g,%g)-(%g,%g)", from.T, from.X, to.T, to.X)
}

// Polyline implements the DrawContext interface.
func (t *TraceContext) Polyline(pts []Pt) {
	t.line("polyline %d points", len(pts))
}

// Dot implements the DrawContext interface.
func (t *TraceContext) Dot(at Pt, radius float64) {
	t.line("dot (%g,%g) r=%g", at.T, at.X, radius)
}

// Text implements the DrawContext interface.
func (t *TraceContext) Text(at Pt, text string) {
	t.line("text (%g,%g) %q", at.T, at.X, text)
}

// Dump replays a list through a trace backend and returns the text.
func Dump(l *List) string {
	var b strings.Builder
	l.Execute(NewTraceContext(&b))
	return b.String()
}

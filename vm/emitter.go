package vm

import (
	"fmt"
)

// FigKind identifies one drawing-intent figure kind. The interpreter builds
// a property bag per figure and hands it to the FigSink, which owns the
// second intermediate representation (the render command list).
type FigKind uint8

const (
	FigAxes FigKind = iota
	FigGrid
	FigEvent
	FigLine
	FigWorldline
	FigPath
	FigLabel
	FigDisplay

	numFigKinds
)

var figKindNames = [numFigKinds]string{
	"axes", "grid", "event", "line", "worldline", "path", "label", "display",
}

// String implements the Stringer interface.
func (k FigKind) String() string {
	if int(k) < len(figKindNames) {
		return figKindNames[k]
	}
	return fmt.Sprintf("fig(%d)", k)
}

// FigProps is the mutable property bag a figure opcode sequence populates
// before the figure is finalized. Property order is preserved so emission is
// deterministic.
type FigProps struct {
	names []string
	vals  map[string]Value
}

// NewFigProps creates an empty property bag.
func NewFigProps() *FigProps {
	return &FigProps{vals: make(map[string]Value)}
}

// Set stores a property, keeping first-set order on overwrite.
func (p *FigProps) Set(name string, v Value) {
	if _, ok := p.vals[name]; !ok {
		p.names = append(p.names, name)
	}
	p.vals[name] = v
}

// Get returns a property value.
func (p *FigProps) Get(name string) (Value, bool) {
	v, ok := p.vals[name]
	return v, ok
}

// Names returns property names in first-set order.
func (p *FigProps) Names() []string {
	return append([]string(nil), p.names...)
}

// Len returns the number of properties.
func (p *FigProps) Len() int { return len(p.names) }

// FigSink receives finalized figures from the interpreter, in execution
// order. The implementation pairs each figure with a resolved style record
// and a drawing routine; the interpreter never inspects either. Errors
// returned here surface as user execution errors at pos.
type FigSink interface {
	EmitFigure(kind FigKind, props *FigProps, pos SourcePos) error
}

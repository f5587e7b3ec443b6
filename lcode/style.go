// Package lcode is the render command list: the declarative second
// intermediate representation emitted during script execution and replayed
// later against a drawing backend. Each command freezes a typed argument
// record, a resolved style, and a drawing routine; replay never touches the
// interpreter.
package lcode

import (
	"github.com/ahearne/lightcone/vm"
)

// Style is a resolved appearance record. Resolution from the stylesheet
// cascade happens outside this package; by the time a command is created its
// style is final.
type Style struct {
	Color     string
	LineWidth float64
	Dash      []float64
	Font      string
	Opacity   float64
	ZOrder    int
}

// Resolver produces the final style for one figure from its kind, id,
// classes, and inline style text. The stylesheet cascade lives behind this
// interface.
type Resolver interface {
	Resolve(kind vm.FigKind, id string, classes []string, inline string) (*Style, error)
}

// StaticResolver is a cascade-free Resolver: a base style, optionally
// overridden per figure id. Tests and the CLI's dump mode use it.
type StaticResolver struct {
	Base Style
	ByID map[string]Style
}

// Resolve implements the Resolver interface.
func (r *StaticResolver) Resolve(kind vm.FigKind, id string, classes []string, inline string) (*Style, error) {
	if id != "" {
		if s, ok := r.ByID[id]; ok {
			return &s, nil
		}
	}
	s := r.Base
	return &s, nil
}

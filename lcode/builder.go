package lcode

import (
	"strings"

	"github.com/ahearne/lightcone/vm"
)

// Builder is the figure sink the interpreter emits into. Each emitted figure
// becomes one command: the property bag fills a typed argument record, the
// record finalizes its geometry, the resolver produces the style, and the
// command appends to the list in execution order.
type Builder struct {
	resolver Resolver
	list     *List
}

// NewBuilder creates a builder appending to a fresh list.
func NewBuilder(r Resolver) *Builder {
	return &Builder{resolver: r, list: NewList()}
}

// The id, class, and style properties address the stylesheet cascade rather
// than the figure geometry, so the builder strips them before filling the
// argument record.
const (
	propID    = "id"
	propClass = "class"
	propStyle = "style"
)

// EmitFigure implements the sink interface the interpreter emits through.
// Property kind errors and finalize errors surface as user execution errors
// at the figure's source position.
func (b *Builder) EmitFigure(kind vm.FigKind, props *vm.FigProps, pos vm.SourcePos) error {
	args, err := NewArgs(kind)
	if err != nil {
		return &vm.ExecError{Msg: err.Error(), Pos: pos}
	}

	var id, inline string
	var classes []string
	for _, name := range props.Names() {
		v, _ := props.Get(name)
		switch name {
		case propID, propClass, propStyle:
			if !v.IsString() {
				return &vm.ExecError{
					Msg: propErr(kind, name, "string", v).Error(),
					Pos: pos,
				}
			}
			switch name {
			case propID:
				id = v.Str()
			case propClass:
				classes = strings.Fields(v.Str())
			case propStyle:
				inline = v.Str()
			}
			continue
		}
		if err := args.SetProp(name, v); err != nil {
			return &vm.ExecError{Msg: err.Error(), Pos: pos}
		}
	}

	if err := args.Finalize(); err != nil {
		return &vm.ExecError{Msg: err.Error(), Pos: pos}
	}

	style, err := b.resolver.Resolve(kind, id, classes, inline)
	if err != nil {
		return &vm.ExecError{Msg: err.Error(), Pos: pos}
	}

	b.list.Append(Command{Kind: kind, Args: args, Style: style, Pos: pos})
	return nil
}

// List returns the list built so far.
func (b *Builder) List() *List { return b.list }

// Take returns the built list and resets the builder for the next pass.
func (b *Builder) Take() *List {
	l := b.list
	b.list = NewList()
	return l
}

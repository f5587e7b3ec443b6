package lcode

import (
	"github.com/ahearne/lightcone/vm"
)

// Command is one frozen draw operation: finalized arguments, a resolved
// style, and the source position of the figure that produced it. Commands
// never change after creation; a re-render builds a new list.
type Command struct {
	Kind  vm.FigKind
	Args  Args
	Style *Style
	Pos   vm.SourcePos
}

// List is the render command list. Append order is paint order.
type List struct {
	cmds  []Command
	alpha float64
}

// NewList creates an empty command list at full opacity.
func NewList() *List {
	return &List{alpha: 1}
}

// Append adds a command to the end of the list.
func (l *List) Append(c Command) {
	l.cmds = append(l.cmds, c)
}

// Len returns the number of commands.
func (l *List) Len() int { return len(l.cmds) }

// Commands returns the commands in paint order.
func (l *List) Commands() []Command {
	return append([]Command(nil), l.cmds...)
}

// SetAlpha sets the global alpha applied around every command on replay.
func (l *List) SetAlpha(a float64) {
	l.alpha = a
}

// Alpha returns the global alpha.
func (l *List) Alpha() float64 { return l.alpha }

// Execute replays the list against a drawing backend. Every command runs
// inside its own save/restore scope with the list's global alpha and the
// command's style applied first.
func (l *List) Execute(dc DrawContext) {
	for i := range l.cmds {
		c := &l.cmds[i]
		dc.Save()
		dc.SetAlpha(l.alpha)
		dc.SetStyle(c.Style)
		c.Args.draw(dc)
		dc.Restore()
	}
}

// InFrame returns a new list with every command's coordinates re-expressed
// relative to frame f. Styles and order carry over unchanged.
func (l *List) InFrame(f *vm.Frame) (*List, error) {
	out := &List{cmds: make([]Command, 0, len(l.cmds)), alpha: l.alpha}
	for i := range l.cmds {
		c := l.cmds[i]
		args, err := c.Args.InFrame(f)
		if err != nil {
			return nil, err
		}
		c.Args = args
		out.cmds = append(out.cmds, c)
	}
	return out, nil
}

package vm

import (
	"fmt"
)

// Program is a validated, executable opcode sequence. Jump targets are
// absolute instruction indexes; Build and DecodeProgram refuse to produce a
// Program containing an unresolved or out-of-range target.
type Program struct {
	Name string
	Code []Instr
}

// ---------------------------------------------------------------------------
// Label management for jumps
// ---------------------------------------------------------------------------

// Label is an opaque jump target created at emission time and resolved to an
// absolute instruction index by Build. Taking a jump through an unresolved
// label is impossible by construction: Build fails instead.
type Label struct {
	target   int
	resolved bool
	refs     []int // instruction indexes referencing this label
}

// ---------------------------------------------------------------------------
// Builder
// ---------------------------------------------------------------------------

// Builder assembles an instruction sequence. It is the construction-side
// API the parser front end drives; tests drive it directly.
type Builder struct {
	name   string
	code   []Instr
	labels []*Label
}

// NewBuilder creates a builder for a program with the given source name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, code: make([]Instr, 0, 64)}
}

// Len returns the number of instructions emitted so far.
func (b *Builder) Len() int { return len(b.code) }

// NewLabel creates an unresolved label.
func (b *Builder) NewLabel() *Label {
	l := &Label{}
	b.labels = append(b.labels, l)
	return l
}

// Mark resolves a label to the current position.
func (b *Builder) Mark(l *Label) {
	if l.resolved {
		panic("label already resolved")
	}
	l.resolved = true
	l.target = len(b.code)
}

// Emit appends an instruction with no immediates.
func (b *Builder) Emit(op Op) {
	b.code = append(b.code, Instr{Op: op})
}

// Pos appends a source-position marker.
func (b *Builder) Pos(line, col int) {
	b.code = append(b.code, Instr{Op: OpPos, Line: line, Col: col})
}

// PushNum appends a number push.
func (b *Builder) PushNum(f float64) {
	b.code = append(b.code, Instr{Op: OpPushNum, Num: f})
}

// PushStr appends a string push.
func (b *Builder) PushStr(s string) {
	b.code = append(b.code, Instr{Op: OpPushStr, Str: s})
}

// Load appends a variable read.
func (b *Builder) Load(name string) {
	b.code = append(b.code, Instr{Op: OpLoad, Str: name})
}

// Store appends a variable assignment.
func (b *Builder) Store(name string) {
	b.code = append(b.code, Instr{Op: OpStore, Str: name})
}

// GetField appends a record field read.
func (b *Builder) GetField(field string) {
	b.code = append(b.code, Instr{Op: OpGetField, Str: field})
}

// SetField appends a record field assignment.
func (b *Builder) SetField(field string) {
	b.code = append(b.code, Instr{Op: OpSetField, Str: field})
}

// EmitJump appends a jump instruction referencing a label.
func (b *Builder) EmitJump(op Op, l *Label) {
	if !op.isJump() {
		panic(fmt.Sprintf("EmitJump with non-jump opcode %s", op))
	}
	l.refs = append(l.refs, len(b.code))
	b.code = append(b.code, Instr{Op: op})
}

// Call appends a builtin call. argc -1 means the argument count is popped
// from the top of stack first.
func (b *Builder) Call(name string, argc int) {
	b.code = append(b.code, Instr{Op: OpCall, Str: name, Argc: argc})
}

// FigBegin opens a figure argument record.
func (b *Builder) FigBegin(kind FigKind) {
	b.code = append(b.code, Instr{Op: OpFigBegin, Fig: kind})
}

// FigSet pops a value into a figure property.
func (b *Builder) FigSet(prop string) {
	b.code = append(b.code, Instr{Op: OpFigSet, Str: prop})
}

// FigEnd finalizes the open figure and emits its render command.
func (b *Builder) FigEnd() {
	b.code = append(b.code, Instr{Op: OpFigEnd})
}

// BindSticky appends a static bind.
func (b *Builder) BindSticky(name string) {
	b.code = append(b.code, Instr{Op: OpBindSticky, Str: name})
}

// BindRange appends a range-control bind. Stack on entry, bottom to top:
// initial, min, max, step.
func (b *Builder) BindRange(name, label string, reset bool) {
	b.code = append(b.code, Instr{Op: OpBindRange, Str: name, Str2: label, Flag: reset})
}

// BindToggle appends a toggle-control bind. Pops the initial value.
func (b *Builder) BindToggle(name, label string, reset bool) {
	b.code = append(b.code, Instr{Op: OpBindToggle, Str: name, Str2: label, Flag: reset})
}

// BindChoice appends a choice-control bind. Stack on entry, bottom to top:
// initial index, the choice labels, the label count.
func (b *Builder) BindChoice(name, label string, reset bool) {
	b.code = append(b.code, Instr{Op: OpBindChoice, Str: name, Str2: label, Flag: reset})
}

// BindAnimate appends an animation-variable bind. Stack on entry, bottom to
// top: initial, step, terminal value (or none for an open-ended animation).
func (b *Builder) BindAnimate(name, label string, reset bool) {
	b.code = append(b.code, Instr{Op: OpBindAnimate, Str: name, Str2: label, Flag: reset})
}

// Build resolves labels and validates the sequence. Any unresolved label or
// malformed instruction is a construction fault reported as an error here,
// never deferred to execution.
func (b *Builder) Build() (*Program, error) {
	for i, l := range b.labels {
		if !l.resolved {
			if len(l.refs) > 0 {
				return nil, fmt.Errorf("program %q: unresolved jump target (label %d referenced at instruction %d)",
					b.name, i, l.refs[0])
			}
			continue
		}
		for _, ref := range l.refs {
			b.code[ref].Target = l.target
		}
	}
	p := &Program{Name: b.name, Code: b.code}
	if err := validateProgram(p); err != nil {
		return nil, err
	}
	return p, nil
}

// validateProgram performs the static checks shared by Build and
// DecodeProgram.
func validateProgram(p *Program) error {
	for i := range p.Code {
		in := &p.Code[i]
		if _, ok := in.Op.Info(); !ok {
			return fmt.Errorf("program %q: unknown opcode 0x%02X at instruction %d", p.Name, uint8(in.Op), i)
		}
		if in.Op.isJump() {
			if in.Target < 0 || in.Target > len(p.Code) {
				return fmt.Errorf("program %q: jump target %d out of range at instruction %d", p.Name, in.Target, i)
			}
		}
		if in.Op == OpCall {
			if in.Argc < -1 {
				return fmt.Errorf("program %q: bad argument count %d at instruction %d", p.Name, in.Argc, i)
			}
			arity, known := BuiltinArity(in.Str)
			if !known {
				return fmt.Errorf("program %q: unknown builtin %q at instruction %d", p.Name, in.Str, i)
			}
			if arity >= 0 && in.Argc >= 0 && in.Argc != arity {
				return fmt.Errorf("program %q: builtin %q takes %d arguments, got %d at instruction %d",
					p.Name, in.Str, arity, in.Argc, i)
			}
		}
		if in.Op == OpFigBegin && in.Fig >= numFigKinds {
			return fmt.Errorf("program %q: unknown figure kind %d at instruction %d", p.Name, in.Fig, i)
		}
	}
	return nil
}

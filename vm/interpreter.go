package vm

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ahearne/lightcone/physics"
)

// figBuild is the figure argument record currently being populated, between
// OpFigBegin and OpFigEnd.
type figBuild struct {
	kind  FigKind
	props *FigProps
	pos   SourcePos
}

// Interp executes one pass over a program: a single logical thread walking
// the opcode sequence against the symbol tiers and emitting figures to the
// sink. All per-run state lives here — there are no process-wide globals —
// so a fresh Interp per pass is cheap and safe.
type Interp struct {
	prog     *Program
	syms     *SymTab
	controls *ControlRegistry
	funcs    *FuncTable
	sink     FigSink

	stack []Value
	sp    int
	pc    int

	pos      SourcePos
	defFrame *Frame // current definition frame for coord construction
	fig      *figBuild
	rand     *rand.Rand
	steps    int
}

// NewInterp creates an interpreter for one pass. The sink may be nil when a
// program emits no figures (tests mostly run this way).
func NewInterp(prog *Program, syms *SymTab, controls *ControlRegistry, sink FigSink) *Interp {
	return NewInterpSeeded(prog, syms, controls, sink, time.Now().UnixNano())
}

// NewInterpSeeded is NewInterp with a fixed seed for the random builtin.
func NewInterpSeeded(prog *Program, syms *SymTab, controls *ControlRegistry, sink FigSink, seed int64) *Interp {
	return &Interp{
		prog:     prog,
		syms:     syms,
		controls: controls,
		funcs:    defaultFuncs,
		sink:     sink,
		stack:    make([]Value, 0, 64),
		defFrame: &Frame{}, // the home frame
		rand:     rngSource(seed),
	}
}

// ---------------------------------------------------------------------------
// Stack operations
// ---------------------------------------------------------------------------

func (in *Interp) push(v Value) {
	if in.sp == len(in.stack) {
		in.stack = append(in.stack, v)
	} else {
		in.stack[in.sp] = v
	}
	in.sp++
}

func (in *Interp) pop() Value {
	if in.sp <= 0 {
		panic("stack underflow")
	}
	in.sp--
	return in.stack[in.sp]
}

func (in *Interp) top() Value {
	if in.sp <= 0 {
		panic("stack underflow")
	}
	return in.stack[in.sp-1]
}

func (in *Interp) popN(n int) []Value {
	if in.sp < n {
		panic("stack underflow")
	}
	out := make([]Value, n)
	in.sp -= n
	copy(out, in.stack[in.sp:in.sp+n])
	return out
}

// Depth returns the current operand stack depth.
func (in *Interp) Depth() int { return in.sp }

// PC returns the current program counter.
func (in *Interp) PC() int { return in.pc }

// fail raises a user execution error at the current source position.
func (in *Interp) fail(format string, args ...interface{}) error {
	return &ExecError{Msg: fmt.Sprintf(format, args...), Pos: in.pos}
}

// wrap attaches the current source position to a collaborator error.
func (in *Interp) wrap(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsExecError(err); ok {
		return err
	}
	return &ExecError{Msg: err.Error(), Pos: in.pos}
}

// ---------------------------------------------------------------------------
// Main interpreter loop
// ---------------------------------------------------------------------------

// Run executes the program to completion or first error. The context is
// checked between instructions; a cancelled pass returns ctx.Err() and the
// caller discards staged sticky state, so abandonment is clean.
func (in *Interp) Run(ctx context.Context) error {
	code := in.prog.Code
	for in.pc < len(code) {
		in.steps++
		if in.steps&63 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		instr := &code[in.pc]
		jumped, err := in.exec(instr)
		if err != nil {
			return err
		}
		if !jumped {
			in.pc++
		}
	}
	if in.fig != nil {
		return &ExecError{
			Msg: fmt.Sprintf("figure %s left unfinished at end of script", in.fig.kind),
			Pos: in.fig.pos,
		}
	}
	return nil
}

// exec runs one instruction and reports whether it transferred control.
func (in *Interp) exec(instr *Instr) (bool, error) {
	switch instr.Op {
	case OpNop:
		// nothing

	case OpPos:
		in.pos = SourcePos{Line: instr.Line, Col: instr.Col}

	case OpPushNum:
		in.push(FromNumber(instr.Num))

	case OpPushStr:
		in.push(FromString(instr.Str))

	case OpPushNone:
		in.push(None)

	case OpPop:
		in.pop()

	case OpDup:
		in.push(in.top())

	case OpLoad:
		v, err := SymbolAddress{Name: instr.Str}.Fetch(in.syms)
		if err != nil {
			return false, in.wrap(err)
		}
		in.push(v)

	case OpStore:
		v := in.pop()
		if err := (SymbolAddress{Name: instr.Str}).Store(in.syms, v); err != nil {
			return false, in.wrap(err)
		}

	case OpGetField:
		rv := in.pop()
		if !rv.IsRecord() {
			return false, in.fail("value of kind %s has no fields", rv.Kind())
		}
		v, err := FieldAddress{Rec: rv.Record(), Field: instr.Str}.Fetch(in.syms)
		if err != nil {
			return false, in.wrap(err)
		}
		in.push(v)

	case OpSetField:
		v := in.pop()
		rv := in.pop()
		if !rv.IsRecord() {
			return false, in.fail("value of kind %s has no fields", rv.Kind())
		}
		if err := (FieldAddress{Rec: rv.Record(), Field: instr.Str}).Store(in.syms, v); err != nil {
			return false, in.wrap(err)
		}

	case OpAdd:
		b := in.pop()
		a := in.pop()
		v, err := in.add(a, b)
		if err != nil {
			return false, err
		}
		in.push(v)

	case OpSub, OpMul, OpDiv:
		b := in.pop()
		a := in.pop()
		v, err := in.arith(instr.Op, a, b)
		if err != nil {
			return false, err
		}
		in.push(v)

	case OpNeg:
		a := in.pop()
		if !a.IsNumber() {
			return false, in.fail("cannot negate %s", a.Kind())
		}
		in.push(FromNumber(-a.Number()))

	case OpNot:
		in.push(FromBool(!in.pop().IsTruthy()))

	case OpEq:
		b := in.pop()
		a := in.pop()
		in.push(FromBool(a.Equal(b)))

	case OpNe:
		b := in.pop()
		a := in.pop()
		in.push(FromBool(!a.Equal(b)))

	case OpLt, OpLe, OpGt, OpGe:
		b := in.pop()
		a := in.pop()
		v, err := in.compare(instr.Op, a, b)
		if err != nil {
			return false, err
		}
		in.push(v)

	case OpJump:
		in.pc = instr.Target
		return true, nil

	case OpJumpTruthy:
		if in.pop().IsTruthy() {
			in.pc = instr.Target
			return true, nil
		}

	case OpJumpOr:
		// Short-circuit `or`: keep the truthy operand as the result.
		if in.top().IsTruthy() {
			in.pc = instr.Target
			return true, nil
		}
		in.pop()

	case OpCall:
		argc := instr.Argc
		if argc == -1 {
			cv := in.pop()
			if !cv.IsNumber() {
				return false, in.fail("argument count must be a number, got %s", cv.Kind())
			}
			f := cv.Number()
			argc = int(f)
			if float64(argc) != f || argc < 0 {
				return false, in.fail("bad argument count %g", f)
			}
		}
		args := in.popN(argc)
		v, err := in.funcs.Call(in, instr.Str, args)
		if err != nil {
			return false, in.wrap(err)
		}
		in.push(v)

	case OpSetDefFrame:
		v := in.pop()
		if v.Kind() != KindFrame {
			return false, in.fail("definition frame must be a frame, got %s", v.Kind())
		}
		in.defFrame = v.Record().(*Frame)

	case OpGetDefFrame:
		in.push(FromRecord(in.defFrame))

	case OpFigBegin:
		if in.fig != nil {
			return false, in.fail("figure %s opened while %s is still open", instr.Fig, in.fig.kind)
		}
		in.fig = &figBuild{kind: instr.Fig, props: NewFigProps(), pos: in.pos}

	case OpFigSet:
		if in.fig == nil {
			return false, in.fail("figure property %q set outside a figure", instr.Str)
		}
		in.fig.props.Set(instr.Str, in.pop())

	case OpFigEnd:
		if in.fig == nil {
			return false, in.fail("figure finished outside a figure")
		}
		fig := in.fig
		in.fig = nil
		if in.sink == nil {
			break
		}
		if err := in.sink.EmitFigure(fig.kind, fig.props, fig.pos); err != nil {
			if _, ok := AsExecError(err); ok {
				return false, err
			}
			return false, &ExecError{Msg: err.Error(), Pos: fig.pos}
		}

	case OpBindSticky:
		initial := in.pop()
		if err := in.syms.BindSticky(instr.Str, initial); err != nil {
			return false, in.wrap(err)
		}

	case OpBindRange:
		step, err := in.bindNumber(instr, "step")
		if err != nil {
			return false, err
		}
		max, err := in.bindNumber(instr, "max")
		if err != nil {
			return false, err
		}
		min, err := in.bindNumber(instr, "min")
		if err != nil {
			return false, err
		}
		initial, err := in.bindNumber(instr, "initial")
		if err != nil {
			return false, err
		}
		ctl, err := NewRangeControl(instr.Str, instr.Str2, initial, min, max, step, instr.Flag)
		if err != nil {
			return false, in.wrap(err)
		}
		if err := in.install(instr.Str, ctl); err != nil {
			return false, err
		}

	case OpBindToggle:
		initial := in.pop()
		ctl := NewToggleControl(instr.Str, instr.Str2, initial.IsTruthy(), instr.Flag)
		if err := in.install(instr.Str, ctl); err != nil {
			return false, err
		}

	case OpBindChoice:
		cv := in.pop()
		if !cv.IsNumber() {
			return false, in.fail("choice count must be a number, got %s", cv.Kind())
		}
		n := int(cv.Number())
		if float64(n) != cv.Number() || n < 0 {
			return false, in.fail("bad choice count %g", cv.Number())
		}
		raw := in.popN(n)
		choices := make([]string, n)
		for i, v := range raw {
			if !v.IsString() {
				return false, in.fail("choice labels must be strings, got %s", v.Kind())
			}
			choices[i] = v.Str()
		}
		initial, err := in.bindNumber(instr, "initial index")
		if err != nil {
			return false, err
		}
		ctl, err := NewChoiceControl(instr.Str, instr.Str2, choices, int(initial), instr.Flag)
		if err != nil {
			return false, in.wrap(err)
		}
		if err := in.install(instr.Str, ctl); err != nil {
			return false, err
		}

	case OpBindAnimate:
		end := in.pop()
		hasEnd := !end.IsNone()
		endVal := 0.0
		if hasEnd {
			if !end.IsNumber() {
				return false, in.fail("animation end for %q must be a number, got %s", instr.Str, end.Kind())
			}
			endVal = end.Number()
		}
		step, err := in.bindNumber(instr, "step")
		if err != nil {
			return false, err
		}
		initial, err := in.bindNumber(instr, "initial")
		if err != nil {
			return false, err
		}
		ctl, err := NewAnimateControl(instr.Str, instr.Str2, initial, step, endVal, hasEnd, instr.Flag)
		if err != nil {
			return false, in.wrap(err)
		}
		if err := in.install(instr.Str, ctl); err != nil {
			return false, err
		}

	default:
		panic(fmt.Sprintf("unknown opcode %s at %d", instr.Op, in.pc))
	}
	return false, nil
}

// bindNumber pops one numeric operand of a bind opcode.
func (in *Interp) bindNumber(instr *Instr, what string) (float64, error) {
	v := in.pop()
	if !v.IsNumber() {
		return 0, in.fail("%s for control %q must be a number, got %s", what, instr.Str, v.Kind())
	}
	return v.Number(), nil
}

// install binds a control, registering it unless an existing record from an
// earlier pass of the same program was adopted instead.
func (in *Interp) install(name string, ctl *Control) error {
	bound, err := in.syms.BindReactive(name, ctl)
	if err != nil {
		return in.wrap(err)
	}
	if bound == ctl && in.controls != nil {
		in.controls.Register(ctl)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// add implements the + opcode: number addition, or concatenation as soon as
// either operand is a string (numbers format in display form).
func (in *Interp) add(a, b Value) (Value, error) {
	switch {
	case a.IsNumber() && b.IsNumber():
		return FromNumber(a.Number() + b.Number()), nil
	case a.IsString() && b.IsString():
		return FromString(a.Str() + b.Str()), nil
	case a.IsString() && b.IsNumber():
		return FromString(a.Str() + FromNumber(b.Number()).String()), nil
	case a.IsNumber() && b.IsString():
		return FromString(FromNumber(a.Number()).String() + b.Str()), nil
	default:
		return None, in.fail("cannot add %s and %s", a.Kind(), b.Kind())
	}
}

func (in *Interp) arith(op Op, a, b Value) (Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return None, in.fail("cannot apply %s to %s and %s", op, a.Kind(), b.Kind())
	}
	x, y := a.Number(), b.Number()
	switch op {
	case OpSub:
		return FromNumber(x - y), nil
	case OpMul:
		return FromNumber(x * y), nil
	default: // OpDiv
		if physics.FuzzZero(y) {
			return None, in.fail("division by zero")
		}
		return FromNumber(x / y), nil
	}
}

func (in *Interp) compare(op Op, a, b Value) (Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return None, in.fail("cannot compare %s and %s", a.Kind(), b.Kind())
	}
	x, y := a.Number(), b.Number()
	switch op {
	case OpLt:
		return FromBool(x < y), nil
	case OpLe:
		return FromBool(x <= y || physics.FuzzEqual(x, y)), nil
	case OpGt:
		return FromBool(x > y), nil
	default: // OpGe
		return FromBool(x >= y || physics.FuzzEqual(x, y)), nil
	}
}

// coordInDefFrame constructs a coord given in the current definition frame,
// expressed in the home frame.
func (in *Interp) coordInDefFrame(t, x float64) (*Coord, error) {
	f := in.defFrame
	if f == nil || (physics.FuzzZero(f.V) && physics.FuzzZero(f.T0) && physics.FuzzZero(f.X0)) {
		return &Coord{T: t, X: x}, nil
	}
	bt, bx, err := physics.Unboost(t, x, f.V)
	if err != nil {
		return nil, fmt.Errorf("coord: %v", err)
	}
	return &Coord{T: bt + f.T0, X: bx + f.X0}, nil
}

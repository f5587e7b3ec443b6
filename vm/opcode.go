package vm

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Op identifies one instruction kind in the opcode sequence the parser front
// end hands over. Instructions carry their immediate operands in the Instr
// struct; stack operands are described by the metadata table below.
type Op uint8

// Stack and position
const (
	OpNop      Op = iota // no operation
	OpPos                // update current source position (Line, Col)
	OpPushNum            // push number immediate (Num)
	OpPushStr            // push string immediate (Str)
	OpPushNone           // push the absent value
	OpPop                // discard top of stack
	OpDup                // push a copy of top of stack
)

// Variables and fields
const (
	OpLoad     Op = iota + 0x10 // push variable (Str = name)
	OpStore                     // pop value, assign variable (Str = name)
	OpGetField                  // pop record, push field value (Str = field)
	OpSetField                  // pop value, pop record, assign field (Str = field)
)

// Arithmetic, comparison, logic
const (
	OpAdd Op = iota + 0x20 // + (number addition or string concatenation)
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpNot
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// Control flow
const (
	OpJump       Op = iota + 0x30 // unconditional jump (Target)
	OpJumpTruthy                  // pop, jump if truthy (Target)
	OpJumpOr                      // jump if top is truthy keeping it, else pop (Target)
)

// Builtin dispatch and definition frame
const (
	OpCall        Op = iota + 0x40 // call builtin (Str = name, Argc; -1 pops count)
	OpSetDefFrame                  // pop frame, set current definition frame
	OpGetDefFrame                  // push current definition frame
)

// Figure assembly
const (
	OpFigBegin Op = iota + 0x50 // open a figure argument record (Fig)
	OpFigSet                    // pop value into figure property (Str = property)
	OpFigEnd                    // finalize figure, emit render command
)

// Variable binds
const (
	OpBindSticky  Op = iota + 0x60 // pop initial, bind static (Str = name)
	OpBindRange                    // pop step, max, min, initial (Str, Str2, Flag)
	OpBindToggle                   // pop initial (Str, Str2, Flag)
	OpBindChoice                   // pop count, choices..., initial (Str, Str2, Flag)
	OpBindAnimate                  // pop end (or none), step, initial (Str, Str2, Flag)
)

// Instr is one instruction: an opcode plus its immediate operands. Unused
// operand fields stay zero. Jump targets are label references until Build
// resolves them to absolute instruction indexes.
type Instr struct {
	Op     Op
	Num    float64 // number immediate
	Str    string  // variable/field/property/builtin name
	Str2   string  // control display label
	Flag   bool    // control reset-on-change
	Argc   int     // builtin argument count; -1 = count popped from stack
	Target int     // resolved jump target (absolute instruction index)
	Fig    FigKind // figure kind
	Line   int     // source position marker
	Col    int
}

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OpInfo holds static metadata about an opcode. Args is the number of stack
// operands consumed: a constant, or -1 when the count is itself popped from
// the top of stack first (OpBindChoice, and OpCall with Argc -1). Results
// is always 0 or 1.
type OpInfo struct {
	Name    string
	Args    int
	Results int
}

var opTable = map[Op]OpInfo{
	OpNop:      {"NOP", 0, 0},
	OpPos:      {"POS", 0, 0},
	OpPushNum:  {"PUSH_NUM", 0, 1},
	OpPushStr:  {"PUSH_STR", 0, 1},
	OpPushNone: {"PUSH_NONE", 0, 1},
	OpPop:      {"POP", 1, 0},
	OpDup:      {"DUP", 0, 1}, // peeks rather than pops

	OpLoad:     {"LOAD", 0, 1},
	OpStore:    {"STORE", 1, 0},
	OpGetField: {"GET_FIELD", 1, 1},
	OpSetField: {"SET_FIELD", 2, 0},

	OpAdd: {"ADD", 2, 1},
	OpSub: {"SUB", 2, 1},
	OpMul: {"MUL", 2, 1},
	OpDiv: {"DIV", 2, 1},
	OpNeg: {"NEG", 1, 1},
	OpNot: {"NOT", 1, 1},
	OpEq:  {"EQ", 2, 1},
	OpNe:  {"NE", 2, 1},
	OpLt:  {"LT", 2, 1},
	OpLe:  {"LE", 2, 1},
	OpGt:  {"GT", 2, 1},
	OpGe:  {"GE", 2, 1},

	OpJump:       {"JUMP", 0, 0},
	OpJumpTruthy: {"JUMP_TRUTHY", 1, 0},
	OpJumpOr:     {"JUMP_OR", 1, 0}, // pops only when not jumping

	OpCall:        {"CALL", -1, 1}, // per-instruction Argc
	OpSetDefFrame: {"SET_DEF_FRAME", 1, 0},
	OpGetDefFrame: {"GET_DEF_FRAME", 0, 1},

	OpFigBegin: {"FIG_BEGIN", 0, 0},
	OpFigSet:   {"FIG_SET", 1, 0},
	OpFigEnd:   {"FIG_END", 0, 0},

	OpBindSticky:  {"BIND_STICKY", 1, 0},
	OpBindRange:   {"BIND_RANGE", 4, 0},
	OpBindToggle:  {"BIND_TOGGLE", 1, 0},
	OpBindChoice:  {"BIND_CHOICE", -1, 0},
	OpBindAnimate: {"BIND_ANIMATE", 3, 0},
}

// Info returns the metadata for an opcode.
func (op Op) Info() (OpInfo, bool) {
	info, ok := opTable[op]
	return info, ok
}

// String implements the Stringer interface.
func (op Op) String() string {
	if info, ok := opTable[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN_%02X", uint8(op))
}

// isJump reports whether op takes a jump target.
func (op Op) isJump() bool {
	return op == OpJump || op == OpJumpTruthy || op == OpJumpOr
}

// ---------------------------------------------------------------------------
// Disassembly
// ---------------------------------------------------------------------------

// DisassembleInstr renders one instruction at index idx.
func DisassembleInstr(idx int, in *Instr) string {
	switch in.Op {
	case OpPos:
		return fmt.Sprintf("%04d  %s %d:%d", idx, in.Op, in.Line, in.Col)
	case OpPushNum:
		return fmt.Sprintf("%04d  %s %g", idx, in.Op, in.Num)
	case OpPushStr:
		return fmt.Sprintf("%04d  %s %q", idx, in.Op, in.Str)
	case OpLoad, OpStore, OpGetField, OpSetField, OpFigSet, OpBindSticky:
		return fmt.Sprintf("%04d  %s %s", idx, in.Op, in.Str)
	case OpJump, OpJumpTruthy, OpJumpOr:
		return fmt.Sprintf("%04d  %s -> %04d", idx, in.Op, in.Target)
	case OpCall:
		return fmt.Sprintf("%04d  %s %s/%d", idx, in.Op, in.Str, in.Argc)
	case OpFigBegin:
		return fmt.Sprintf("%04d  %s %s", idx, in.Op, in.Fig)
	case OpBindRange, OpBindToggle, OpBindChoice, OpBindAnimate:
		return fmt.Sprintf("%04d  %s %s %q", idx, in.Op, in.Str, in.Str2)
	default:
		return fmt.Sprintf("%04d  %s", idx, in.Op)
	}
}

// Disassemble returns a full listing of a program's instructions.
func Disassemble(p *Program) string {
	var b strings.Builder
	for i := range p.Code {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(DisassembleInstr(i, &p.Code[i]))
	}
	return b.String()
}

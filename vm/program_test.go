package vm

import (
	"strings"
	"testing"
)

func TestBuildResolvesLabels(t *testing.T) {
	b := NewBuilder("labels")
	done := b.NewLabel()
	b.PushNum(1)
	b.EmitJump(OpJumpTruthy, done)
	b.PushNum(99)
	b.Mark(done)
	b.PushNum(2)

	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if got := p.Code[1].Target; got != 3 {
		t.Errorf("jump target = %d, want 3", got)
	}
}

func TestBuildRejectsUnresolvedJump(t *testing.T) {
	b := NewBuilder("bad")
	never := b.NewLabel()
	b.PushNum(1)
	b.EmitJump(OpJumpTruthy, never)

	if _, err := b.Build(); err == nil {
		t.Fatal("a jump through an unresolved label must be rejected at build time")
	}
}

func TestBuildAllowsUnusedUnresolvedLabel(t *testing.T) {
	b := NewBuilder("unused")
	b.NewLabel() // created, never referenced
	b.PushNum(1)
	b.Emit(OpPop)
	if _, err := b.Build(); err != nil {
		t.Errorf("Build error: %v", err)
	}
}

func TestEmitJumpRejectsNonJump(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("EmitJump with a non-jump opcode should panic")
		}
	}()
	b := NewBuilder("bad")
	b.EmitJump(OpAdd, b.NewLabel())
}

func TestMarkTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("double Mark should panic")
		}
	}()
	b := NewBuilder("bad")
	l := b.NewLabel()
	b.Mark(l)
	b.Mark(l)
}

func TestValidateUnknownOpcode(t *testing.T) {
	p := &Program{Name: "raw", Code: []Instr{{Op: Op(0xEE)}}}
	if err := validateProgram(p); err == nil {
		t.Error("unknown opcode should be rejected")
	}
}

func TestValidateJumpRange(t *testing.T) {
	p := &Program{Name: "raw", Code: []Instr{{Op: OpJump, Target: 7}}}
	if err := validateProgram(p); err == nil {
		t.Error("out-of-range jump target should be rejected")
	}
	// Target == len(code) is a legal jump to end.
	p = &Program{Name: "raw", Code: []Instr{{Op: OpJump, Target: 1}}}
	if err := validateProgram(p); err != nil {
		t.Errorf("jump to end rejected: %v", err)
	}
}

func TestValidateCalls(t *testing.T) {
	b := NewBuilder("calls")
	b.PushNum(2)
	b.Call("sqrt", 1)
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build error: %v", err)
	}

	b = NewBuilder("calls")
	b.Call("no_such_builtin", 0)
	if _, err := b.Build(); err == nil {
		t.Error("unknown builtin should be rejected")
	}

	b = NewBuilder("calls")
	b.PushNum(1)
	b.PushNum(2)
	b.Call("sqrt", 2)
	if _, err := b.Build(); err == nil {
		t.Error("arity mismatch should be rejected")
	}
}

func TestValidateFigKind(t *testing.T) {
	p := &Program{Name: "raw", Code: []Instr{{Op: OpFigBegin, Fig: FigKind(200)}}}
	if err := validateProgram(p); err == nil {
		t.Error("unknown figure kind should be rejected")
	}
}

func TestDisassemble(t *testing.T) {
	b := NewBuilder("dis")
	b.PushNum(2)
	b.PushNum(3)
	b.Emit(OpAdd)
	b.Store("x")
	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	got := Disassemble(p)
	for _, want := range []string{"PUSH_NUM 2", "PUSH_NUM 3", "ADD", "STORE x"} {
		if !strings.Contains(got, want) {
			t.Errorf("listing missing %q:\n%s", want, got)
		}
	}
}

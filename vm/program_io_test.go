package vm

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
)

func TestProgramRoundTrip(t *testing.T) {
	b := NewBuilder("roundtrip")
	end := b.NewLabel()
	b.Pos(1, 1)
	b.PushNum(0.5)
	b.EmitJump(OpJumpOr, end)
	b.PushStr("fallback")
	b.Mark(end)
	b.Call("gamma", 1)
	b.BindRange("v", "speed", true)
	p := mustBuild(t, b)

	var buf bytes.Buffer
	if err := EncodeProgram(&buf, p); err != nil {
		t.Fatalf("EncodeProgram error: %v", err)
	}
	got, err := DecodeProgram(&buf)
	if err != nil {
		t.Fatalf("DecodeProgram error: %v", err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsBadOpcode(t *testing.T) {
	var buf bytes.Buffer
	err := cbor.NewEncoder(&buf).Encode(&wireProgram{
		Version: programWireVersion,
		Name:    "bad",
		Code:    []wireInstr{{Op: 0xEE}},
	})
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if _, err := DecodeProgram(&buf); err == nil {
		t.Error("unknown opcode should be rejected at decode time")
	}
}

func TestDecodeRejectsBadJump(t *testing.T) {
	var buf bytes.Buffer
	err := cbor.NewEncoder(&buf).Encode(&wireProgram{
		Version: programWireVersion,
		Name:    "bad",
		Code:    []wireInstr{{Op: uint8(OpJump), Target: 40}},
	})
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if _, err := DecodeProgram(&buf); err == nil {
		t.Error("out-of-range jump should be rejected at decode time")
	}
}

func TestDecodeRejectsVersionDrift(t *testing.T) {
	var buf bytes.Buffer
	err := cbor.NewEncoder(&buf).Encode(&wireProgram{Version: 99, Name: "future"})
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if _, err := DecodeProgram(&buf); err == nil {
		t.Error("wire version drift should be rejected")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeProgram(bytes.NewReader([]byte{0xFF, 0x00, 0x12})); err == nil {
		t.Error("malformed bytes should be rejected")
	}
}

package vm

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// The parser front end is a separate process in this architecture; compiled
// programs cross the boundary as CBOR files. Decoding re-runs the same
// validation as Build, so a corrupt or stale file is rejected before any
// execution attempt.

// programWireVersion guards against format drift between the front end and
// this engine.
const programWireVersion = 1

type wireInstr struct {
	Op     uint8   `cbor:"o"`
	Num    float64 `cbor:"n,omitempty"`
	Str    string  `cbor:"s,omitempty"`
	Str2   string  `cbor:"s2,omitempty"`
	Flag   bool    `cbor:"f,omitempty"`
	Argc   int     `cbor:"a,omitempty"`
	Target int     `cbor:"j,omitempty"`
	Fig    uint8   `cbor:"g,omitempty"`
	Line   int     `cbor:"l,omitempty"`
	Col    int     `cbor:"c,omitempty"`
}

type wireProgram struct {
	Version int         `cbor:"v"`
	Name    string      `cbor:"name"`
	Code    []wireInstr `cbor:"code"`
}

// EncodeProgram writes a program in the wire format.
func EncodeProgram(w io.Writer, p *Program) error {
	wp := wireProgram{
		Version: programWireVersion,
		Name:    p.Name,
		Code:    make([]wireInstr, len(p.Code)),
	}
	for i := range p.Code {
		in := &p.Code[i]
		wp.Code[i] = wireInstr{
			Op:     uint8(in.Op),
			Num:    in.Num,
			Str:    in.Str,
			Str2:   in.Str2,
			Flag:   in.Flag,
			Argc:   in.Argc,
			Target: in.Target,
			Fig:    uint8(in.Fig),
			Line:   in.Line,
			Col:    in.Col,
		}
	}
	return cbor.NewEncoder(w).Encode(&wp)
}

// DecodeProgram reads and validates a program from the wire format. Any
// malformation is a construction fault reported here, never at execution.
func DecodeProgram(r io.Reader) (*Program, error) {
	var wp wireProgram
	if err := cbor.NewDecoder(r).Decode(&wp); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	if wp.Version != programWireVersion {
		return nil, fmt.Errorf("program %q: wire version %d, want %d", wp.Name, wp.Version, programWireVersion)
	}
	p := &Program{
		Name: wp.Name,
		Code: make([]Instr, len(wp.Code)),
	}
	for i, wi := range wp.Code {
		p.Code[i] = Instr{
			Op:     Op(wi.Op),
			Num:    wi.Num,
			Str:    wi.Str,
			Str2:   wi.Str2,
			Flag:   wi.Flag,
			Argc:   wi.Argc,
			Target: wi.Target,
			Fig:    FigKind(wi.Fig),
			Line:   wi.Line,
			Col:    wi.Col,
		}
	}
	if err := validateProgram(p); err != nil {
		return nil, err
	}
	return p, nil
}

package vm

import (
	"errors"
	"fmt"
)

// SourcePos is a position in the original script text, carried along the
// opcode sequence by position-marker instructions and attached to user
// execution errors.
type SourcePos struct {
	Line, Col int
}

func (p SourcePos) String() string {
	return fmt.Sprintf("line %d, col %d", p.Line, p.Col)
}

// ExecError is a user-visible script execution error. The interpreter halts
// the current run on the first one raised; there is no recovery and no
// partial render.
//
// Construction-time faults (malformed opcode sequences, stack underflow,
// unknown opcodes) are deliberately NOT ExecErrors: they indicate an
// upstream defect and surface as panics or Build/Decode errors instead.
type ExecError struct {
	Msg string
	Pos SourcePos
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("script error at %s: %s", e.Pos, e.Msg)
}

// AsExecError unwraps err to an *ExecError if it is one.
func AsExecError(err error) (*ExecError, bool) {
	var ee *ExecError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

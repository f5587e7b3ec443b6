package vm

import (
	"strconv"

	"github.com/ahearne/lightcone/physics"
)

// Kind identifies one of the closed set of runtime value kinds. Scripts are
// dynamically typed at the operand-stack level, but the value domain itself
// is fixed: numbers, strings, and the built-in record kinds.
type Kind uint8

const (
	KindNone Kind = iota // absent value
	KindNumber
	KindString
	KindCoord
	KindFrame
	KindObserver
	KindLine
	KindInterval
	KindBounds
	KindPath

	numKinds
)

var kindNames = [numKinds]string{
	"none", "number", "string", "coord", "frame",
	"observer", "line", "interval", "bounds", "path",
}

// String implements the Stringer interface.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsRecord returns true for the compound record kinds.
func (k Kind) IsRecord() bool {
	return k >= KindCoord && k < numKinds
}

// Value is a script runtime value. Values are immutable once constructed;
// record values hold a pointer whose named fields are addressable through
// field addresses. Booleans are numeric: 0 is false, anything else is true.
type Value struct {
	kind Kind
	num  float64
	str  string
	rec  Record
}

// None is the absent value.
var None = Value{}

// FromNumber creates a number value.
func FromNumber(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// FromString creates a string value.
func FromString(s string) Value {
	return Value{kind: KindString, str: s}
}

// FromBool creates the numeric encoding of a boolean: 1 or 0.
func FromBool(b bool) Value {
	if b {
		return FromNumber(1)
	}
	return FromNumber(0)
}

// FromRecord wraps a record pointer. A nil record yields None.
func FromRecord(r Record) Value {
	if r == nil {
		return None
	}
	return Value{kind: r.RecordKind(), rec: r}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNone returns true if v is the absent value.
func (v Value) IsNone() bool { return v.kind == KindNone }

// IsNumber returns true if v is a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsString returns true if v is a string.
func (v Value) IsString() bool { return v.kind == KindString }

// IsRecord returns true if v holds one of the compound record kinds.
func (v Value) IsRecord() bool { return v.kind.IsRecord() }

// Number returns v as a float64.
// Panics if v is not a number.
func (v Value) Number() float64 {
	if v.kind != KindNumber {
		panic("Value.Number: not a number")
	}
	return v.num
}

// Str returns v as a string.
// Panics if v is not a string.
func (v Value) Str() string {
	if v.kind != KindString {
		panic("Value.Str: not a string")
	}
	return v.str
}

// Record returns the record held by v.
// Panics if v is not a record.
func (v Value) Record() Record {
	if !v.IsRecord() {
		panic("Value.Record: not a record")
	}
	return v.rec
}

// IsTruthy reports whether v counts as true in conditionals. A value is
// false only if it is absent or a number fuzzily equal to zero; everything
// else, including the empty string and all records, is true.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case KindNone:
		return false
	case KindNumber:
		return !physics.FuzzZero(v.num)
	default:
		return true
	}
}

// Equal compares two values: numbers within the system tolerance, strings
// exactly, records by identity.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindNumber:
		return physics.FuzzEqual(v.num, o.num)
	case KindString:
		return v.str == o.str
	default:
		return v.rec == o.rec
	}
}

// String returns a human-readable rendering, used by the disassembler and
// trace output.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "none"
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.str)
	default:
		return v.rec.String()
	}
}

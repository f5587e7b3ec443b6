package vm

import (
	"fmt"
)

// Address is a polymorphic assignable location: either a symbol-table slot
// or a named field of an existing record. Reading an address does not
// consume anything until a fetch resolves it; assignment opcodes resolve an
// address and a value and write through it.
type Address interface {
	Fetch(st *SymTab) (Value, error)
	Store(st *SymTab, v Value) error
	String() string
}

// ---------------------------------------------------------------------------
// SymbolAddress
// ---------------------------------------------------------------------------

// SymbolAddress addresses a variable by name. Tier resolution and write
// rules live in SymTab; the address is just the name.
type SymbolAddress struct {
	Name string
}

func (a SymbolAddress) Fetch(st *SymTab) (Value, error) {
	v, ok := st.Lookup(a.Name)
	if !ok {
		return None, fmt.Errorf("undefined variable %q", a.Name)
	}
	return v, nil
}

func (a SymbolAddress) Store(st *SymTab, v Value) error {
	return st.Assign(a.Name, v)
}

func (a SymbolAddress) String() string {
	return a.Name
}

// ---------------------------------------------------------------------------
// FieldAddress
// ---------------------------------------------------------------------------

// FieldAddress addresses a named field of a record instance. The address is
// valid only if the record exists and the incoming value matches the field's
// declared kind; both violations are user errors, never silent coercions.
type FieldAddress struct {
	Rec   Record
	Field string
}

func (a FieldAddress) Fetch(st *SymTab) (Value, error) {
	if a.Rec == nil {
		return None, fmt.Errorf("field %q read from a missing record", a.Field)
	}
	return a.Rec.Field(a.Field)
}

func (a FieldAddress) Store(st *SymTab, v Value) error {
	if a.Rec == nil {
		return fmt.Errorf("field %q assigned on a missing record", a.Field)
	}
	return a.Rec.SetField(a.Field, v)
}

func (a FieldAddress) String() string {
	if a.Rec == nil {
		return "<nil>." + a.Field
	}
	return fmt.Sprintf("%s.%s", a.Rec.RecordKind(), a.Field)
}

package vm

import (
	"fmt"
)

// SymTab holds the three coexisting variable tiers:
//
//   - transient: ordinary script variables, reset at the start of every pass;
//   - sticky: variables bound with the static-bind opcode, surviving across
//     passes. Writes during a pass go to a staged overlay that commits only
//     when the pass finishes successfully, so an abandoned pass never leaks
//     partial state;
//   - reactive: control-bound variables, readable like any other name but
//     writable only through their control.
//
// Read precedence is transient, then sticky, then reactive. A reactive bind
// mirrors the control's current value into the transient tier so same-pass
// reads resolve immediately.
type SymTab struct {
	transient map[string]Value
	sticky    map[string]Value // committed, survives passes
	staged    map[string]Value // sticky writes of the current pass
	reactive  map[string]*Control

	// reactive names bound by an opcode during the current pass; a second
	// bind for any of these is the "already defined" user error.
	passBound map[string]bool
}

// NewSymTab creates an empty symbol table.
func NewSymTab() *SymTab {
	return &SymTab{
		transient: make(map[string]Value),
		sticky:    make(map[string]Value),
		staged:    make(map[string]Value),
		reactive:  make(map[string]*Control),
		passBound: make(map[string]bool),
	}
}

// Lookup resolves a plain read: transient, then staged/committed sticky,
// then the reactive control's current value.
func (st *SymTab) Lookup(name string) (Value, bool) {
	if v, ok := st.transient[name]; ok {
		return v, true
	}
	if v, ok := st.staged[name]; ok {
		return v, true
	}
	if v, ok := st.sticky[name]; ok {
		return v, true
	}
	if c, ok := st.reactive[name]; ok {
		return c.Current(), true
	}
	return None, false
}

// Exists reports whether name resolves in any tier.
func (st *SymTab) Exists(name string) bool {
	_, ok := st.Lookup(name)
	return ok
}

// Assign performs an ordinary assignment. Reactive names are read-only from
// script code; sticky names update the staged overlay; everything else goes
// to the transient tier.
func (st *SymTab) Assign(name string, v Value) error {
	if _, ok := st.reactive[name]; ok {
		return fmt.Errorf("variable %q is bound to a control and is read-only", name)
	}
	if _, ok := st.staged[name]; ok {
		st.staged[name] = v
		return nil
	}
	if _, ok := st.sticky[name]; ok {
		st.staged[name] = v
		return nil
	}
	st.transient[name] = v
	return nil
}

// BindSticky creates a sticky binding. If the name already survived a
// previous successful pass the surviving value wins and the initializer is
// ignored; that is the whole point of the tier. A transient entry for the
// name is removed without preserving its value. Binding a reactive name
// sticky is a user error.
func (st *SymTab) BindSticky(name string, initial Value) error {
	if _, ok := st.reactive[name]; ok {
		return fmt.Errorf("cannot redefine control variable %q as static", name)
	}
	delete(st.transient, name)
	if _, ok := st.staged[name]; ok {
		return nil
	}
	if _, ok := st.sticky[name]; ok {
		return nil
	}
	st.staged[name] = initial
	return nil
}

// BindReactive installs a control binding for name and returns the control
// that ends up bound. Binding a name twice in one pass is the "already
// defined" user error. If a control for the name survives from an earlier
// pass of the same loaded program, that control is adopted — its current
// value, possibly mutated by the UI between passes, is authoritative — and
// the candidate is discarded. Any transient entry for the name is removed;
// the control's current value is mirrored into the transient tier.
func (st *SymTab) BindReactive(name string, candidate *Control) (*Control, error) {
	if st.passBound[name] {
		return nil, fmt.Errorf("control variable %q is already defined", name)
	}
	if _, ok := st.staged[name]; ok {
		return nil, fmt.Errorf("cannot redefine static variable %q as a control", name)
	}
	if _, ok := st.sticky[name]; ok {
		return nil, fmt.Errorf("cannot redefine static variable %q as a control", name)
	}

	ctl := candidate
	if existing, ok := st.reactive[name]; ok {
		ctl = existing
	}

	st.passBound[name] = true
	delete(st.transient, name)
	st.transient[name] = ctl.Current()
	st.reactive[name] = ctl
	return ctl, nil
}

// Reactive returns the control bound to name, if any.
func (st *SymTab) Reactive(name string) (*Control, bool) {
	c, ok := st.reactive[name]
	return c, ok
}

// BeginPass resets per-pass state: the transient tier, the sticky staging
// overlay, and the bound-this-pass set. Sticky and reactive tiers carry over.
func (st *SymTab) BeginPass() {
	st.transient = make(map[string]Value)
	st.staged = make(map[string]Value)
	st.passBound = make(map[string]bool)
}

// CommitSticky publishes the staged sticky writes. Called only after a pass
// completes successfully.
func (st *SymTab) CommitSticky() {
	for k, v := range st.staged {
		st.sticky[k] = v
	}
	st.staged = make(map[string]Value)
}

// DiscardPass drops staged sticky writes of an abandoned or failed pass.
func (st *SymTab) DiscardPass() {
	st.staged = make(map[string]Value)
}

// ResetReactive tears down the reactive tier. Called when the script is
// reloaded; controls are recreated by their defining opcodes.
func (st *SymTab) ResetReactive() {
	st.reactive = make(map[string]*Control)
	st.passBound = make(map[string]bool)
}

// StickySnapshot returns a copy of the committed sticky tier, for
// persistence by the host.
func (st *SymTab) StickySnapshot() map[string]Value {
	out := make(map[string]Value, len(st.sticky))
	for k, v := range st.sticky {
		out[k] = v
	}
	return out
}

// SeedSticky pre-populates the committed sticky tier, typically from a
// persisted snapshot, before the first pass.
func (st *SymTab) SeedSticky(m map[string]Value) {
	for k, v := range m {
		st.sticky[k] = v
	}
}

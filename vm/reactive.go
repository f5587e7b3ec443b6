package vm

import (
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
)

// ControlKind distinguishes the reactive variable flavors.
type ControlKind uint8

const (
	ControlRange ControlKind = iota
	ControlToggle
	ControlChoice
	ControlAnimate
)

var controlKindNames = [...]string{"range", "toggle", "choice", "animate"}

func (k ControlKind) String() string {
	if int(k) < len(controlKindNames) {
		return controlKindNames[k]
	}
	return fmt.Sprintf("control(%d)", k)
}

// Control is a reactive variable record: the value lives here, mirrors UI
// widget state, and is mutated externally between render passes. Script
// code reads it through the symbol table but can never assign it.
//
// Controls carry an opaque handle so the UI layer wires widgets to records
// it was handed at creation time instead of looking names up later.
type Control struct {
	kind          ControlKind
	name          string
	label         string
	handle        string
	resetOnChange bool

	// The UI and the animation driver mutate current from their own
	// goroutines while the worker reads it. mu also guards onChange.
	mu      sync.Mutex
	current float64 // toggle: 0/1; choice: index; range/animate: value

	min, max, step float64  // range
	end            float64  // animate terminal value
	hasEnd         bool     // animate: whether end is set
	choices        []string // choice labels

	onChange func(*Control)
}

func newControl(kind ControlKind, name, label string, reset bool) *Control {
	return &Control{
		kind:          kind,
		name:          name,
		label:         label,
		handle:        uuid.NewString(),
		resetOnChange: reset,
	}
}

// NewRangeControl creates a slider-style control with domain [min, max].
func NewRangeControl(name, label string, initial, min, max, step float64, reset bool) (*Control, error) {
	if min > max {
		return nil, fmt.Errorf("range control %q: min %g exceeds max %g", name, min, max)
	}
	if initial < min || initial > max {
		return nil, fmt.Errorf("range control %q: initial %g outside [%g, %g]", name, initial, min, max)
	}
	c := newControl(ControlRange, name, label, reset)
	c.current = initial
	c.min, c.max, c.step = min, max, step
	return c, nil
}

// NewToggleControl creates a checkbox-style control holding 0 or 1.
func NewToggleControl(name, label string, initial bool, reset bool) *Control {
	c := newControl(ControlToggle, name, label, reset)
	if initial {
		c.current = 1
	}
	return c
}

// NewChoiceControl creates a drop-down-style control holding an index into
// its label set.
func NewChoiceControl(name, label string, choices []string, initial int, reset bool) (*Control, error) {
	if len(choices) == 0 {
		return nil, fmt.Errorf("choice control %q: no choices", name)
	}
	if initial < 0 || initial >= len(choices) {
		return nil, fmt.Errorf("choice control %q: initial index %d outside 0..%d",
			name, initial, len(choices)-1)
	}
	c := newControl(ControlChoice, name, label, reset)
	c.current = float64(initial)
	c.choices = append([]string(nil), choices...)
	return c, nil
}

// NewAnimateControl creates a time-driven variable advanced step by step by
// the external animation driver. end is ignored when hasEnd is false.
func NewAnimateControl(name, label string, initial, step float64, end float64, hasEnd bool, reset bool) (*Control, error) {
	if step == 0 {
		return nil, fmt.Errorf("animate control %q: step must be nonzero", name)
	}
	c := newControl(ControlAnimate, name, label, reset)
	c.current = initial
	c.step = step
	c.end = end
	c.hasEnd = hasEnd
	return c, nil
}

// Kind returns the control's flavor.
func (c *Control) Kind() ControlKind { return c.kind }

// Name returns the bound script variable name.
func (c *Control) Name() string { return c.name }

// Label returns the display label for the UI widget.
func (c *Control) Label() string { return c.label }

// Handle returns the opaque registry handle.
func (c *Control) Handle() string { return c.handle }

// ResetOnChange reports whether a UI change should restart the diagram from
// the beginning rather than update it in place.
func (c *Control) ResetOnChange() bool { return c.resetOnChange }

// Choices returns the choice label set (nil for other kinds).
func (c *Control) Choices() []string { return c.choices }

// Domain returns min, max, step for range and animate controls.
func (c *Control) Domain() (min, max, step float64) { return c.min, c.max, c.step }

// End returns the animate terminal value and whether one is set.
func (c *Control) End() (float64, bool) { return c.end, c.hasEnd }

// Current returns the control's current value as a script value.
func (c *Control) Current() Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FromNumber(c.current)
}

// SetCurrent mutates the control from the UI side. Range values clamp to
// the domain, toggles normalize to 0/1, choice indices must be valid.
// The change hook fires after the mutation.
func (c *Control) SetCurrent(v Value) error {
	if !v.IsNumber() {
		return fmt.Errorf("control %q: value must be a number, got %s", c.name, v.Kind())
	}
	f := v.Number()
	c.mu.Lock()
	switch c.kind {
	case ControlRange:
		c.current = math.Min(math.Max(f, c.min), c.max)
	case ControlToggle:
		if v.IsTruthy() {
			c.current = 1
		} else {
			c.current = 0
		}
	case ControlChoice:
		idx := int(f)
		if float64(idx) != f || idx < 0 || idx >= len(c.choices) {
			c.mu.Unlock()
			return fmt.Errorf("control %q: %g is not a valid choice index", c.name, f)
		}
		c.current = f
	case ControlAnimate:
		c.current = f
	}
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(c)
	}
	return nil
}

// OnChange installs the change-notification hook used by the UI layer.
func (c *Control) OnChange(fn func(*Control)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Advance steps an animate control toward its terminal value, clamping at
// the end. It returns true when the control has finished (or is not an
// animate control at all).
func (c *Control) Advance() bool {
	if c.kind != ControlAnimate {
		return true
	}
	c.mu.Lock()
	if c.hasEnd && c.current == c.end {
		c.mu.Unlock()
		return true
	}
	c.current += c.step
	done := false
	if c.hasEnd {
		if (c.step > 0 && c.current >= c.end) || (c.step < 0 && c.current <= c.end) {
			c.current = c.end
			done = true
		}
	}
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(c)
	}
	return done
}

// ---------------------------------------------------------------------------
// ControlRegistry
// ---------------------------------------------------------------------------

// ControlRegistry tracks controls by handle, in creation order, for the UI
// layer to enumerate and wire up. The worker registers and resets while the
// UI and the animation driver enumerate, so every method locks.
type ControlRegistry struct {
	mu       sync.Mutex
	byHandle map[string]*Control
	order    []*Control
}

// NewControlRegistry creates an empty registry.
func NewControlRegistry() *ControlRegistry {
	return &ControlRegistry{byHandle: make(map[string]*Control)}
}

// Register adds a control. Registering the same control twice is a no-op.
func (r *ControlRegistry) Register(c *Control) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byHandle[c.Handle()]; ok {
		return
	}
	r.byHandle[c.Handle()] = c
	r.order = append(r.order, c)
}

// ByHandle resolves a handle to its control.
func (r *ControlRegistry) ByHandle(h string) (*Control, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byHandle[h]
	return c, ok
}

// Controls returns all registered controls in creation order.
func (r *ControlRegistry) Controls() []*Control {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Control(nil), r.order...)
}

// Reset empties the registry, for script reloads.
func (r *ControlRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byHandle = make(map[string]*Control)
	r.order = nil
}

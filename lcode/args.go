package lcode

import (
	"fmt"
	"math"

	"github.com/ahearne/lightcone/physics"
	"github.com/ahearne/lightcone/vm"
)

// Args is one figure's typed argument record. SetProp fills it from the
// interpreter's property bag with kind checking; Finalize derives dependent
// geometry exactly once (second calls are no-ops); InFrame returns a copy
// with every frame-dependent coordinate re-expressed relative to another
// frame, leaving the receiver untouched.
type Args interface {
	Kind() vm.FigKind
	SetProp(name string, v vm.Value) error
	Finalize() error
	InFrame(f *vm.Frame) (Args, error)

	draw(dc DrawContext)
}

// NewArgs creates the empty argument record for a figure kind.
func NewArgs(kind vm.FigKind) (Args, error) {
	switch kind {
	case vm.FigAxes:
		return &AxesArgs{}, nil
	case vm.FigGrid:
		return &GridArgs{}, nil
	case vm.FigEvent:
		return &EventArgs{}, nil
	case vm.FigLine:
		return &LineArgs{}, nil
	case vm.FigWorldline:
		return &WorldlineArgs{}, nil
	case vm.FigPath:
		return &PathArgs{}, nil
	case vm.FigLabel:
		return &LabelArgs{}, nil
	case vm.FigDisplay:
		return &DisplayArgs{}, nil
	default:
		return nil, fmt.Errorf("unknown figure kind %s", kind)
	}
}

// ---------------------------------------------------------------------------
// Property decoding
// ---------------------------------------------------------------------------

func propErr(fig vm.FigKind, name string, want string, v vm.Value) error {
	return fmt.Errorf("%s: property %q expects a %s, got %s", fig, name, want, v.Kind())
}

func noProp(fig vm.FigKind, name string) error {
	return fmt.Errorf("%s has no property %q", fig, name)
}

func propNumber(fig vm.FigKind, name string, v vm.Value) (float64, error) {
	if !v.IsNumber() {
		return 0, propErr(fig, name, "number", v)
	}
	return v.Number(), nil
}

func propString(fig vm.FigKind, name string, v vm.Value) (string, error) {
	if !v.IsString() {
		return "", propErr(fig, name, "string", v)
	}
	return v.Str(), nil
}

func propRecord(fig vm.FigKind, name string, v vm.Value, k vm.Kind) (vm.Record, error) {
	if v.Kind() != k {
		return nil, propErr(fig, name, k.String(), v)
	}
	return v.Record(), nil
}

// ---------------------------------------------------------------------------
// Geometry helpers
// ---------------------------------------------------------------------------

// homeFrame is the identity frame used when a figure names none.
var homeFrame = &vm.Frame{}

func orHome(f *vm.Frame) *vm.Frame {
	if f == nil {
		return homeFrame
	}
	return f
}

// coordPt converts a home-frame coord record to a diagram point.
func coordPt(c *vm.Coord) Pt {
	return Pt{T: c.T, X: c.X}
}

// coordInFrame re-expresses a home-frame coord in frame f.
func coordInFrame(c *vm.Coord, f *vm.Frame) (*vm.Coord, error) {
	t, x, err := physics.Boost(c.T-f.T0, c.X-f.X0, f.V)
	if err != nil {
		return nil, err
	}
	return &vm.Coord{T: t, X: x}, nil
}

// coordFromFrame expresses frame-f coordinates (t, x) in the home frame.
func coordFromFrame(t, x float64, f *vm.Frame) (Pt, error) {
	bt, bx, err := physics.Unboost(t, x, f.V)
	if err != nil {
		return Pt{}, err
	}
	return Pt{T: bt + f.T0, X: bx + f.X0}, nil
}

// frameInFrame re-expresses frame g relative to frame f.
func frameInFrame(g, f *vm.Frame) (*vm.Frame, error) {
	v, err := physics.AddVelocities(g.V, -f.V)
	if err != nil {
		return nil, err
	}
	origin, err := coordInFrame(&vm.Coord{T: g.T0, X: g.X0}, f)
	if err != nil {
		return nil, err
	}
	return &vm.Frame{V: v, T0: origin.T, X0: origin.X}, nil
}

// clipLine clips the infinite line through p with direction (dt, dx) against
// a bounds rectangle. The third result is false when the line misses the
// rectangle entirely.
func clipLine(p Pt, dt, dx float64, b *vm.Bounds) (Pt, Pt, bool) {
	if physics.FuzzZero(dt) && physics.FuzzZero(dx) {
		return Pt{}, Pt{}, false
	}
	s0, s1 := math.Inf(-1), math.Inf(1)
	clip := func(d, origin, lo, hi float64) bool {
		if physics.FuzzZero(d) {
			return origin >= lo-physics.Tolerance && origin <= hi+physics.Tolerance
		}
		a, c := (lo-origin)/d, (hi-origin)/d
		if a > c {
			a, c = c, a
		}
		if a > s0 {
			s0 = a
		}
		if c < s1 {
			s1 = c
		}
		return true
	}
	if !clip(dt, p.T, b.TMin, b.TMax) || !clip(dx, p.X, b.XMin, b.XMax) || s0 > s1 {
		return Pt{}, Pt{}, false
	}
	return Pt{T: p.T + s0*dt, X: p.X + s0*dx}, Pt{T: p.T + s1*dt, X: p.X + s1*dx}, true
}

package vm

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ahearne/lightcone/physics"
)

// The builtin families (math, relativity, unit conversions, record
// constructors) differ only in which pure transformation they apply, so a
// single dispatcher maps names to small arity-tagged closures sharing one
// execution wrapper. The wrapper rejects absent arguments and checks the
// argument count; each closure states its arity by which slot it fills.

// builtinFunc is one dispatch table entry. Exactly one of the fn slots is
// set, matching argc; fnN serves variable-arity builtins (argc -1).
type builtinFunc struct {
	name string
	argc int
	fn0  func(in *Interp) (Value, error)
	fn1  func(in *Interp, a Value) (Value, error)
	fn2  func(in *Interp, a, b Value) (Value, error)
	fnN  func(in *Interp, args []Value) (Value, error)
}

// FuncTable maps builtin names to their transformations.
type FuncTable struct {
	fns map[string]*builtinFunc
}

func newFuncTable() *FuncTable {
	return &FuncTable{fns: make(map[string]*builtinFunc)}
}

func (t *FuncTable) register(f *builtinFunc) {
	if _, ok := t.fns[f.name]; ok {
		panic("duplicate builtin " + f.name)
	}
	t.fns[f.name] = f
}

func (t *FuncTable) register0(name string, fn func(in *Interp) (Value, error)) {
	t.register(&builtinFunc{name: name, argc: 0, fn0: fn})
}

func (t *FuncTable) register1(name string, fn func(in *Interp, a Value) (Value, error)) {
	t.register(&builtinFunc{name: name, argc: 1, fn1: fn})
}

func (t *FuncTable) register2(name string, fn func(in *Interp, a, b Value) (Value, error)) {
	t.register(&builtinFunc{name: name, argc: 2, fn2: fn})
}

func (t *FuncTable) registerN(name string, fn func(in *Interp, args []Value) (Value, error)) {
	t.register(&builtinFunc{name: name, argc: -1, fnN: fn})
}

// Call runs a builtin through the uniform wrapper. An unknown name or an
// argument-count mismatch is a construction fault: validation admitted a
// malformed program, which is an upstream defect, so this panics. Absent
// arguments are the user error "value is undefined".
func (t *FuncTable) Call(in *Interp, name string, args []Value) (Value, error) {
	f, ok := t.fns[name]
	if !ok {
		panic(fmt.Sprintf("unknown builtin %q", name))
	}
	if f.argc >= 0 && len(args) != f.argc {
		panic(fmt.Sprintf("builtin %q called with %d arguments, declared %d", name, len(args), f.argc))
	}
	for _, a := range args {
		if a.IsNone() {
			return None, fmt.Errorf("value is undefined for %s", name)
		}
	}
	switch f.argc {
	case 0:
		return f.fn0(in)
	case 1:
		return f.fn1(in, args[0])
	case 2:
		return f.fn2(in, args[0], args[1])
	default:
		return f.fnN(in, args)
	}
}

// KnownBuiltin reports whether name is registered, for program validation.
func KnownBuiltin(name string) bool {
	_, ok := defaultFuncs.fns[name]
	return ok
}

// BuiltinArity returns the declared argument count of a builtin; -1 means
// variable arity.
func BuiltinArity(name string) (int, bool) {
	f, ok := defaultFuncs.fns[name]
	if !ok {
		return 0, false
	}
	return f.argc, true
}

// ---------------------------------------------------------------------------
// Argument helpers
// ---------------------------------------------------------------------------

func wantNumber(name string, v Value) (float64, error) {
	if !v.IsNumber() {
		return 0, fmt.Errorf("%s expects a number, got %s", name, v.Kind())
	}
	return v.Number(), nil
}

func wantRecord(name string, v Value, k Kind) (Record, error) {
	if v.Kind() != k {
		return nil, fmt.Errorf("%s expects a %s, got %s", name, k, v.Kind())
	}
	return v.Record(), nil
}

// numeric1 wraps a float transformation with its own domain check.
func numeric1(name string, fn func(float64) (float64, error)) func(*Interp, Value) (Value, error) {
	return func(in *Interp, a Value) (Value, error) {
		x, err := wantNumber(name, a)
		if err != nil {
			return None, err
		}
		y, err := fn(x)
		if err != nil {
			return None, err
		}
		return FromNumber(y), nil
	}
}

func numeric2(name string, fn func(float64, float64) (float64, error)) func(*Interp, Value, Value) (Value, error) {
	return func(in *Interp, a, b Value) (Value, error) {
		x, err := wantNumber(name, a)
		if err != nil {
			return None, err
		}
		y, err := wantNumber(name, b)
		if err != nil {
			return None, err
		}
		z, err := fn(x, y)
		if err != nil {
			return None, err
		}
		return FromNumber(z), nil
	}
}

func plain1(name string, fn func(float64) float64) func(*Interp, Value) (Value, error) {
	return numeric1(name, func(x float64) (float64, error) { return fn(x), nil })
}

func plain2(name string, fn func(float64, float64) float64) func(*Interp, Value, Value) (Value, error) {
	return numeric2(name, func(x, y float64) (float64, error) { return fn(x, y), nil })
}

// scale1 registers a unit conversion: multiply by a constant factor into the
// diagram's natural units (years and lightyears, c = 1).
func scale1(name string, factor float64) func(*Interp, Value) (Value, error) {
	return plain1(name, func(x float64) float64 { return x * factor })
}

// ---------------------------------------------------------------------------
// Default table
// ---------------------------------------------------------------------------

const (
	secondsPerYear = 31557600 // Julian year
	kmPerLightyear = 9.4607304725808e12
	auPerLightyear = 63241.077
)

var defaultFuncs = buildDefaultFuncs()

func buildDefaultFuncs() *FuncTable {
	t := newFuncTable()

	// Math family
	t.register1("sqrt", numeric1("sqrt", func(x float64) (float64, error) {
		if x < 0 {
			return 0, fmt.Errorf("sqrt of negative number %g", x)
		}
		return math.Sqrt(x), nil
	}))
	t.register1("ln", numeric1("ln", func(x float64) (float64, error) {
		if x <= 0 {
			return 0, fmt.Errorf("ln of non-positive number %g", x)
		}
		return math.Log(x), nil
	}))
	t.register1("abs", plain1("abs", math.Abs))
	t.register1("exp", plain1("exp", math.Exp))
	t.register1("sin", plain1("sin", math.Sin))
	t.register1("cos", plain1("cos", math.Cos))
	t.register1("tan", plain1("tan", math.Tan))
	t.register1("floor", plain1("floor", math.Floor))
	t.register1("ceil", plain1("ceil", math.Ceil))
	t.register2("atan2", plain2("atan2", math.Atan2))
	t.register2("pow", plain2("pow", math.Pow))
	t.register2("min", plain2("min", math.Min))
	t.register2("max", plain2("max", math.Max))
	t.register0("random", func(in *Interp) (Value, error) {
		return FromNumber(in.rand.Float64()), nil
	})

	// Relativity family
	t.register1("gamma", numeric1("gamma", physics.Gamma))
	t.register1("rapidity", numeric1("rapidity", physics.Rapidity))
	t.register1("rapidityVel", plain1("rapidityVel", physics.VelocityFromRapidity))
	t.register2("addVelocity", numeric2("addVelocity", physics.AddVelocities))
	t.register1("doppler", numeric1("doppler", physics.Doppler))
	t.register2("contract", numeric2("contract", physics.Contract))
	t.register2("dilate", numeric2("dilate", physics.Dilate))
	t.register1("intervalSq", func(in *Interp, a Value) (Value, error) {
		rec, err := wantRecord("intervalSq", a, KindInterval)
		if err != nil {
			return None, err
		}
		iv := rec.(*Interval)
		if iv.From == nil || iv.To == nil {
			return None, fmt.Errorf("intervalSq on an incomplete interval")
		}
		return FromNumber(physics.IntervalSquared(iv.To.T-iv.From.T, iv.To.X-iv.From.X)), nil
	})

	// Unit conversions into years / lightyears
	t.register1("years", scale1("years", 1))
	t.register1("days", scale1("days", 1.0/365.25))
	t.register1("hours", scale1("hours", 1.0/(365.25*24)))
	t.register1("seconds", scale1("seconds", 1.0/secondsPerYear))
	t.register1("lightyears", scale1("lightyears", 1))
	t.register1("au", scale1("au", 1.0/auPerLightyear))
	t.register1("km", scale1("km", 1.0/kmPerLightyear))

	// Record constructors
	t.register2("coord", func(in *Interp, a, b Value) (Value, error) {
		tc, err := wantNumber("coord", a)
		if err != nil {
			return None, err
		}
		xc, err := wantNumber("coord", b)
		if err != nil {
			return None, err
		}
		c, err := in.coordInDefFrame(tc, xc)
		if err != nil {
			return None, err
		}
		return FromRecord(c), nil
	})
	t.registerN("frame", func(in *Interp, args []Value) (Value, error) {
		if len(args) != 3 {
			return None, fmt.Errorf("frame expects 3 arguments, got %d", len(args))
		}
		v, err := wantNumber("frame", args[0])
		if err != nil {
			return None, err
		}
		if _, err := physics.Gamma(v); err != nil {
			return None, fmt.Errorf("frame: %v", err)
		}
		t0, err := wantNumber("frame", args[1])
		if err != nil {
			return None, err
		}
		x0, err := wantNumber("frame", args[2])
		if err != nil {
			return None, err
		}
		return FromRecord(&Frame{V: v, T0: t0, X0: x0}), nil
	})
	t.registerN("observer", func(in *Interp, args []Value) (Value, error) {
		if len(args) != 3 {
			return None, fmt.Errorf("observer expects 3 arguments, got %d", len(args))
		}
		rec, err := wantRecord("observer", args[0], KindFrame)
		if err != nil {
			return None, err
		}
		tmin, err := wantNumber("observer", args[1])
		if err != nil {
			return None, err
		}
		tmax, err := wantNumber("observer", args[2])
		if err != nil {
			return None, err
		}
		return FromRecord(&Observer{Frame: rec.(*Frame), TMin: tmin, TMax: tmax}), nil
	})
	t.register2("line", func(in *Interp, a, b Value) (Value, error) {
		rec, err := wantRecord("line", a, KindCoord)
		if err != nil {
			return None, err
		}
		slope, err := wantNumber("line", b)
		if err != nil {
			return None, err
		}
		return FromRecord(&Line{Point: rec.(*Coord), Slope: slope}), nil
	})
	t.register2("interval", func(in *Interp, a, b Value) (Value, error) {
		from, err := wantRecord("interval", a, KindCoord)
		if err != nil {
			return None, err
		}
		to, err := wantRecord("interval", b, KindCoord)
		if err != nil {
			return None, err
		}
		return FromRecord(&Interval{From: from.(*Coord), To: to.(*Coord)}), nil
	})
	t.registerN("bounds", func(in *Interp, args []Value) (Value, error) {
		if len(args) != 4 {
			return None, fmt.Errorf("bounds expects 4 arguments, got %d", len(args))
		}
		n := make([]float64, 4)
		for i, a := range args {
			f, err := wantNumber("bounds", a)
			if err != nil {
				return None, err
			}
			n[i] = f
		}
		if n[0] > n[1] || n[2] > n[3] {
			return None, fmt.Errorf("bounds: empty region t=[%g,%g] x=[%g,%g]", n[0], n[1], n[2], n[3])
		}
		return FromRecord(&Bounds{TMin: n[0], TMax: n[1], XMin: n[2], XMax: n[3]}), nil
	})
	t.registerN("path", func(in *Interp, args []Value) (Value, error) {
		p := &Path{Points: make([]*Coord, 0, len(args))}
		for _, a := range args {
			rec, err := wantRecord("path", a, KindCoord)
			if err != nil {
				return None, err
			}
			p.Points = append(p.Points, rec.(*Coord))
		}
		return FromRecord(p), nil
	})

	// Frame re-expression
	t.register2("toFrame", func(in *Interp, a, b Value) (Value, error) {
		crec, err := wantRecord("toFrame", a, KindCoord)
		if err != nil {
			return None, err
		}
		frec, err := wantRecord("toFrame", b, KindFrame)
		if err != nil {
			return None, err
		}
		c, f := crec.(*Coord), frec.(*Frame)
		bt, bx, err := physics.Boost(c.T-f.T0, c.X-f.X0, f.V)
		if err != nil {
			return None, fmt.Errorf("toFrame: %v", err)
		}
		return FromRecord(&Coord{T: bt, X: bx}), nil
	})
	t.register2("fromFrame", func(in *Interp, a, b Value) (Value, error) {
		crec, err := wantRecord("fromFrame", a, KindCoord)
		if err != nil {
			return None, err
		}
		frec, err := wantRecord("fromFrame", b, KindFrame)
		if err != nil {
			return None, err
		}
		c, f := crec.(*Coord), frec.(*Frame)
		bt, bx, err := physics.Unboost(c.T, c.X, f.V)
		if err != nil {
			return None, fmt.Errorf("fromFrame: %v", err)
		}
		return FromRecord(&Coord{T: bt + f.T0, X: bx + f.X0}), nil
	})

	return t
}

// rngSource is the default source for the random builtin. Runs that need a
// reproducible stream bind a sticky seed and reseed through NewInterpSeeded.
func rngSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

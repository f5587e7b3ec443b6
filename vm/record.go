package vm

import (
	"fmt"
)

// Record is a built-in compound value with named, addressable fields.
// Each field has a declared kind; writes of a mismatched kind are rejected
// before any mutation is observable.
type Record interface {
	RecordKind() Kind
	Field(name string) (Value, error)
	SetField(name string, v Value) error
	String() string
}

// fieldKinds declares, per record kind, the assignable fields and their
// kinds. Fields absent from this table are either unknown or read-only.
var fieldKinds = map[Kind]map[string]Kind{
	KindCoord:    {"t": KindNumber, "x": KindNumber},
	KindFrame:    {"v": KindNumber, "t0": KindNumber, "x0": KindNumber},
	KindObserver: {"frame": KindFrame, "tmin": KindNumber, "tmax": KindNumber},
	KindLine:     {"point": KindCoord, "slope": KindNumber},
	KindInterval: {"from": KindCoord, "to": KindCoord},
	KindBounds:   {"tmin": KindNumber, "tmax": KindNumber, "xmin": KindNumber, "xmax": KindNumber},
	KindPath:     {},
}

// FieldKind returns the declared kind of a record field.
func FieldKind(rec Kind, field string) (Kind, bool) {
	k, ok := fieldKinds[rec][field]
	return k, ok
}

// checkField validates a field write against the declared kind table.
// It returns the error that surfaces as a user execution error.
func checkField(rec Kind, field string, v Value) error {
	want, ok := fieldKinds[rec][field]
	if !ok {
		return fmt.Errorf("%s has no assignable field %q", rec, field)
	}
	if v.Kind() != want {
		return fmt.Errorf("cannot assign %s to field %q of %s (expected %s)",
			v.Kind(), field, rec, want)
	}
	return nil
}

func errNoField(rec Kind, field string) error {
	return fmt.Errorf("%s has no field %q", rec, field)
}

// ---------------------------------------------------------------------------
// Coord: a spacetime event (t, x) in the home frame
// ---------------------------------------------------------------------------

type Coord struct {
	T, X float64
}

func (c *Coord) RecordKind() Kind { return KindCoord }

func (c *Coord) Field(name string) (Value, error) {
	switch name {
	case "t":
		return FromNumber(c.T), nil
	case "x":
		return FromNumber(c.X), nil
	}
	return None, errNoField(KindCoord, name)
}

func (c *Coord) SetField(name string, v Value) error {
	if err := checkField(KindCoord, name, v); err != nil {
		return err
	}
	switch name {
	case "t":
		c.T = v.Number()
	case "x":
		c.X = v.Number()
	}
	return nil
}

func (c *Coord) String() string {
	return fmt.Sprintf("coord(t=%g, x=%g)", c.T, c.X)
}

// ---------------------------------------------------------------------------
// Frame: a reference frame moving at v with origin event (t0, x0)
// ---------------------------------------------------------------------------

type Frame struct {
	V      float64 // velocity as a fraction of c, |v| < 1
	T0, X0 float64 // origin event in the home frame
}

func (f *Frame) RecordKind() Kind { return KindFrame }

func (f *Frame) Field(name string) (Value, error) {
	switch name {
	case "v":
		return FromNumber(f.V), nil
	case "t0":
		return FromNumber(f.T0), nil
	case "x0":
		return FromNumber(f.X0), nil
	}
	return None, errNoField(KindFrame, name)
}

func (f *Frame) SetField(name string, v Value) error {
	if err := checkField(KindFrame, name, v); err != nil {
		return err
	}
	switch name {
	case "v":
		f.V = v.Number()
	case "t0":
		f.T0 = v.Number()
	case "x0":
		f.X0 = v.Number()
	}
	return nil
}

func (f *Frame) String() string {
	return fmt.Sprintf("frame(v=%g, t0=%g, x0=%g)", f.V, f.T0, f.X0)
}

// ---------------------------------------------------------------------------
// Observer: a frame plus the coordinate-time span of its worldline
// ---------------------------------------------------------------------------

type Observer struct {
	Frame      *Frame
	TMin, TMax float64
}

func (o *Observer) RecordKind() Kind { return KindObserver }

func (o *Observer) Field(name string) (Value, error) {
	switch name {
	case "frame":
		return FromRecord(o.Frame), nil
	case "tmin":
		return FromNumber(o.TMin), nil
	case "tmax":
		return FromNumber(o.TMax), nil
	}
	return None, errNoField(KindObserver, name)
}

func (o *Observer) SetField(name string, v Value) error {
	if err := checkField(KindObserver, name, v); err != nil {
		return err
	}
	switch name {
	case "frame":
		o.Frame = v.Record().(*Frame)
	case "tmin":
		o.TMin = v.Number()
	case "tmax":
		o.TMax = v.Number()
	}
	return nil
}

func (o *Observer) String() string {
	return fmt.Sprintf("observer(%v, tmin=%g, tmax=%g)", o.Frame, o.TMin, o.TMax)
}

// ---------------------------------------------------------------------------
// Line: an infinite line through a point with a given slope dx/dt
// ---------------------------------------------------------------------------

type Line struct {
	Point *Coord
	Slope float64
}

func (l *Line) RecordKind() Kind { return KindLine }

func (l *Line) Field(name string) (Value, error) {
	switch name {
	case "point":
		return FromRecord(l.Point), nil
	case "slope":
		return FromNumber(l.Slope), nil
	}
	return None, errNoField(KindLine, name)
}

func (l *Line) SetField(name string, v Value) error {
	if err := checkField(KindLine, name, v); err != nil {
		return err
	}
	switch name {
	case "point":
		l.Point = v.Record().(*Coord)
	case "slope":
		l.Slope = v.Number()
	}
	return nil
}

func (l *Line) String() string {
	return fmt.Sprintf("line(%v, slope=%g)", l.Point, l.Slope)
}

// ---------------------------------------------------------------------------
// Interval: the separation between two events
// ---------------------------------------------------------------------------

type Interval struct {
	From, To *Coord
}

func (iv *Interval) RecordKind() Kind { return KindInterval }

func (iv *Interval) Field(name string) (Value, error) {
	switch name {
	case "from":
		return FromRecord(iv.From), nil
	case "to":
		return FromRecord(iv.To), nil
	}
	return None, errNoField(KindInterval, name)
}

func (iv *Interval) SetField(name string, v Value) error {
	if err := checkField(KindInterval, name, v); err != nil {
		return err
	}
	switch name {
	case "from":
		iv.From = v.Record().(*Coord)
	case "to":
		iv.To = v.Record().(*Coord)
	}
	return nil
}

func (iv *Interval) String() string {
	return fmt.Sprintf("interval(%v -> %v)", iv.From, iv.To)
}

// ---------------------------------------------------------------------------
// Bounds: the visible region of the diagram
// ---------------------------------------------------------------------------

type Bounds struct {
	TMin, TMax, XMin, XMax float64
}

func (b *Bounds) RecordKind() Kind { return KindBounds }

func (b *Bounds) Field(name string) (Value, error) {
	switch name {
	case "tmin":
		return FromNumber(b.TMin), nil
	case "tmax":
		return FromNumber(b.TMax), nil
	case "xmin":
		return FromNumber(b.XMin), nil
	case "xmax":
		return FromNumber(b.XMax), nil
	}
	return None, errNoField(KindBounds, name)
}

func (b *Bounds) SetField(name string, v Value) error {
	if err := checkField(KindBounds, name, v); err != nil {
		return err
	}
	switch name {
	case "tmin":
		b.TMin = v.Number()
	case "tmax":
		b.TMax = v.Number()
	case "xmin":
		b.XMin = v.Number()
	case "xmax":
		b.XMax = v.Number()
	}
	return nil
}

func (b *Bounds) String() string {
	return fmt.Sprintf("bounds(t=[%g,%g], x=[%g,%g])", b.TMin, b.TMax, b.XMin, b.XMax)
}

// ---------------------------------------------------------------------------
// Path: an ordered sequence of events
// ---------------------------------------------------------------------------

type Path struct {
	Points []*Coord
}

func (p *Path) RecordKind() Kind { return KindPath }

// Field exposes "count" read-only; individual points are reached through the
// path builtins, not field addresses.
func (p *Path) Field(name string) (Value, error) {
	if name == "count" {
		return FromNumber(float64(len(p.Points))), nil
	}
	return None, errNoField(KindPath, name)
}

func (p *Path) SetField(name string, v Value) error {
	if name == "count" {
		return fmt.Errorf("field %q of path is read-only", name)
	}
	return checkField(KindPath, name, v)
}

func (p *Path) String() string {
	return fmt.Sprintf("path(%d points)", len(p.Points))
}

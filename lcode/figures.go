package lcode

import (
	"fmt"
	"math"

	"github.com/ahearne/lightcone/physics"
	"github.com/ahearne/lightcone/vm"
)

// worldlineSamples is the sample count for hyperbolic worldline curves.
const worldlineSamples = 64

// defaultEventRadius is the dot radius, in diagram units, for event markers.
const defaultEventRadius = 0.06

// ---------------------------------------------------------------------------
// Axes
// ---------------------------------------------------------------------------

// AxesArgs draws the time and space axes of a frame, clipped to the diagram
// bounds. A moving frame's axes tilt toward the light cone.
type AxesArgs struct {
	Frame  *vm.Frame
	Bounds *vm.Bounds
	TLabel string
	XLabel string

	TAxis, XAxis [2]Pt
	hasT, hasX   bool
	done         bool
}

func (a *AxesArgs) Kind() vm.FigKind { return vm.FigAxes }

func (a *AxesArgs) SetProp(name string, v vm.Value) error {
	switch name {
	case "frame":
		rec, err := propRecord(a.Kind(), name, v, vm.KindFrame)
		if err != nil {
			return err
		}
		a.Frame = rec.(*vm.Frame)
	case "bounds":
		rec, err := propRecord(a.Kind(), name, v, vm.KindBounds)
		if err != nil {
			return err
		}
		a.Bounds = rec.(*vm.Bounds)
	case "tlabel":
		s, err := propString(a.Kind(), name, v)
		if err != nil {
			return err
		}
		a.TLabel = s
	case "xlabel":
		s, err := propString(a.Kind(), name, v)
		if err != nil {
			return err
		}
		a.XLabel = s
	default:
		return noProp(a.Kind(), name)
	}
	return nil
}

func (a *AxesArgs) Finalize() error {
	if a.done {
		return nil
	}
	if a.Bounds == nil {
		return fmt.Errorf("axes: bounds is not set")
	}
	f := orHome(a.Frame)
	origin := Pt{T: f.T0, X: f.X0}
	// Time axis direction (1, v); space axis direction (v, 1).
	a.TAxis[0], a.TAxis[1], a.hasT = clipLine(origin, 1, f.V, a.Bounds)
	a.XAxis[0], a.XAxis[1], a.hasX = clipLine(origin, f.V, 1, a.Bounds)
	a.done = true
	return nil
}

func (a *AxesArgs) InFrame(f *vm.Frame) (Args, error) {
	nf, err := frameInFrame(orHome(a.Frame), f)
	if err != nil {
		return nil, err
	}
	out := &AxesArgs{Frame: nf, Bounds: a.Bounds, TLabel: a.TLabel, XLabel: a.XLabel}
	if a.done {
		if err := out.Finalize(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (a *AxesArgs) draw(dc DrawContext) {
	if a.hasT {
		dc.Line(a.TAxis[0], a.TAxis[1])
		if a.TLabel != "" {
			dc.Text(a.TAxis[1], a.TLabel)
		}
	}
	if a.hasX {
		dc.Line(a.XAxis[0], a.XAxis[1])
		if a.XLabel != "" {
			dc.Text(a.XAxis[1], a.XLabel)
		}
	}
}

// ---------------------------------------------------------------------------
// Grid
// ---------------------------------------------------------------------------

// GridArgs draws the coordinate grid of a frame: lines of constant time and
// constant position at a fixed spacing, clipped to the bounds.
type GridArgs struct {
	Frame   *vm.Frame
	Bounds  *vm.Bounds
	Spacing float64

	Lines [][2]Pt
	done  bool
}

func (g *GridArgs) Kind() vm.FigKind { return vm.FigGrid }

func (g *GridArgs) SetProp(name string, v vm.Value) error {
	switch name {
	case "frame":
		rec, err := propRecord(g.Kind(), name, v, vm.KindFrame)
		if err != nil {
			return err
		}
		g.Frame = rec.(*vm.Frame)
	case "bounds":
		rec, err := propRecord(g.Kind(), name, v, vm.KindBounds)
		if err != nil {
			return err
		}
		g.Bounds = rec.(*vm.Bounds)
	case "spacing":
		f, err := propNumber(g.Kind(), name, v)
		if err != nil {
			return err
		}
		g.Spacing = f
	default:
		return noProp(g.Kind(), name)
	}
	return nil
}

func (g *GridArgs) Finalize() error {
	if g.done {
		return nil
	}
	if g.Bounds == nil {
		return fmt.Errorf("grid: bounds is not set")
	}
	spacing := g.Spacing
	if spacing == 0 {
		spacing = 1
	}
	if spacing < 0 {
		return fmt.Errorf("grid: spacing %g must be positive", spacing)
	}
	f := orHome(g.Frame)
	gam, err := physics.Gamma(f.V)
	if err != nil {
		return fmt.Errorf("grid: %v", err)
	}

	// Offsets along the primed axes that can still intersect the bounds.
	r := math.Max(
		math.Max(math.Abs(g.Bounds.TMin-f.T0), math.Abs(g.Bounds.TMax-f.T0)),
		math.Max(math.Abs(g.Bounds.XMin-f.X0), math.Abs(g.Bounds.XMax-f.X0)),
	)
	n := int(r*gam/spacing) + 1

	g.Lines = g.Lines[:0]
	for k := -n; k <= n; k++ {
		s := float64(k) * spacing
		// Constant position x' = s: a worldline parallel to the time axis.
		p := Pt{T: f.T0 + gam*f.V*s, X: f.X0 + gam*s}
		if from, to, ok := clipLine(p, 1, f.V, g.Bounds); ok {
			g.Lines = append(g.Lines, [2]Pt{from, to})
		}
		// Constant time t' = s: a simultaneity line parallel to the space axis.
		p = Pt{T: f.T0 + gam*s, X: f.X0 + gam*f.V*s}
		if from, to, ok := clipLine(p, f.V, 1, g.Bounds); ok {
			g.Lines = append(g.Lines, [2]Pt{from, to})
		}
	}
	g.done = true
	return nil
}

func (g *GridArgs) InFrame(f *vm.Frame) (Args, error) {
	nf, err := frameInFrame(orHome(g.Frame), f)
	if err != nil {
		return nil, err
	}
	out := &GridArgs{Frame: nf, Bounds: g.Bounds, Spacing: g.Spacing}
	if g.done {
		if err := out.Finalize(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (g *GridArgs) draw(dc DrawContext) {
	for _, l := range g.Lines {
		dc.Line(l[0], l[1])
	}
}

// ---------------------------------------------------------------------------
// Event
// ---------------------------------------------------------------------------

// EventArgs marks a single spacetime event, optionally labeled.
type EventArgs struct {
	At     *vm.Coord
	Label  string
	Radius float64

	Point Pt
	done  bool
}

func (e *EventArgs) Kind() vm.FigKind { return vm.FigEvent }

func (e *EventArgs) SetProp(name string, v vm.Value) error {
	switch name {
	case "at":
		rec, err := propRecord(e.Kind(), name, v, vm.KindCoord)
		if err != nil {
			return err
		}
		e.At = rec.(*vm.Coord)
	case "label":
		s, err := propString(e.Kind(), name, v)
		if err != nil {
			return err
		}
		e.Label = s
	case "radius":
		f, err := propNumber(e.Kind(), name, v)
		if err != nil {
			return err
		}
		e.Radius = f
	default:
		return noProp(e.Kind(), name)
	}
	return nil
}

func (e *EventArgs) Finalize() error {
	if e.done {
		return nil
	}
	if e.At == nil {
		return fmt.Errorf("event: at is not set")
	}
	if e.Radius == 0 {
		e.Radius = defaultEventRadius
	}
	// The script can still mutate the record through a field address after
	// the command is emitted; draw reads the snapshot, not the record.
	e.Point = coordPt(e.At)
	e.done = true
	return nil
}

func (e *EventArgs) InFrame(f *vm.Frame) (Args, error) {
	at, err := coordInFrame(e.At, f)
	if err != nil {
		return nil, err
	}
	out := &EventArgs{At: at, Label: e.Label, Radius: e.Radius}
	if e.done {
		if err := out.Finalize(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (e *EventArgs) draw(dc DrawContext) {
	dc.Dot(e.Point, e.Radius)
	if e.Label != "" {
		dc.Text(Pt{T: e.Point.T, X: e.Point.X + 2*e.Radius}, e.Label)
	}
}

// ---------------------------------------------------------------------------
// Line
// ---------------------------------------------------------------------------

// LineArgs draws an infinite line (point plus slope, where slope is dx/dt)
// clipped to the bounds.
type LineArgs struct {
	Line   *vm.Line
	Bounds *vm.Bounds

	From, To Pt
	visible  bool
	done     bool
}

func (l *LineArgs) Kind() vm.FigKind { return vm.FigLine }

func (l *LineArgs) SetProp(name string, v vm.Value) error {
	switch name {
	case "line":
		rec, err := propRecord(l.Kind(), name, v, vm.KindLine)
		if err != nil {
			return err
		}
		l.Line = rec.(*vm.Line)
	case "bounds":
		rec, err := propRecord(l.Kind(), name, v, vm.KindBounds)
		if err != nil {
			return err
		}
		l.Bounds = rec.(*vm.Bounds)
	default:
		return noProp(l.Kind(), name)
	}
	return nil
}

func (l *LineArgs) Finalize() error {
	if l.done {
		return nil
	}
	if l.Line == nil || l.Line.Point == nil {
		return fmt.Errorf("line: line is not set")
	}
	if l.Bounds == nil {
		return fmt.Errorf("line: bounds is not set")
	}
	l.From, l.To, l.visible = clipLine(coordPt(l.Line.Point), 1, l.Line.Slope, l.Bounds)
	l.done = true
	return nil
}

func (l *LineArgs) InFrame(f *vm.Frame) (Args, error) {
	p, err := coordInFrame(l.Line.Point, f)
	if err != nil {
		return nil, err
	}
	// Transform a second point on the line and recompute the slope, so
	// lightlike and spacelike slopes survive where velocity composition
	// would not.
	q, err := coordInFrame(&vm.Coord{T: l.Line.Point.T + 1, X: l.Line.Point.X + l.Line.Slope}, f)
	if err != nil {
		return nil, err
	}
	dt := q.T - p.T
	if physics.FuzzZero(dt) {
		return nil, fmt.Errorf("line: slope is undefined in the target frame")
	}
	out := &LineArgs{
		Line:   &vm.Line{Point: p, Slope: (q.X - p.X) / dt},
		Bounds: l.Bounds,
	}
	if l.done {
		if err := out.Finalize(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (l *LineArgs) draw(dc DrawContext) {
	if l.visible {
		dc.Line(l.From, l.To)
	}
}

// ---------------------------------------------------------------------------
// Worldline
// ---------------------------------------------------------------------------

// WorldlineArgs draws an observer's worldline over its proper-time window.
// Zero acceleration gives a straight segment; nonzero proper acceleration
// gives the boost hyperbola sampled into a polyline.
type WorldlineArgs struct {
	Observer *vm.Observer
	Accel    float64
	Label    string

	Pts  []Pt
	done bool
}

func (w *WorldlineArgs) Kind() vm.FigKind { return vm.FigWorldline }

func (w *WorldlineArgs) SetProp(name string, v vm.Value) error {
	switch name {
	case "observer":
		rec, err := propRecord(w.Kind(), name, v, vm.KindObserver)
		if err != nil {
			return err
		}
		w.Observer = rec.(*vm.Observer)
	case "accel":
		f, err := propNumber(w.Kind(), name, v)
		if err != nil {
			return err
		}
		w.Accel = f
	case "label":
		s, err := propString(w.Kind(), name, v)
		if err != nil {
			return err
		}
		w.Label = s
	default:
		return noProp(w.Kind(), name)
	}
	return nil
}

func (w *WorldlineArgs) Finalize() error {
	if w.done {
		return nil
	}
	if w.Observer == nil {
		return fmt.Errorf("worldline: observer is not set")
	}
	if w.Observer.TMax < w.Observer.TMin {
		return fmt.Errorf("worldline: empty time window [%g, %g]", w.Observer.TMin, w.Observer.TMax)
	}
	f := orHome(w.Observer.Frame)

	if physics.FuzzZero(w.Accel) {
		from, err := coordFromFrame(w.Observer.TMin, 0, f)
		if err != nil {
			return fmt.Errorf("worldline: %v", err)
		}
		to, err := coordFromFrame(w.Observer.TMax, 0, f)
		if err != nil {
			return fmt.Errorf("worldline: %v", err)
		}
		w.Pts = []Pt{from, to}
		w.done = true
		return nil
	}

	xc, err := physics.HyperbolaCenter(0, w.Accel)
	if err != nil {
		return fmt.Errorf("worldline: %v", err)
	}
	span := w.Observer.TMax - w.Observer.TMin
	w.Pts = make([]Pt, 0, worldlineSamples+1)
	for i := 0; i <= worldlineSamples; i++ {
		t := w.Observer.TMin + span*float64(i)/worldlineSamples
		p, err := coordFromFrame(t, physics.HyperbolaX(xc, w.Accel, t), f)
		if err != nil {
			return fmt.Errorf("worldline: %v", err)
		}
		w.Pts = append(w.Pts, p)
	}
	w.done = true
	return nil
}

func (w *WorldlineArgs) InFrame(f *vm.Frame) (Args, error) {
	nf, err := frameInFrame(orHome(w.Observer.Frame), f)
	if err != nil {
		return nil, err
	}
	// Proper acceleration and the proper-time window are frame-invariant.
	out := &WorldlineArgs{
		Observer: &vm.Observer{Frame: nf, TMin: w.Observer.TMin, TMax: w.Observer.TMax},
		Accel:    w.Accel,
		Label:    w.Label,
	}
	if w.done {
		if err := out.Finalize(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (w *WorldlineArgs) draw(dc DrawContext) {
	dc.Polyline(w.Pts)
	if w.Label != "" && len(w.Pts) > 0 {
		dc.Text(w.Pts[len(w.Pts)-1], w.Label)
	}
}

// ---------------------------------------------------------------------------
// Path
// ---------------------------------------------------------------------------

// PathArgs draws a polyline through a path record's events.
type PathArgs struct {
	Path   *vm.Path
	Closed bool

	Pts  []Pt
	done bool
}

func (p *PathArgs) Kind() vm.FigKind { return vm.FigPath }

func (p *PathArgs) SetProp(name string, v vm.Value) error {
	switch name {
	case "path":
		rec, err := propRecord(p.Kind(), name, v, vm.KindPath)
		if err != nil {
			return err
		}
		p.Path = rec.(*vm.Path)
	case "closed":
		f, err := propNumber(p.Kind(), name, v)
		if err != nil {
			return err
		}
		p.Closed = !physics.FuzzZero(f)
	default:
		return noProp(p.Kind(), name)
	}
	return nil
}

func (p *PathArgs) Finalize() error {
	if p.done {
		return nil
	}
	if p.Path == nil || len(p.Path.Points) == 0 {
		return fmt.Errorf("path: path is not set")
	}
	p.Pts = make([]Pt, 0, len(p.Path.Points)+1)
	for _, c := range p.Path.Points {
		p.Pts = append(p.Pts, coordPt(c))
	}
	if p.Closed {
		p.Pts = append(p.Pts, p.Pts[0])
	}
	p.done = true
	return nil
}

func (p *PathArgs) InFrame(f *vm.Frame) (Args, error) {
	np := &vm.Path{Points: make([]*vm.Coord, 0, len(p.Path.Points))}
	for _, c := range p.Path.Points {
		nc, err := coordInFrame(c, f)
		if err != nil {
			return nil, err
		}
		np.Points = append(np.Points, nc)
	}
	out := &PathArgs{Path: np, Closed: p.Closed}
	if p.done {
		if err := out.Finalize(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *PathArgs) draw(dc DrawContext) {
	dc.Polyline(p.Pts)
}

// ---------------------------------------------------------------------------
// Label
// ---------------------------------------------------------------------------

// LabelArgs places free text at an event.
type LabelArgs struct {
	At   *vm.Coord
	Text string

	Point Pt
	done  bool
}

func (l *LabelArgs) Kind() vm.FigKind { return vm.FigLabel }

func (l *LabelArgs) SetProp(name string, v vm.Value) error {
	switch name {
	case "at":
		rec, err := propRecord(l.Kind(), name, v, vm.KindCoord)
		if err != nil {
			return err
		}
		l.At = rec.(*vm.Coord)
	case "text":
		s, err := propString(l.Kind(), name, v)
		if err != nil {
			return err
		}
		l.Text = s
	default:
		return noProp(l.Kind(), name)
	}
	return nil
}

func (l *LabelArgs) Finalize() error {
	if l.done {
		return nil
	}
	if l.At == nil {
		return fmt.Errorf("label: at is not set")
	}
	if l.Text == "" {
		return fmt.Errorf("label: text is not set")
	}
	l.Point = coordPt(l.At)
	l.done = true
	return nil
}

func (l *LabelArgs) InFrame(f *vm.Frame) (Args, error) {
	at, err := coordInFrame(l.At, f)
	if err != nil {
		return nil, err
	}
	out := &LabelArgs{At: at, Text: l.Text}
	if l.done {
		if err := out.Finalize(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (l *LabelArgs) draw(dc DrawContext) {
	dc.Text(l.Point, l.Text)
}

// ---------------------------------------------------------------------------
// Display
// ---------------------------------------------------------------------------

// DisplayArgs sets up the canvas: it clears the drawing surface to the given
// bounds and optionally names the frame the whole diagram is viewed from.
type DisplayArgs struct {
	Bounds *vm.Bounds
	Frame  *vm.Frame

	Clip vm.Bounds
	done bool
}

func (d *DisplayArgs) Kind() vm.FigKind { return vm.FigDisplay }

func (d *DisplayArgs) SetProp(name string, v vm.Value) error {
	switch name {
	case "bounds":
		rec, err := propRecord(d.Kind(), name, v, vm.KindBounds)
		if err != nil {
			return err
		}
		d.Bounds = rec.(*vm.Bounds)
	case "frame":
		rec, err := propRecord(d.Kind(), name, v, vm.KindFrame)
		if err != nil {
			return err
		}
		d.Frame = rec.(*vm.Frame)
	default:
		return noProp(d.Kind(), name)
	}
	return nil
}

func (d *DisplayArgs) Finalize() error {
	if d.done {
		return nil
	}
	if d.Bounds == nil {
		return fmt.Errorf("display: bounds is not set")
	}
	d.Clip = *d.Bounds
	d.done = true
	return nil
}

func (d *DisplayArgs) InFrame(f *vm.Frame) (Args, error) {
	out := &DisplayArgs{Bounds: d.Bounds, Clip: d.Clip, done: d.done}
	if d.Frame != nil {
		nf, err := frameInFrame(d.Frame, f)
		if err != nil {
			return nil, err
		}
		out.Frame = nf
	}
	return out, nil
}

func (d *DisplayArgs) draw(dc DrawContext) {
	dc.Clear(&d.Clip)
}

// ViewFrame returns the display's viewing frame, or nil when unset.
func (d *DisplayArgs) ViewFrame() *vm.Frame { return d.Frame }

package store

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/ahearne/lightcone/vm"
)

// Persisted values carry an explicit kind tag so a database written by one
// version decodes predictably in another. Record kinds nest their fields;
// reactive and transient values never reach this codec.

type wireCoord struct {
	T float64 `cbor:"t"`
	X float64 `cbor:"x"`
}

type wireFrame struct {
	V  float64 `cbor:"v"`
	T0 float64 `cbor:"t0"`
	X0 float64 `cbor:"x0"`
}

type wireValue struct {
	Kind     uint8        `cbor:"k"`
	Num      float64      `cbor:"n,omitempty"`
	Str      string       `cbor:"s,omitempty"`
	Coord    *wireCoord   `cbor:"c,omitempty"`
	Frame    *wireFrame   `cbor:"f,omitempty"`
	From     *wireCoord   `cbor:"from,omitempty"`
	To       *wireCoord   `cbor:"to,omitempty"`
	Numbers  []float64    `cbor:"ns,omitempty"` // observer window, line slope, bounds
	Points   []wireCoord  `cbor:"pts,omitempty"`
}

func coordWire(c *vm.Coord) *wireCoord {
	return &wireCoord{T: c.T, X: c.X}
}

func (w *wireCoord) coord() *vm.Coord {
	return &vm.Coord{T: w.T, X: w.X}
}

// encodeValue renders one script value into the persisted form.
func encodeValue(v vm.Value) ([]byte, error) {
	wv := wireValue{Kind: uint8(v.Kind())}
	switch v.Kind() {
	case vm.KindNone:
	case vm.KindNumber:
		wv.Num = v.Number()
	case vm.KindString:
		wv.Str = v.Str()
	case vm.KindCoord:
		wv.Coord = coordWire(v.Record().(*vm.Coord))
	case vm.KindFrame:
		f := v.Record().(*vm.Frame)
		wv.Frame = &wireFrame{V: f.V, T0: f.T0, X0: f.X0}
	case vm.KindObserver:
		o := v.Record().(*vm.Observer)
		if o.Frame != nil {
			wv.Frame = &wireFrame{V: o.Frame.V, T0: o.Frame.T0, X0: o.Frame.X0}
		}
		wv.Numbers = []float64{o.TMin, o.TMax}
	case vm.KindLine:
		l := v.Record().(*vm.Line)
		if l.Point != nil {
			wv.Coord = coordWire(l.Point)
		}
		wv.Numbers = []float64{l.Slope}
	case vm.KindInterval:
		iv := v.Record().(*vm.Interval)
		if iv.From != nil {
			wv.From = coordWire(iv.From)
		}
		if iv.To != nil {
			wv.To = coordWire(iv.To)
		}
	case vm.KindBounds:
		b := v.Record().(*vm.Bounds)
		wv.Numbers = []float64{b.TMin, b.TMax, b.XMin, b.XMax}
	case vm.KindPath:
		p := v.Record().(*vm.Path)
		wv.Points = make([]wireCoord, len(p.Points))
		for i, c := range p.Points {
			wv.Points[i] = *coordWire(c)
		}
	default:
		return nil, fmt.Errorf("cannot persist value of kind %s", v.Kind())
	}
	return cbor.Marshal(&wv)
}

// decodeValue is the inverse of encodeValue.
func decodeValue(data []byte) (vm.Value, error) {
	var wv wireValue
	if err := cbor.Unmarshal(data, &wv); err != nil {
		return vm.None, err
	}
	switch vm.Kind(wv.Kind) {
	case vm.KindNone:
		return vm.None, nil
	case vm.KindNumber:
		return vm.FromNumber(wv.Num), nil
	case vm.KindString:
		return vm.FromString(wv.Str), nil
	case vm.KindCoord:
		if wv.Coord == nil {
			return vm.None, fmt.Errorf("persisted coord missing fields")
		}
		return vm.FromRecord(wv.Coord.coord()), nil
	case vm.KindFrame:
		if wv.Frame == nil {
			return vm.None, fmt.Errorf("persisted frame missing fields")
		}
		return vm.FromRecord(&vm.Frame{V: wv.Frame.V, T0: wv.Frame.T0, X0: wv.Frame.X0}), nil
	case vm.KindObserver:
		if len(wv.Numbers) != 2 {
			return vm.None, fmt.Errorf("persisted observer missing window")
		}
		o := &vm.Observer{TMin: wv.Numbers[0], TMax: wv.Numbers[1]}
		if wv.Frame != nil {
			o.Frame = &vm.Frame{V: wv.Frame.V, T0: wv.Frame.T0, X0: wv.Frame.X0}
		}
		return vm.FromRecord(o), nil
	case vm.KindLine:
		if len(wv.Numbers) != 1 {
			return vm.None, fmt.Errorf("persisted line missing slope")
		}
		l := &vm.Line{Slope: wv.Numbers[0]}
		if wv.Coord != nil {
			l.Point = wv.Coord.coord()
		}
		return vm.FromRecord(l), nil
	case vm.KindInterval:
		iv := &vm.Interval{}
		if wv.From != nil {
			iv.From = wv.From.coord()
		}
		if wv.To != nil {
			iv.To = wv.To.coord()
		}
		return vm.FromRecord(iv), nil
	case vm.KindBounds:
		if len(wv.Numbers) != 4 {
			return vm.None, fmt.Errorf("persisted bounds missing extents")
		}
		return vm.FromRecord(&vm.Bounds{
			TMin: wv.Numbers[0], TMax: wv.Numbers[1],
			XMin: wv.Numbers[2], XMax: wv.Numbers[3],
		}), nil
	case vm.KindPath:
		p := &vm.Path{Points: make([]*vm.Coord, len(wv.Points))}
		for i := range wv.Points {
			p.Points[i] = wv.Points[i].coord()
		}
		return vm.FromRecord(p), nil
	default:
		return vm.None, fmt.Errorf("persisted value has unknown kind %d", wv.Kind)
	}
}

package vm

import (
	"testing"
)

func TestCoordFields(t *testing.T) {
	c := &Coord{T: 1.5, X: -2}
	v, err := c.Field("t")
	if err != nil {
		t.Fatalf("Field(t) error: %v", err)
	}
	if v.Number() != 1.5 {
		t.Errorf("Field(t) = %v, want 1.5", v)
	}
	if err := c.SetField("x", FromNumber(7)); err != nil {
		t.Fatalf("SetField(x) error: %v", err)
	}
	if c.X != 7 {
		t.Errorf("X = %v after SetField, want 7", c.X)
	}
}

// Assigning a string to a number field must fail before any mutation.
func TestCoordFieldTypeMismatch(t *testing.T) {
	c := &Coord{T: 3, X: 4}
	err := c.SetField("x", FromString("oops"))
	if err == nil {
		t.Fatal("SetField(x, string) should fail")
	}
	if c.T != 3 || c.X != 4 {
		t.Errorf("coord mutated by failed write: %v", c)
	}
}

func TestUnknownField(t *testing.T) {
	c := &Coord{}
	if _, err := c.Field("z"); err == nil {
		t.Error("Field(z) should fail")
	}
	if err := c.SetField("z", FromNumber(1)); err == nil {
		t.Error("SetField(z) should fail")
	}
}

func TestRecordValuedFields(t *testing.T) {
	o := &Observer{}
	f := &Frame{V: 0.5}
	if err := o.SetField("frame", FromRecord(f)); err != nil {
		t.Fatalf("SetField(frame) error: %v", err)
	}
	if o.Frame != f {
		t.Error("frame field not set")
	}
	if err := o.SetField("frame", FromNumber(1)); err == nil {
		t.Error("SetField(frame, number) should fail")
	}

	l := &Line{}
	if err := l.SetField("point", FromRecord(&Coord{T: 1})); err != nil {
		t.Fatalf("SetField(point) error: %v", err)
	}
	if l.Point.T != 1 {
		t.Error("point field not set")
	}
}

func TestPathCount(t *testing.T) {
	p := &Path{Points: []*Coord{{}, {}, {}}}
	v, err := p.Field("count")
	if err != nil {
		t.Fatalf("Field(count) error: %v", err)
	}
	if v.Number() != 3 {
		t.Errorf("count = %v, want 3", v)
	}
	if err := p.SetField("count", FromNumber(5)); err == nil {
		t.Error("count should be read-only")
	}
}

func TestFieldKindTable(t *testing.T) {
	k, ok := FieldKind(KindCoord, "t")
	if !ok || k != KindNumber {
		t.Errorf("FieldKind(coord, t) = %v, %v", k, ok)
	}
	if _, ok := FieldKind(KindCoord, "nope"); ok {
		t.Error("FieldKind should not know unknown fields")
	}
	k, ok = FieldKind(KindObserver, "frame")
	if !ok || k != KindFrame {
		t.Errorf("FieldKind(observer, frame) = %v, %v", k, ok)
	}
}

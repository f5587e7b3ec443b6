package vm

import (
	"testing"
)

func TestValueKinds(t *testing.T) {
	if !None.IsNone() {
		t.Error("None should be the absent value")
	}
	if got := FromNumber(3.5); !got.IsNumber() || got.Number() != 3.5 {
		t.Errorf("FromNumber(3.5) = %v", got)
	}
	if got := FromString("hi"); !got.IsString() || got.Str() != "hi" {
		t.Errorf("FromString(hi) = %v", got)
	}
	c := &Coord{T: 1, X: 2}
	if got := FromRecord(c); !got.IsRecord() || got.Record() != c {
		t.Errorf("FromRecord = %v", got)
	}
	if got := FromRecord(nil); !got.IsNone() {
		t.Errorf("FromRecord(nil) = %v, want None", got)
	}
}

func TestValueTruthiness(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{None, false},
		{FromNumber(0), false},
		{FromNumber(1e-12), false}, // within fuzz tolerance of zero
		{FromNumber(1), true},
		{FromNumber(-0.5), true},
		{FromString(""), true}, // strings are always truthy
		{FromString("no"), true},
		{FromRecord(&Coord{}), true},
	}
	for _, tt := range tests {
		if got := tt.v.IsTruthy(); got != tt.want {
			t.Errorf("IsTruthy(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestValueEqual(t *testing.T) {
	if !FromNumber(0.1 + 0.2).Equal(FromNumber(0.3)) {
		t.Error("numbers should compare within tolerance")
	}
	if FromNumber(1).Equal(FromString("1")) {
		t.Error("number and string should not be equal")
	}
	c := &Coord{}
	if !FromRecord(c).Equal(FromRecord(c)) {
		t.Error("same record should be equal")
	}
	if FromRecord(&Coord{}).Equal(FromRecord(&Coord{})) {
		t.Error("distinct records compare by identity")
	}
	if !None.Equal(None) {
		t.Error("None equals None")
	}
}

func TestValueAccessorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Number on a string should panic")
		}
	}()
	FromString("x").Number()
}

func TestFromBool(t *testing.T) {
	if got := FromBool(true); got.Number() != 1 {
		t.Errorf("FromBool(true) = %v, want 1", got)
	}
	if got := FromBool(false); got.Number() != 0 {
		t.Errorf("FromBool(false) = %v, want 0", got)
	}
}

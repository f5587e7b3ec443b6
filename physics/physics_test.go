package physics

import (
	"math"
	"testing"
)

func TestGamma(t *testing.T) {
	g, err := Gamma(0)
	if err != nil {
		t.Fatalf("Gamma(0) error: %v", err)
	}
	if !FuzzEqual(g, 1) {
		t.Errorf("Gamma(0) = %v, want 1", g)
	}

	g, err = Gamma(0.6)
	if err != nil {
		t.Fatalf("Gamma(0.6) error: %v", err)
	}
	if !FuzzEqual(g, 1.25) {
		t.Errorf("Gamma(0.6) = %v, want 1.25", g)
	}
}

func TestGammaDomain(t *testing.T) {
	if _, err := Gamma(1); err != ErrLightlike {
		t.Errorf("Gamma(1) error = %v, want ErrLightlike", err)
	}
	if _, err := Gamma(-1.5); err != ErrSuperluminal {
		t.Errorf("Gamma(-1.5) error = %v, want ErrSuperluminal", err)
	}
}

func TestAddVelocities(t *testing.T) {
	// 0.5c + 0.5c = 0.8c, not 1c
	w, err := AddVelocities(0.5, 0.5)
	if err != nil {
		t.Fatalf("AddVelocities error: %v", err)
	}
	if !FuzzEqual(w, 0.8) {
		t.Errorf("AddVelocities(0.5, 0.5) = %v, want 0.8", w)
	}

	// Composition never exceeds c
	w, err = AddVelocities(0.99, 0.99)
	if err != nil {
		t.Fatalf("AddVelocities error: %v", err)
	}
	if w >= 1 {
		t.Errorf("AddVelocities(0.99, 0.99) = %v, want < 1", w)
	}
}

func TestRapidityRoundTrip(t *testing.T) {
	for _, v := range []float64{-0.9, -0.5, 0, 0.3, 0.99} {
		phi, err := Rapidity(v)
		if err != nil {
			t.Fatalf("Rapidity(%v) error: %v", v, err)
		}
		if got := VelocityFromRapidity(phi); !FuzzEqual(got, v) {
			t.Errorf("VelocityFromRapidity(Rapidity(%v)) = %v", v, got)
		}
	}
}

func TestBoostRoundTrip(t *testing.T) {
	t0, x0, v := 2.5, -1.25, 0.6
	bt, bx, err := Boost(t0, x0, v)
	if err != nil {
		t.Fatalf("Boost error: %v", err)
	}
	rt, rx, err := Unboost(bt, bx, v)
	if err != nil {
		t.Fatalf("Unboost error: %v", err)
	}
	if !FuzzEqual(rt, t0) || !FuzzEqual(rx, x0) {
		t.Errorf("round trip = (%v, %v), want (%v, %v)", rt, rx, t0, x0)
	}
}

func TestBoostPreservesInterval(t *testing.T) {
	bt, bx, err := Boost(3, 1, 0.8)
	if err != nil {
		t.Fatalf("Boost error: %v", err)
	}
	if !FuzzEqual(IntervalSquared(3, 1), IntervalSquared(bt, bx)) {
		t.Errorf("interval not invariant: %v vs %v",
			IntervalSquared(3, 1), IntervalSquared(bt, bx))
	}
}

func TestDoppler(t *testing.T) {
	d, err := Doppler(0.6)
	if err != nil {
		t.Fatalf("Doppler error: %v", err)
	}
	if !FuzzEqual(d, 2) {
		t.Errorf("Doppler(0.6) = %v, want 2", d)
	}
}

func TestContractDilate(t *testing.T) {
	l, err := Contract(10, 0.6)
	if err != nil {
		t.Fatalf("Contract error: %v", err)
	}
	if !FuzzEqual(l, 8) {
		t.Errorf("Contract(10, 0.6) = %v, want 8", l)
	}

	d, err := Dilate(8, 0.6)
	if err != nil {
		t.Fatalf("Dilate error: %v", err)
	}
	if !FuzzEqual(d, 10) {
		t.Errorf("Dilate(8, 0.6) = %v, want 10", d)
	}
}

func TestHyperbola(t *testing.T) {
	xc, err := HyperbolaCenter(1, 1)
	if err != nil {
		t.Fatalf("HyperbolaCenter error: %v", err)
	}
	if !FuzzEqual(xc, 0) {
		t.Errorf("HyperbolaCenter(1, 1) = %v, want 0", xc)
	}

	// Turnaround point: at t=0 the curve passes through x0.
	if x := HyperbolaX(xc, 1, 0); !FuzzEqual(x, 1) {
		t.Errorf("HyperbolaX at t=0 = %v, want 1", x)
	}

	// The curve approaches its lightlike asymptote for large t.
	x := HyperbolaX(xc, 1, 1000)
	if math.Abs(x-1000) > 0.001 {
		t.Errorf("HyperbolaX at t=1000 = %v, want close to 1000", x)
	}

	if _, err := HyperbolaCenter(1, 0); err == nil {
		t.Error("HyperbolaCenter with a=0 should fail")
	}
}

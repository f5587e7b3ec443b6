package vm

import (
	"testing"
)

func TestRangeControlClamps(t *testing.T) {
	c, err := NewRangeControl("v", "speed", 0.5, 0, 0.9, 0.1, false)
	if err != nil {
		t.Fatalf("NewRangeControl error: %v", err)
	}
	if err := c.SetCurrent(FromNumber(2)); err != nil {
		t.Fatalf("SetCurrent error: %v", err)
	}
	if c.Current().Number() != 0.9 {
		t.Errorf("current = %v, want clamped 0.9", c.Current())
	}
	if err := c.SetCurrent(FromString("x")); err == nil {
		t.Error("non-numeric SetCurrent should fail")
	}
}

func TestRangeControlValidation(t *testing.T) {
	if _, err := NewRangeControl("v", "", 2, 0, 1, 0.1, false); err == nil {
		t.Error("initial outside domain should fail")
	}
	if _, err := NewRangeControl("v", "", 0, 1, 0, 0.1, false); err == nil {
		t.Error("min > max should fail")
	}
}

func TestToggleControlNormalizes(t *testing.T) {
	c := NewToggleControl("grid", "show grid", true, false)
	if c.Current().Number() != 1 {
		t.Errorf("current = %v, want 1", c.Current())
	}
	c.SetCurrent(FromNumber(17))
	if c.Current().Number() != 1 {
		t.Errorf("current = %v, want normalized 1", c.Current())
	}
	c.SetCurrent(FromNumber(0))
	if c.Current().Number() != 0 {
		t.Errorf("current = %v, want 0", c.Current())
	}
}

func TestChoiceControl(t *testing.T) {
	c, err := NewChoiceControl("mode", "view", []string{"lab", "rocket"}, 1, true)
	if err != nil {
		t.Fatalf("NewChoiceControl error: %v", err)
	}
	if err := c.SetCurrent(FromNumber(5)); err == nil {
		t.Error("out-of-range index should fail")
	}
	if err := c.SetCurrent(FromNumber(0.5)); err == nil {
		t.Error("fractional index should fail")
	}
	if err := c.SetCurrent(FromNumber(0)); err != nil {
		t.Errorf("SetCurrent(0) error: %v", err)
	}
	if !c.ResetOnChange() {
		t.Error("ResetOnChange flag lost")
	}
}

func TestAnimateControlAdvance(t *testing.T) {
	c, err := NewAnimateControl("tick", "time", 0, 0.5, 1, true, false)
	if err != nil {
		t.Fatalf("NewAnimateControl error: %v", err)
	}
	if done := c.Advance(); done || c.Current().Number() != 0.5 {
		t.Errorf("after 1 advance: done=%v current=%v", done, c.Current())
	}
	if done := c.Advance(); !done || c.Current().Number() != 1 {
		t.Errorf("after 2 advances: done=%v current=%v, want clamped end", done, c.Current())
	}
	// Advancing past the end stays put.
	if done := c.Advance(); !done || c.Current().Number() != 1 {
		t.Errorf("after 3 advances: done=%v current=%v", done, c.Current())
	}
}

func TestControlChangeHook(t *testing.T) {
	c, _ := NewRangeControl("v", "", 0.5, 0, 1, 0.1, false)
	fired := 0
	c.OnChange(func(got *Control) {
		if got != c {
			t.Error("hook called with wrong control")
		}
		fired++
	})
	c.SetCurrent(FromNumber(0.6))
	if fired != 1 {
		t.Errorf("hook fired %d times, want 1", fired)
	}
}

func TestControlRegistry(t *testing.T) {
	r := NewControlRegistry()
	a, _ := NewRangeControl("a", "", 0, 0, 1, 0.1, false)
	b := NewToggleControl("b", "", false, false)
	r.Register(a)
	r.Register(b)
	r.Register(a) // duplicate is a no-op

	if got := r.Controls(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("Controls() = %v", got)
	}
	if a.Handle() == b.Handle() {
		t.Error("handles should be unique")
	}
	found, ok := r.ByHandle(a.Handle())
	if !ok || found != a {
		t.Error("ByHandle lookup failed")
	}
	r.Reset()
	if len(r.Controls()) != 0 {
		t.Error("registry should be empty after reset")
	}
}

// The worker registers and resets while another goroutine enumerates, as a
// reload pass does under a ticking animator. Run with -race.
func TestControlRegistryConcurrentAccess(t *testing.T) {
	r := NewControlRegistry()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			c, err := NewRangeControl("v", "", 0, 0, 1, 0.1, false)
			if err != nil {
				t.Errorf("NewRangeControl error: %v", err)
				return
			}
			r.Register(c)
			if i%16 == 0 {
				r.Reset()
			}
		}
	}()
	for i := 0; i < 200; i++ {
		r.Controls()
		r.ByHandle("missing")
	}
	<-done
}

// UI mutation, hook installation, and worker reads happen on separate
// goroutines. Run with -race.
func TestControlConcurrentMutation(t *testing.T) {
	c, err := NewRangeControl("v", "", 0.5, 0, 1, 0.1, false)
	if err != nil {
		t.Fatalf("NewRangeControl error: %v", err)
	}
	a, err := NewAnimateControl("clock", "", 0, 0.01, 0, false, false)
	if err != nil {
		t.Fatalf("NewAnimateControl error: %v", err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if err := c.SetCurrent(FromNumber(float64(i%10) / 10)); err != nil {
				t.Errorf("SetCurrent error: %v", err)
				return
			}
			a.Advance()
		}
	}()
	for i := 0; i < 200; i++ {
		c.OnChange(func(*Control) {})
		c.Current()
		a.Current()
	}
	<-done
}

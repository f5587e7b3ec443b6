// Package physics implements the special-relativity arithmetic the diagram
// engine is built on. All functions are pure and work in natural units
// (c = 1): velocities are fractions of c, times and distances share one unit.
package physics

import (
	"errors"
	"math"
)

// Tolerance is the fuzz used for equality tests throughout the engine.
// Diagram inputs come from script arithmetic on doubles; exact comparison
// against zero would misclassify values like 0.1+0.2-0.3.
const Tolerance = 1e-9

var (
	ErrSuperluminal = errors.New("velocity magnitude must be less than 1 (the speed of light)")
	ErrLightlike    = errors.New("velocity magnitude 1 (lightlike) has no rest frame")
)

// FuzzEqual reports whether a and b are equal within Tolerance.
func FuzzEqual(a, b float64) bool {
	return math.Abs(a-b) < Tolerance
}

// FuzzZero reports whether x is zero within Tolerance.
func FuzzZero(x float64) bool {
	return math.Abs(x) < Tolerance
}

// checkVelocity validates |v| < 1.
func checkVelocity(v float64) error {
	av := math.Abs(v)
	if FuzzEqual(av, 1) {
		return ErrLightlike
	}
	if av > 1 {
		return ErrSuperluminal
	}
	return nil
}

// Gamma returns the Lorentz factor 1/sqrt(1-v^2).
func Gamma(v float64) (float64, error) {
	if err := checkVelocity(v); err != nil {
		return 0, err
	}
	return 1 / math.Sqrt(1-v*v), nil
}

// Rapidity returns atanh(v), the additive measure of velocity.
func Rapidity(v float64) (float64, error) {
	if err := checkVelocity(v); err != nil {
		return 0, err
	}
	return math.Atanh(v), nil
}

// VelocityFromRapidity is the inverse of Rapidity.
func VelocityFromRapidity(phi float64) float64 {
	return math.Tanh(phi)
}

// AddVelocities composes two collinear velocities relativistically.
func AddVelocities(u, v float64) (float64, error) {
	if err := checkVelocity(u); err != nil {
		return 0, err
	}
	if err := checkVelocity(v); err != nil {
		return 0, err
	}
	return (u + v) / (1 + u*v), nil
}

// Doppler returns the relativistic Doppler factor sqrt((1+v)/(1-v)) for a
// source receding at v.
func Doppler(v float64) (float64, error) {
	if err := checkVelocity(v); err != nil {
		return 0, err
	}
	return math.Sqrt((1 + v) / (1 - v)), nil
}

// Contract returns the length of a rod of rest length l as measured from a
// frame moving at v relative to it.
func Contract(l, v float64) (float64, error) {
	g, err := Gamma(v)
	if err != nil {
		return 0, err
	}
	return l / g, nil
}

// Dilate returns the coordinate duration of a proper time tau on a clock
// moving at v.
func Dilate(tau, v float64) (float64, error) {
	g, err := Gamma(v)
	if err != nil {
		return 0, err
	}
	return tau * g, nil
}

// IntervalSquared returns the invariant interval t^2 - x^2 between two
// events. Positive is timelike, negative spacelike, zero lightlike.
func IntervalSquared(dt, dx float64) float64 {
	return dt*dt - dx*dx
}

// Boost transforms event coordinates (t, x) into a frame moving at velocity v
// through the origin of the current frame.
func Boost(t, x, v float64) (float64, float64, error) {
	g, err := Gamma(v)
	if err != nil {
		return 0, 0, err
	}
	return g * (t - v*x), g * (x - v*t), nil
}

// Unboost transforms event coordinates out of a frame moving at v, back into
// the frame it was defined against.
func Unboost(t, x, v float64) (float64, float64, error) {
	return Boost(t, x, -v)
}

// HyperbolaCenter returns the x coordinate of the center of the worldline
// hyperbola for an observer with constant proper acceleration a passing
// through x0 at the turnaround. The curve is x(t) = xc + sqrt(1/a^2 + t^2)
// for positive a.
func HyperbolaCenter(x0, a float64) (float64, error) {
	if FuzzZero(a) {
		return 0, errors.New("acceleration must be nonzero for a hyperbolic worldline")
	}
	return x0 - 1/a, nil
}

// HyperbolaX returns the x coordinate on an accelerated worldline at
// coordinate time t relative to the turnaround event.
func HyperbolaX(xc, a, t float64) float64 {
	r := 1 / a
	if a < 0 {
		return xc - math.Sqrt(r*r+t*t)
	}
	return xc + math.Sqrt(r*r+t*t)
}

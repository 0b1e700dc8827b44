package fracmesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// GoldenAngle is the angular increment of a Fibonacci lattice on the
// sphere, pi*(3-sqrt(5)).
const GoldenAngle = 2.399963229728653

// Clamp x between a and b, assume a <= b
func Clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

// Mix does a linear interpolation from x to y, a = [0,1]
func Mix(x, y, a float64) float64 {
	return x + (a * (y - x))
}

// Sign returns the sign of x
func Sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	if x > 0 {
		return 1
	}
	return 0
}

// MinFunc is a minimum function for SDF blending.
type MinFunc func(a, b float64) float64

// MaxFunc is a maximum function for SDF blending.
type MaxFunc func(a, b float64) float64

func poly(a, b, k float64) float64 {
	h := Clamp(0.5+0.5*(b-a)/k, 0.0, 1.0)
	return Mix(b, a, h) - k*h*(1.0-h)
}

// PolyMin returns a minimum function (Try k = 0.1, a bigger k gives a bigger fillet).
func PolyMin(k float64) MinFunc {
	return func(a, b float64) float64 {
		return poly(a, b, k)
	}
}

// PolyMax returns a maximum function (Try k = 0.1, a bigger k gives a bigger fillet).
func PolyMax(k float64) MaxFunc {
	return func(a, b float64) float64 {
		return -poly(-a, -b, k)
	}
}

// SmoothMin blends two distances with smoothing radius k.
// Equivalent to PolyMin(k)(a, b) without the closure allocation.
func SmoothMin(a, b, k float64) float64 {
	return poly(a, b, k)
}

// BoxFold reflects each coordinate of p back into [-size,size].
// Coordinates beyond the limit are folded as clamp(x,-size,size)*2 - x.
func BoxFold(p r3.Vec, size float64) r3.Vec {
	return r3.Vec{
		X: Clamp(p.X, -size, size)*2 - p.X,
		Y: Clamp(p.Y, -size, size)*2 - p.Y,
		Z: Clamp(p.Z, -size, size)*2 - p.Z,
	}
}

// SphereFold performs a conditional sphere inversion of p about the origin.
// Points inside minRadius are scaled as if on the minRadius sphere, points
// between minRadius and fixedRadius are inverted. The returned factor is the
// applied scale, needed to keep a running derivative estimate consistent.
func SphereFold(p r3.Vec, minRadius2, fixedRadius2 float64) (r3.Vec, float64) {
	r2 := r3.Norm2(p)
	switch {
	case r2 < minRadius2:
		f := fixedRadius2 / minRadius2
		return r3.Scale(f, p), f
	case r2 < fixedRadius2:
		f := fixedRadius2 / math.Max(r2, 1e-8)
		return r3.Scale(f, p), f
	}
	return p, 1
}

// FibonacciDirection returns the i-th of n unit directions distributed on the
// sphere by the golden-angle lattice.
func FibonacciDirection(i, n int) r3.Vec {
	z := 1 - 2*(float64(i)+0.5)/float64(n)
	rxy := math.Sqrt(math.Max(1-z*z, 0))
	theta := GoldenAngle * float64(i)
	return r3.Vec{
		X: rxy * math.Cos(theta),
		Y: rxy * math.Sin(theta),
		Z: z,
	}
}

// Normals

// Normal3 returns the normal of an SDF3 at a point (doesn't need to be on the surface).
// Computed by sampling it several times inside a box of side 2*eps centered on p.
func Normal3(s SDF3, p r3.Vec, eps float64) r3.Vec {
	return r3.Unit(r3.Vec{
		X: s.Evaluate(r3.Add(p, r3.Vec{X: eps})) - s.Evaluate(r3.Add(p, r3.Vec{X: -eps})),
		Y: s.Evaluate(r3.Add(p, r3.Vec{Y: eps})) - s.Evaluate(r3.Add(p, r3.Vec{Y: -eps})),
		Z: s.Evaluate(r3.Add(p, r3.Vec{Z: eps})) - s.Evaluate(r3.Add(p, r3.Vec{Z: -eps})),
	})
}

// Floating Point Comparisons
// See: http://floating-point-gui.de/errors/NearlyEqualsTest.java

const minNormal = 2.2250738585072014e-308 // 2**-1022

// EqualFloat64 compares two float64 values for equality.
func EqualFloat64(a, b, epsilon float64) bool {
	if a == b {
		return true
	}
	absA := math.Abs(a)
	absB := math.Abs(b)
	diff := math.Abs(a - b)
	if a == 0 || b == 0 || diff < minNormal {
		// a or b is zero or both are extremely close to it
		// relative error is less meaningful here
		return diff < (epsilon * minNormal)
	}
	// use relative error
	return diff/math.Min((absA+absB), math.MaxFloat64) < epsilon
}

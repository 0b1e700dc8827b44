package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector/matrix manipulation routines.
// This should be a temporary package as the calling
// conventions get wiser with time.

func Elem(sides float64) r3.Vec {
	return r3.Vec{
		X: sides,
		Y: sides,
		Z: sides,
	}
}

func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// LTEZero returns true if any vector components are <= 0.
func LTEZero(a r3.Vec) bool {
	return (a.X <= 0) || (a.Y <= 0) || (a.Z <= 0)
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

func MulElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{
		X: a.X * b.X,
		Y: a.Y * b.Y,
		Z: a.Z * b.Z,
	}
}

func DivElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{
		X: a.X / b.X,
		Y: a.Y / b.Y,
		Z: a.Z / b.Z,
	}
}

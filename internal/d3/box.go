package d3

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// d3.Box is a 3d bounding box.
type Box r3.Box

// NewBox creates a 3d box with a given center and size.
func NewBox(center, size r3.Vec) Box {
	half := r3.Scale(0.5, size)
	return Box{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// Equals test the equality of 3d boxes.
func (a Box) Equals(b Box, tol float64) bool {
	return EqualWithin(a.Min, b.Min, tol) && EqualWithin(a.Max, b.Max, tol)
}

// Extend returns a box enclosing two 3d boxes.
func (a Box) Extend(b Box) Box {
	return Box{
		Min: MinElem(a.Min, b.Min),
		Max: MaxElem(a.Max, b.Max),
	}
}

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Enlarge returns a new 3d box enlarged by a size vector.
func (a Box) Enlarge(v r3.Vec) Box {
	v = r3.Scale(0.5, v)
	return Box{
		Min: r3.Sub(a.Min, v),
		Max: r3.Add(a.Max, v),
	}
}

// Contains checks if the 3d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r3.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y && a.Min.Z <= v.Z &&
		v.X <= a.Max.X && v.Y <= a.Max.Y && v.Z <= a.Max.Z
}

// Random returns a random point within a bounding box.
func (b *Box) Random() r3.Vec {
	return r3.Vec{
		X: randomRange(b.Min.X, b.Max.X),
		Y: randomRange(b.Min.Y, b.Max.Y),
		Z: randomRange(b.Min.Z, b.Max.Z),
	}
}

// RandomSet returns a set of random points from within a bounding box.
func (b *Box) RandomSet(n int) []r3.Vec {
	s := make([]r3.Vec, n)
	for i := range s {
		s[i] = b.Random()
	}
	return s
}

// randomRange returns a random float64 [a,b)
func randomRange(a, b float64) float64 {
	return a + (b-a)*rand.Float64()
}

package form3

import (
	"math"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Exact distance primitives composed by the geometric variants.

// sphere3 is a sphere centered at c.
type sphere3 struct {
	c      r3.Vec
	radius float64
	bb     r3.Box
}

func newSphere(center r3.Vec, radius float64) *sphere3 {
	s := sphere3{
		c:      center,
		radius: radius,
	}
	// work out the bounding box
	s.bb = r3.Box(d3.NewBox(center, d3.Elem(2*radius)))
	return &s
}

// Evaluate returns the minimum distance to a sphere.
func (s *sphere3) Evaluate(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, s.c)) - s.radius
}

// Bounds returns the bounding box for a sphere.
func (s *sphere3) Bounds() r3.Box {
	return s.bb
}

// capsule3 is a capsule between endpoints a and b.
type capsule3 struct {
	a, b   r3.Vec
	radius float64
	bb     r3.Box
}

func newCapsule(a, b r3.Vec, radius float64) *capsule3 {
	s := capsule3{
		a:      a,
		b:      b,
		radius: radius,
	}
	// work out the bounding box
	s.bb = r3.Box{
		Min: r3.Sub(d3.MinElem(a, b), d3.Elem(radius)),
		Max: r3.Add(d3.MaxElem(a, b), d3.Elem(radius)),
	}
	return &s
}

// Evaluate returns the minimum distance to a capsule.
func (s *capsule3) Evaluate(p r3.Vec) float64 {
	pa := r3.Sub(p, s.a)
	ba := r3.Sub(s.b, s.a)
	h := fracmesh.Clamp(r3.Dot(pa, ba)/math.Max(r3.Norm2(ba), 1e-12), 0, 1)
	return r3.Norm(r3.Sub(pa, r3.Scale(h, ba))) - s.radius
}

// Bounds returns the bounding box for a capsule.
func (s *capsule3) Bounds() r3.Box {
	return s.bb
}

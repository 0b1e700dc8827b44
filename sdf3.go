package fracmesh

import (
	"math"
	"strconv"

	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// 3D signed distance utility functions.

// SDF3 is the interface to a 3d signed distance function object.
type SDF3 interface {
	// Evaluate takes a point in 3D space as input and returns
	// the minimum distance of the SDF3 to the point. The distance
	// is negative if the point is contained within the SDF3.
	Evaluate(p r3.Vec) float64
	// Bounds returns the bounding box that completely contains
	// the SDF3.
	Bounds() r3.Box
}

type SDF3Union interface {
	SDF3
	SetMin(MinFunc)
}

// union3 is the union of multiple SDF3s.
type union3 struct {
	sdf []SDF3
	min MinFunc
	bb  r3.Box
}

// Union3D returns the union of multiple SDF3 objects.
// Union3D will panic if arguments list is empty or if
// an argument SDF3 is nil.
func Union3D(sdf ...SDF3) SDF3Union {
	if len(sdf) < 2 {
		panic("union require at least 2 sdfs")
	}
	s := union3{
		sdf: sdf,
	}
	for i, x := range s.sdf {
		if x == nil {
			panic("nil sdf argument (" + strconv.Itoa(i) + ") to Union3D")
		}
	}
	// work out the bounding box
	bb := d3.Box(s.sdf[0].Bounds())
	for _, x := range s.sdf {
		bb = bb.Extend(d3.Box(x.Bounds()))
	}
	s.bb = r3.Box(bb)
	s.min = math.Min
	return &s
}

// Evaluate returns the minimum distance to an SDF3 union.
func (s *union3) Evaluate(p r3.Vec) float64 {
	var d float64
	for i, x := range s.sdf {
		if i == 0 {
			d = x.Evaluate(p)
		} else {
			d = s.min(d, x.Evaluate(p))
		}
	}
	return d
}

// SetMin sets the minimum function to control blending.
func (s *union3) SetMin(min MinFunc) {
	s.min = min
}

// BoundingBox returns the bounding box of an SDF3 union.
func (s *union3) Bounds() r3.Box {
	return s.bb
}

// shell3 shells the surface of an existing SDF3.
type shell3 struct {
	sdf   SDF3
	delta float64 // half thickness
	bb    r3.Box
}

// Shell3D returns an SDF3 that shells the surface of another SDF3.
// The shell is centered on the original surface.
func Shell3D(sdf SDF3, thickness float64) SDF3 {
	if thickness <= 0 {
		panic("thickness must be positive")
	}
	s := shell3{
		sdf:   sdf,
		delta: 0.5 * thickness,
	}
	// work out the bounding box
	bb := d3.Box(sdf.Bounds())
	s.bb = r3.Box(bb.Enlarge(d3.Elem(thickness)))
	return &s
}

// Evaluate returns the minimum distance to the shelled SDF3.
func (s *shell3) Evaluate(p r3.Vec) float64 {
	return math.Abs(s.sdf.Evaluate(p)) - s.delta
}

// Bounds returns the bounding box of the shelled SDF3.
func (s *shell3) Bounds() r3.Box {
	return s.bb
}

package form3

import (
	"math"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// MetatronParams parameterize the Metatron lattice: spheres on the thirteen
// node positions of a cuboctahedron (twelve vertices plus the center) joined
// by strut capsules, smooth-blended into one solid.
type MetatronParams struct {
	// Radius of the circumscribing sphere through the outer nodes. (0,100]
	Radius float64
	// Sphere is the node sphere radius. (0,Radius]
	Sphere float64
	// Strut is the capsule radius of the connecting struts. (0,Sphere]
	Strut float64
	// Blend is the smooth union radius. [0,1]
	Blend float64
}

func defaultMetatronParams() MetatronParams {
	return MetatronParams{
		Radius: 1.0,
		Sphere: 0.32,
		Strut:  0.08,
		Blend:  0.18,
	}
}

// Variant returns Metatron.
func (p *MetatronParams) Variant() Variant { return Metatron }

// Keys returns the recognized option keys.
func (p *MetatronParams) Keys() []string {
	return []string{"metaRadius", "metaSphere", "metaStrut", "metaBlend"}
}

// Set overrides one named option.
func (p *MetatronParams) Set(key string, value float64) error {
	switch key {
	case "metaRadius":
		p.Radius = value
	case "metaSphere":
		p.Sphere = value
	case "metaStrut":
		p.Strut = value
	case "metaBlend":
		p.Blend = value
	default:
		return badKey(Metatron, key)
	}
	return nil
}

func (p *MetatronParams) validate() error {
	if p.Radius <= 0 || p.Radius > 100 {
		return badRange(Metatron, "metaRadius", p.Radius, 0, 100)
	}
	if p.Sphere <= 0 || p.Sphere > p.Radius {
		return badRange(Metatron, "metaSphere", p.Sphere, 0, p.Radius)
	}
	if p.Strut <= 0 || p.Strut > p.Sphere {
		return badRange(Metatron, "metaStrut", p.Strut, 0, p.Sphere)
	}
	return checkRange(Metatron, "metaBlend", p.Blend, 0, 1)
}

// metatron is the blended node and strut lattice.
type metatron struct {
	lattice fracmesh.SDF3
	bb      r3.Box
}

// metatronNodes returns the twelve cuboctahedron vertices at circumradius r,
// the permutations of (+-1,+-1,0)/sqrt(2) scaled by r.
func metatronNodes(r float64) []r3.Vec {
	h := r / math.Sqrt2
	v := make([]r3.Vec, 0, 12)
	for _, a := range []float64{-h, h} {
		for _, b := range []float64{-h, h} {
			v = append(v,
				r3.Vec{X: a, Y: b},
				r3.Vec{Y: a, Z: b},
				r3.Vec{X: a, Z: b},
			)
		}
	}
	return v
}

// NewMetatron returns an SDF3 for the Metatron lattice at the given
// parameters.
func NewMetatron(p MetatronParams) (fracmesh.SDF3, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	nodes := metatronNodes(p.Radius)
	prims := make([]fracmesh.SDF3, 0, 1+len(nodes)*2+24)
	prims = append(prims, newSphere(r3.Vec{}, p.Sphere))
	for _, n := range nodes {
		prims = append(prims, newSphere(n, p.Sphere))
		prims = append(prims, newCapsule(r3.Vec{}, n, p.Strut))
	}
	// the cuboctahedron edge length equals its circumradius, so neighboring
	// nodes sit one radius apart
	edge := 1.05 * p.Radius
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if r3.Norm(r3.Sub(nodes[i], nodes[j])) < edge {
				prims = append(prims, newCapsule(nodes[i], nodes[j], p.Strut))
			}
		}
	}
	lattice := fracmesh.Union3D(prims...)
	if p.Blend > 0 {
		lattice.SetMin(fracmesh.PolyMin(p.Blend))
	}
	s := metatron{lattice: lattice}
	// work out the bounding box
	s.bb = r3.Box(d3.Box(lattice.Bounds()).Enlarge(d3.Elem(2 * p.Blend)))
	return &s, nil
}

// Evaluate returns the minimum distance to the lattice.
func (s *metatron) Evaluate(p r3.Vec) float64 {
	return s.lattice.Evaluate(p)
}

// Bounds returns the bounding box of the lattice.
func (s *metatron) Bounds() r3.Box {
	return s.bb
}

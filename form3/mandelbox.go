package form3

import (
	"math"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// MandelboxParams parameterize the folded box fractal.
type MandelboxParams struct {
	// Scale multiplies the folded point every iteration. Magnitude must
	// exceed 1 for the distance estimate to hold. [-5,-1.01] or [1.01,5]
	Scale float64
	// MinRadius is the inner sphere-fold radius. (0,FixedRadius]
	MinRadius float64
	// FixedRadius is the outer sphere-fold radius. (0,5]
	FixedRadius float64
	// Iterations caps the fold iteration. [1,250]
	Iterations int
}

func defaultMandelboxParams() MandelboxParams {
	return MandelboxParams{
		Scale:       -1.5,
		MinRadius:   0.5,
		FixedRadius: 1.0,
		Iterations:  10,
	}
}

// Variant returns Mandelbox.
func (p *MandelboxParams) Variant() Variant { return Mandelbox }

// Keys returns the recognized option keys.
func (p *MandelboxParams) Keys() []string {
	return []string{"mbScale", "mbMinRadius", "mbFixedRadius", "mbIter"}
}

// Set overrides one named option.
func (p *MandelboxParams) Set(key string, value float64) error {
	switch key {
	case "mbScale":
		p.Scale = value
	case "mbMinRadius":
		p.MinRadius = value
	case "mbFixedRadius":
		p.FixedRadius = value
	case "mbIter":
		p.Iterations = int(value)
	default:
		return badKey(Mandelbox, key)
	}
	return nil
}

func (p *MandelboxParams) validate() error {
	if math.Abs(p.Scale) <= 1 || math.Abs(p.Scale) > 5 {
		return badRange(Mandelbox, "mbScale", p.Scale, -5, 5)
	}
	if p.FixedRadius <= 0 || p.FixedRadius > 5 {
		return badRange(Mandelbox, "mbFixedRadius", p.FixedRadius, 0, 5)
	}
	if p.MinRadius <= 0 || p.MinRadius > p.FixedRadius {
		return badRange(Mandelbox, "mbMinRadius", p.MinRadius, 0, p.FixedRadius)
	}
	return checkIter(Mandelbox, "mbIter", p.Iterations)
}

// mandelbox is the box-fold/sphere-fold fractal.
type mandelbox struct {
	scale   float64
	minR2   float64
	fixedR2 float64
	surf    float64
	iter    int
	bb      r3.Box
}

// NewMandelbox returns an SDF3 for the Mandelbox at the given parameters.
func NewMandelbox(p MandelboxParams) (fracmesh.SDF3, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	s := mandelbox{
		scale:   p.Scale,
		minR2:   p.MinRadius * p.MinRadius,
		fixedR2: p.FixedRadius * p.FixedRadius,
		surf:    mandelboxSurface * p.FixedRadius,
		iter:    p.Iterations,
	}
	// work out the bounding box
	s.bb = r3.Box(d3.NewBox(r3.Vec{}, d3.Elem(12*p.FixedRadius)))
	return &s, nil
}

const (
	// mandelboxEscape is the escape radius of the fold iteration.
	mandelboxEscape = 6.0
	// mandelboxSurface thickens the estimate into a solid shell. The fold
	// estimate r/|dr| stays positive for any finite iteration cap, so the
	// zero level set is empty without an offset.
	mandelboxSurface = 0.05
)

// Evaluate returns the estimated minimum distance to the Mandelbox surface.
// Fold-type fractals accumulate a linear derivative factor, so the estimate
// is r/|dr| rather than the logarithmic form of the power-iterated variants.
func (s *mandelbox) Evaluate(p r3.Vec) float64 {
	z := p
	dr := 1.0
	for i := 0; i < s.iter; i++ {
		z = fracmesh.BoxFold(z, 1.0)
		var f float64
		z, f = fracmesh.SphereFold(z, s.minR2, s.fixedR2)
		dr *= f
		z = r3.Add(r3.Scale(s.scale, z), p)
		dr = dr*math.Abs(s.scale) + 1
		if r3.Norm2(z) > mandelboxEscape*mandelboxEscape {
			break
		}
	}
	return r3.Norm(z)/math.Max(math.Abs(dr), 1e-8) - s.surf
}

// Bounds returns the bounding box of the Mandelbox.
func (s *mandelbox) Bounds() r3.Box {
	return s.bb
}

package form3

import (
	"math"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// TyphoonParams parameterize the typhoon hybrid: a box fold and a
// height-coupled twist feeding a scaled power-2 triplex iteration.
type TyphoonParams struct {
	// Scale multiplies the squared radius each iteration. (1,3]
	Scale float64
	// Twist couples the rotation angle to the z coordinate. [-2,2]
	Twist float64
	// Pull weights the re-added seed point. [0,2]
	Pull float64
	// Iterations caps the escape-time iteration. [1,250]
	Iterations int
}

func defaultTyphoonParams() TyphoonParams {
	return TyphoonParams{
		Scale:      1.9,
		Twist:      0.35,
		Pull:       0.6,
		Iterations: 14,
	}
}

// Variant returns Typhoon.
func (p *TyphoonParams) Variant() Variant { return Typhoon }

// Keys returns the recognized option keys.
func (p *TyphoonParams) Keys() []string {
	return []string{"typhoonScale", "typhoonTwist", "typhoonPull", "typhoonIter"}
}

// Set overrides one named option.
func (p *TyphoonParams) Set(key string, value float64) error {
	switch key {
	case "typhoonScale":
		p.Scale = value
	case "typhoonTwist":
		p.Twist = value
	case "typhoonPull":
		p.Pull = value
	case "typhoonIter":
		p.Iterations = int(value)
	default:
		return badKey(Typhoon, key)
	}
	return nil
}

func (p *TyphoonParams) validate() error {
	if p.Scale <= 1 || p.Scale > 3 {
		return badRange(Typhoon, "typhoonScale", p.Scale, 1, 3)
	}
	if err := checkRange(Typhoon, "typhoonTwist", p.Twist, -2, 2); err != nil {
		return err
	}
	if err := checkRange(Typhoon, "typhoonPull", p.Pull, 0, 2); err != nil {
		return err
	}
	return checkIter(Typhoon, "typhoonIter", p.Iterations)
}

// typhoon is the folded and twisted escape-time hybrid.
type typhoon struct {
	scale float64
	twist float64
	pull  float64
	iter  int
	bb    r3.Box
}

// NewTyphoon returns an SDF3 for the typhoon hybrid at the given parameters.
func NewTyphoon(p TyphoonParams) (fracmesh.SDF3, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	s := typhoon{
		scale: p.Scale,
		twist: p.Twist,
		pull:  p.Pull,
		iter:  p.Iterations,
	}
	// work out the bounding box
	s.bb = r3.Box(d3.NewBox(r3.Vec{}, d3.Elem(8)))
	return &s, nil
}

// typhoonEscape is the escape radius of the hybrid iteration.
const typhoonEscape = 6.0

// Evaluate returns the estimated minimum distance to the typhoon surface.
func (s *typhoon) Evaluate(p r3.Vec) float64 {
	z := p
	dr := 1.0
	r := r3.Norm(z)
	for i := 0; i < s.iter && r <= typhoonEscape; i++ {
		z = fracmesh.BoxFold(z, 1.0)
		// twist about z, angle growing with height
		ang := s.twist * z.Z
		sin, cos := math.Sincos(ang)
		z = r3.Vec{X: cos*z.X - sin*z.Y, Y: sin*z.X + cos*z.Y, Z: z.Z}
		r = r3.Norm(z)
		rr := math.Max(r, 1e-8)
		theta := math.Acos(fracmesh.Clamp(z.Z/rr, -1, 1))
		phi := math.Atan2(z.Y, z.X)
		dr = 2*rr*s.scale*dr + 1
		zr := s.scale * rr * rr
		theta *= 2
		phi *= 2
		sinTheta := math.Sin(theta)
		z = r3.Add(r3.Scale(s.pull, p), r3.Scale(zr, r3.Vec{
			X: sinTheta * math.Cos(phi),
			Y: sinTheta * math.Sin(phi),
			Z: math.Cos(theta),
		}))
		r = r3.Norm(z)
	}
	r = math.Max(r, 1e-8)
	return 0.5 * math.Log(r) * r / math.Max(dr, 1e-8)
}

// Bounds returns the bounding box of the typhoon.
func (s *typhoon) Bounds() r3.Box {
	return s.bb
}

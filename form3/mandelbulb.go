package form3

import (
	"math"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// MandelbulbParams parameterize the power-iterated triplex Mandelbulb.
// The effective power of the iteration is PowerBase+PowerAmp.
type MandelbulbParams struct {
	// MaxIterations caps the escape-time iteration. [1,250]
	MaxIterations int
	// PowerBase is the triplex exponent. [2,16]
	PowerBase float64
	// PowerAmp is an additive offset on the exponent. [-4,4]
	PowerAmp float64
}

func defaultMandelbulbParams() MandelbulbParams {
	return MandelbulbParams{
		MaxIterations: 15,
		PowerBase:     8.0,
		PowerAmp:      0.0,
	}
}

// Variant returns Mandelbulb.
func (p *MandelbulbParams) Variant() Variant { return Mandelbulb }

// Keys returns the recognized option keys.
func (p *MandelbulbParams) Keys() []string {
	return []string{"maxIterations", "powerBase", "powerAmp"}
}

// Set overrides one named option.
func (p *MandelbulbParams) Set(key string, value float64) error {
	switch key {
	case "maxIterations":
		p.MaxIterations = int(value)
	case "powerBase":
		p.PowerBase = value
	case "powerAmp":
		p.PowerAmp = value
	default:
		return badKey(Mandelbulb, key)
	}
	return nil
}

func (p *MandelbulbParams) validate() error {
	if err := checkIter(Mandelbulb, "maxIterations", p.MaxIterations); err != nil {
		return err
	}
	if err := checkRange(Mandelbulb, "powerBase", p.PowerBase, 2, 16); err != nil {
		return err
	}
	if err := checkRange(Mandelbulb, "powerAmp", p.PowerAmp, -4, 4); err != nil {
		return err
	}
	if p.PowerBase+p.PowerAmp < 2 {
		return badRange(Mandelbulb, "powerBase+powerAmp", p.PowerBase+p.PowerAmp, 2, 20)
	}
	return nil
}

// mandelbulb is the escape-time triplex power fractal.
type mandelbulb struct {
	maxIter int
	power   float64
	bb      r3.Box
}

// NewMandelbulb returns an SDF3 for the Mandelbulb at the given parameters.
func NewMandelbulb(p MandelbulbParams) (fracmesh.SDF3, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	s := mandelbulb{
		maxIter: p.MaxIterations,
		power:   p.PowerBase + p.PowerAmp,
	}
	// work out the bounding box
	s.bb = r3.Box(d3.NewBox(r3.Vec{}, d3.Elem(5)))
	return &s, nil
}

// mandelbulbEscape is the escape radius of the triplex iteration.
const mandelbulbEscape = 2.0

// Evaluate returns the estimated minimum distance to the Mandelbulb surface.
func (s *mandelbulb) Evaluate(p r3.Vec) float64 {
	z := p
	dr := 1.0
	r := r3.Norm(z)
	for i := 0; i < s.maxIter && r <= mandelbulbEscape; i++ {
		rr := math.Max(r, 1e-8)
		theta := math.Acos(fracmesh.Clamp(z.Z/rr, -1, 1))
		phi := math.Atan2(z.Y, z.X)
		dr = math.Pow(rr, s.power-1)*s.power*dr + 1
		// scale and rotate the point
		zr := math.Pow(rr, s.power)
		theta *= s.power
		phi *= s.power
		sinTheta := math.Sin(theta)
		z = r3.Add(p, r3.Scale(zr, r3.Vec{
			X: sinTheta * math.Cos(phi),
			Y: sinTheta * math.Sin(phi),
			Z: math.Cos(theta),
		}))
		r = r3.Norm(z)
	}
	r = math.Max(r, 1e-8)
	return 0.5 * math.Log(r) * r / dr
}

// Bounds returns the bounding box of the Mandelbulb.
func (s *mandelbulb) Bounds() r3.Box {
	return s.bb
}

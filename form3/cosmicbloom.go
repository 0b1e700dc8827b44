package form3

import (
	"math"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// CosmicBloomParams parameterize the bloom: a triplex power iteration with a
// petal modulation added to the polar angle.
type CosmicBloomParams struct {
	// Power is the triplex exponent. [2,12]
	Power float64
	// Petals is the angular frequency of the modulation. [1,32]
	Petals float64
	// Spread is the modulation amplitude in radians. [0,1]
	Spread float64
	// Iterations caps the escape-time iteration. [1,250]
	Iterations int
}

func defaultCosmicBloomParams() CosmicBloomParams {
	return CosmicBloomParams{
		Power:      6.0,
		Petals:     7.0,
		Spread:     0.45,
		Iterations: 13,
	}
}

// Variant returns CosmicBloom.
func (p *CosmicBloomParams) Variant() Variant { return CosmicBloom }

// Keys returns the recognized option keys.
func (p *CosmicBloomParams) Keys() []string {
	return []string{"bloomPower", "bloomPetals", "bloomSpread", "bloomIter"}
}

// Set overrides one named option.
func (p *CosmicBloomParams) Set(key string, value float64) error {
	switch key {
	case "bloomPower":
		p.Power = value
	case "bloomPetals":
		p.Petals = value
	case "bloomSpread":
		p.Spread = value
	case "bloomIter":
		p.Iterations = int(value)
	default:
		return badKey(CosmicBloom, key)
	}
	return nil
}

func (p *CosmicBloomParams) validate() error {
	if err := checkRange(CosmicBloom, "bloomPower", p.Power, 2, 12); err != nil {
		return err
	}
	if err := checkRange(CosmicBloom, "bloomPetals", p.Petals, 1, 32); err != nil {
		return err
	}
	if err := checkRange(CosmicBloom, "bloomSpread", p.Spread, 0, 1); err != nil {
		return err
	}
	return checkIter(CosmicBloom, "bloomIter", p.Iterations)
}

// cosmicbloom is the petal-modulated triplex fractal.
type cosmicbloom struct {
	power  float64
	petals float64
	spread float64
	iter   int
	bb     r3.Box
}

// NewCosmicBloom returns an SDF3 for the bloom at the given parameters.
func NewCosmicBloom(p CosmicBloomParams) (fracmesh.SDF3, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	s := cosmicbloom{
		power:  p.Power,
		petals: p.Petals,
		spread: p.Spread,
		iter:   p.Iterations,
	}
	// work out the bounding box
	s.bb = r3.Box(d3.NewBox(r3.Vec{}, d3.Elem(5)))
	return &s, nil
}

// cosmicBloomEscape is the escape radius of the triplex iteration.
const cosmicBloomEscape = 2.0

// Evaluate returns the estimated minimum distance to the bloom surface.
func (s *cosmicbloom) Evaluate(p r3.Vec) float64 {
	z := p
	dr := 1.0
	r := r3.Norm(z)
	for i := 0; i < s.iter && r <= cosmicBloomEscape; i++ {
		rr := math.Max(r, 1e-8)
		theta := math.Acos(fracmesh.Clamp(z.Z/rr, -1, 1))
		phi := math.Atan2(z.Y, z.X)
		dr = math.Pow(rr, s.power-1)*s.power*dr + 1
		zr := math.Pow(rr, s.power)
		// petal modulation folds the polar angle with the azimuth
		theta = theta*s.power + s.spread*math.Sin(s.petals*phi)
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
	return 0.5 * math.Log(r) * r / math.Max(dr, 1e-8)
}

// Bounds returns the bounding box of the bloom.
func (s *cosmicbloom) Bounds() r3.Box {
	return s.bb
}

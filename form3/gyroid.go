package form3

import (
	"math"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// GyroidParams parameterize the triply periodic gyroid surface.
type GyroidParams struct {
	// Level shifts the extracted level set. [-3,3]
	Level float64
	// Scale stretches the lattice. The pattern repeats with period
	// 2*pi*Scale along each axis. (0,100]
	Scale float64
	// Mod > 0 turns the level set into a shell of that half thickness. [0,10]
	Mod float64
}

func defaultGyroidParams() GyroidParams {
	return GyroidParams{
		Level: 0.0,
		Scale: 3.0,
		Mod:   0.0,
	}
}

// Variant returns Gyroid.
func (p *GyroidParams) Variant() Variant { return Gyroid }

// Keys returns the recognized option keys.
func (p *GyroidParams) Keys() []string {
	return []string{"gyroLevel", "gyroScale", "gyroMod"}
}

// Set overrides one named option.
func (p *GyroidParams) Set(key string, value float64) error {
	switch key {
	case "gyroLevel":
		p.Level = value
	case "gyroScale":
		p.Scale = value
	case "gyroMod":
		p.Mod = value
	default:
		return badKey(Gyroid, key)
	}
	return nil
}

func (p *GyroidParams) validate() error {
	if err := checkRange(Gyroid, "gyroLevel", p.Level, -3, 3); err != nil {
		return err
	}
	if p.Scale <= 0 || p.Scale > 100 {
		return badRange(Gyroid, "gyroScale", p.Scale, 0, 100)
	}
	return checkRange(Gyroid, "gyroMod", p.Mod, 0, 10)
}

// gyroid is the triply periodic minimal surface pattern.
type gyroid struct {
	level float64
	scale float64
	mod   float64
	bb    r3.Box
}

// NewGyroid returns an SDF3 for the gyroid lattice at the given parameters.
func NewGyroid(p GyroidParams) (fracmesh.SDF3, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	s := gyroid{
		level: p.Level,
		scale: p.Scale,
		mod:   p.Mod,
	}
	// work out the bounding box
	s.bb = r3.Box(d3.NewBox(r3.Vec{}, d3.Elem(8*p.Scale)))
	return &s, nil
}

// Evaluate returns the approximate minimum distance to the gyroid surface.
// The implicit value is rescaled by scale/3 to bound the gradient near 1.
func (s *gyroid) Evaluate(p r3.Vec) float64 {
	x := p.X / s.scale
	y := p.Y / s.scale
	z := p.Z / s.scale
	g := math.Sin(x)*math.Cos(y) + math.Sin(y)*math.Cos(z) + math.Sin(z)*math.Cos(x)
	d := g - s.level
	if s.mod > 0 {
		d = math.Abs(d) - s.mod
	}
	return d * s.scale * 0.33
}

// Bounds returns the bounding box of the gyroid lattice.
func (s *gyroid) Bounds() r3.Box {
	return s.bb
}

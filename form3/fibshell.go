package form3

import (
	"math"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// FibShellParams parameterize the Fibonacci shell, a kaleidoscopic fold
// fractal rotated by the golden angle every iteration.
type FibShellParams struct {
	// Scale multiplies the folded point every iteration. (1,3]
	Scale float64
	// OffsetX..OffsetZ anchor the iteration. [-2,2] each
	OffsetX, OffsetY, OffsetZ float64
	// Iterations caps the fold iteration. [1,250]
	Iterations int
}

func defaultFibShellParams() FibShellParams {
	return FibShellParams{
		Scale:      1.8,
		OffsetX:    1.0,
		OffsetY:    0.5,
		OffsetZ:    0.3,
		Iterations: 12,
	}
}

// Variant returns FibonacciShell.
func (p *FibShellParams) Variant() Variant { return FibonacciShell }

// Keys returns the recognized option keys.
func (p *FibShellParams) Keys() []string {
	return []string{"fibScale", "fibOffsetX", "fibOffsetY", "fibOffsetZ", "fibIter"}
}

// Set overrides one named option.
func (p *FibShellParams) Set(key string, value float64) error {
	switch key {
	case "fibScale":
		p.Scale = value
	case "fibOffsetX":
		p.OffsetX = value
	case "fibOffsetY":
		p.OffsetY = value
	case "fibOffsetZ":
		p.OffsetZ = value
	case "fibIter":
		p.Iterations = int(value)
	default:
		return badKey(FibonacciShell, key)
	}
	return nil
}

func (p *FibShellParams) validate() error {
	if p.Scale <= 1 || p.Scale > 3 {
		return badRange(FibonacciShell, "fibScale", p.Scale, 1, 3)
	}
	for _, c := range [...]struct {
		key string
		v   float64
	}{
		{"fibOffsetX", p.OffsetX},
		{"fibOffsetY", p.OffsetY},
		{"fibOffsetZ", p.OffsetZ},
	} {
		if err := checkRange(FibonacciShell, c.key, c.v, -2, 2); err != nil {
			return err
		}
	}
	return checkIter(FibonacciShell, "fibIter", p.Iterations)
}

// fibshell is the golden-angle kaleidoscopic fold fractal.
type fibshell struct {
	scale  float64
	anchor r3.Vec
	cosG   float64
	sinG   float64
	iter   int
	bb     r3.Box
}

// NewFibonacciShell returns an SDF3 for the Fibonacci shell at the given
// parameters.
func NewFibonacciShell(p FibShellParams) (fracmesh.SDF3, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	s := fibshell{
		scale:  p.Scale,
		anchor: r3.Vec{X: p.OffsetX, Y: p.OffsetY, Z: p.OffsetZ},
		cosG:   math.Cos(fracmesh.GoldenAngle),
		sinG:   math.Sin(fracmesh.GoldenAngle),
		iter:   p.Iterations,
	}
	// work out the bounding box
	s.bb = r3.Box(d3.NewBox(r3.Vec{}, d3.Elem(6)))
	return &s, nil
}

const (
	// fibShellEscape is the escape radius of the fold iteration.
	fibShellEscape = 4.0
	// fibShellSurface is the orbit radius separating inside from outside.
	// The contraction to the anchor keeps bounded orbits under this radius
	// while escaping orbits leave it, so the shell forms where the final
	// radius crosses it.
	fibShellSurface = 2.0
)

// Evaluate returns the estimated minimum distance to the Fibonacci shell.
func (s *fibshell) Evaluate(p r3.Vec) float64 {
	z := p
	dr := 1.0
	for i := 0; i < s.iter; i++ {
		z = fracmesh.BoxFold(z, 1.0)
		// rotate around the z axis by the golden angle
		z = r3.Vec{
			X: s.cosG*z.X - s.sinG*z.Y,
			Y: s.sinG*z.X + s.cosG*z.Y,
			Z: z.Z,
		}
		z = r3.Sub(r3.Scale(s.scale, z), s.anchor)
		dr *= s.scale
		if r3.Norm(z) > fibShellEscape {
			break
		}
	}
	return (r3.Norm(z) - fibShellSurface) / math.Max(dr, 1e-8)
}

// Bounds returns the bounding box of the Fibonacci shell.
func (s *fibshell) Bounds() r3.Box {
	return s.bb
}

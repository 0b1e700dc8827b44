package form3

import (
	"math"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// JuliaParams parameterize the quaternion Julia set. The sampled point is
// embedded into the quaternion hyperplane with zero k component and iterated
// as q -> q*q + c.
type JuliaParams struct {
	// CX..CW are the components of the Julia constant c. [-2,2] each
	CX, CY, CZ, CW float64
	// Iterations caps the escape-time iteration. [1,250]
	Iterations int
}

func defaultJuliaParams() JuliaParams {
	return JuliaParams{
		CX:         -0.2,
		CY:         0.6,
		CZ:         0.2,
		CW:         0.2,
		Iterations: 11,
	}
}

// Variant returns QuaternionJulia.
func (p *JuliaParams) Variant() Variant { return QuaternionJulia }

// Keys returns the recognized option keys.
func (p *JuliaParams) Keys() []string {
	return []string{"juliaCX", "juliaCY", "juliaCZ", "juliaCW", "juliaIter"}
}

// Set overrides one named option.
func (p *JuliaParams) Set(key string, value float64) error {
	switch key {
	case "juliaCX":
		p.CX = value
	case "juliaCY":
		p.CY = value
	case "juliaCZ":
		p.CZ = value
	case "juliaCW":
		p.CW = value
	case "juliaIter":
		p.Iterations = int(value)
	default:
		return badKey(QuaternionJulia, key)
	}
	return nil
}

func (p *JuliaParams) validate() error {
	for _, c := range [...]struct {
		key string
		v   float64
	}{
		{"juliaCX", p.CX},
		{"juliaCY", p.CY},
		{"juliaCZ", p.CZ},
		{"juliaCW", p.CW},
	} {
		if err := checkRange(QuaternionJulia, c.key, c.v, -2, 2); err != nil {
			return err
		}
	}
	return checkIter(QuaternionJulia, "juliaIter", p.Iterations)
}

// julia is the quaternion Julia set fractal.
type julia struct {
	c    quat.Number
	iter int
	bb   r3.Box
}

// NewQuaternionJulia returns an SDF3 for the quaternion Julia set at the
// given parameters.
func NewQuaternionJulia(p JuliaParams) (fracmesh.SDF3, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	s := julia{
		c:    quat.Number{Real: p.CX, Imag: p.CY, Jmag: p.CZ, Kmag: p.CW},
		iter: p.Iterations,
	}
	// work out the bounding box
	s.bb = r3.Box(d3.NewBox(r3.Vec{}, d3.Elem(4)))
	return &s, nil
}

// juliaEscape is the escape radius of the quaternion iteration.
const juliaEscape = 4.0

// Evaluate returns the estimated minimum distance to the Julia set surface.
func (s *julia) Evaluate(p r3.Vec) float64 {
	q := quat.Number{Real: p.X, Imag: p.Y, Jmag: p.Z}
	dq := quat.Number{Real: 1}
	r := quat.Abs(q)
	for i := 0; i < s.iter && r <= juliaEscape; i++ {
		dq = quat.Scale(2, quat.Mul(q, dq))
		q = quat.Add(quat.Mul(q, q), s.c)
		r = quat.Abs(q)
	}
	r = math.Max(r, 1e-8)
	dr := math.Max(quat.Abs(dq), 1e-8)
	return 0.5 * math.Log(r) * r / dr
}

// Bounds returns the bounding box of the Julia set.
func (s *julia) Bounds() r3.Box {
	return s.bb
}

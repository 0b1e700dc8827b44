package form3

import (
	"math"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// FoLDomeParams parameterize the flower-of-life dome: a hemispherical shell
// with band reliefs raised around Fibonacci-distributed directions, blended
// onto a floor slab.
type FoLDomeParams struct {
	// Radius of the dome sphere. (0,1000]
	Radius float64
	// Thickness of the shell and the floor slab. (0,Radius)
	Thickness float64
	// BandCount is the number of lattice directions carrying a band. [1,500]
	BandCount int
	// BandWidth is the angular half width of one band in radians. (0,1]
	BandWidth float64
	// BandDepth is the radial height of the band relief. [0,5]
	BandDepth float64
	// FloorBlend is the smooth union radius joining dome and floor. [0,10]
	FloorBlend float64
}

func defaultFoLDomeParams() FoLDomeParams {
	return FoLDomeParams{
		Radius:     15,
		Thickness:  1.2,
		BandCount:  21,
		BandWidth:  0.55,
		BandDepth:  0.9,
		FloorBlend: 2.5,
	}
}

// Variant returns FoLDome.
func (p *FoLDomeParams) Variant() Variant { return FoLDome }

// Keys returns the recognized option keys.
func (p *FoLDomeParams) Keys() []string {
	return []string{"domeRadius", "domeThickness", "bandCount", "bandWidth", "bandDepth", "floorBlend"}
}

// Set overrides one named option.
func (p *FoLDomeParams) Set(key string, value float64) error {
	switch key {
	case "domeRadius":
		p.Radius = value
	case "domeThickness":
		p.Thickness = value
	case "bandCount":
		p.BandCount = int(value)
	case "bandWidth":
		p.BandWidth = value
	case "bandDepth":
		p.BandDepth = value
	case "floorBlend":
		p.FloorBlend = value
	default:
		return badKey(FoLDome, key)
	}
	return nil
}

func (p *FoLDomeParams) validate() error {
	if p.Radius <= 0 || p.Radius > 1000 {
		return badRange(FoLDome, "domeRadius", p.Radius, 0, 1000)
	}
	if p.Thickness <= 0 || p.Thickness >= p.Radius {
		return badRange(FoLDome, "domeThickness", p.Thickness, 0, p.Radius)
	}
	if p.BandCount < 1 || p.BandCount > 500 {
		return badRange(FoLDome, "bandCount", float64(p.BandCount), 1, 500)
	}
	if p.BandWidth <= 0 || p.BandWidth > 1 {
		return badRange(FoLDome, "bandWidth", p.BandWidth, 0, 1)
	}
	if err := checkRange(FoLDome, "bandDepth", p.BandDepth, 0, 5); err != nil {
		return err
	}
	return checkRange(FoLDome, "floorBlend", p.FloorBlend, 0, 10)
}

// foldome is the flower-of-life dome.
type foldome struct {
	shell      fracmesh.SDF3
	dirs       []r3.Vec
	radius     float64
	thickness  float64
	bandWidth  float64
	bandDepth  float64
	floorBlend float64
	bb         r3.Box
}

// foldomeMargin widens the dome bounding box past the sphere radius so the
// band relief and floor blend stay inside it.
const foldomeMargin = 0.2

// NewFoLDome returns an SDF3 for the flower-of-life dome at the given
// parameters.
func NewFoLDome(p FoLDomeParams) (fracmesh.SDF3, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	s := foldome{
		shell:      fracmesh.Shell3D(newSphere(r3.Vec{}, p.Radius), p.Thickness),
		dirs:       make([]r3.Vec, p.BandCount),
		radius:     p.Radius,
		thickness:  p.Thickness,
		bandWidth:  p.BandWidth,
		bandDepth:  p.BandDepth,
		floorBlend: p.FloorBlend,
	}
	for i := range s.dirs {
		s.dirs[i] = fracmesh.FibonacciDirection(i, p.BandCount)
	}
	// work out the bounding box
	side := 2 * (1 + foldomeMargin) * p.Radius
	s.bb = r3.Box(d3.NewBox(r3.Vec{}, d3.Elem(side)))
	return &s, nil
}

// Evaluate returns the minimum distance to the dome.
func (s *foldome) Evaluate(p r3.Vec) float64 {
	d := s.shell.Evaluate(p)
	// raise a band where the direction of p comes near a lattice direction
	rr := math.Max(r3.Norm(p), 1e-6)
	u := r3.Scale(1/rr, p)
	best := math.Pi
	for _, dir := range s.dirs {
		ang := math.Acos(fracmesh.Clamp(r3.Dot(u, dir), -1, 1))
		if ang < best {
			best = ang
		}
	}
	if best < s.bandWidth {
		x := best / s.bandWidth
		d -= s.bandDepth * (1 - x*x)
	}
	// cut the sphere shell down to a dome
	d = math.Max(d, -p.Z)
	// floor slab under the dome rim
	floor := math.Max(math.Abs(p.Z-0.5*s.thickness)-0.5*s.thickness, math.Hypot(p.X, p.Y)-s.radius)
	return fracmesh.SmoothMin(d, floor, s.floorBlend)
}

// Bounds returns the bounding box of the dome.
func (s *foldome) Bounds() r3.Box {
	return s.bb
}

package render

import (
	"errors"
	"fmt"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrResolution is returned when a sample resolution has fewer than two
	// samples on some axis.
	ErrResolution = errors.New("resolution must be at least 2 samples per axis")
	// ErrBox is returned when a sample box is degenerate.
	ErrBox = errors.New("degenerate sample box")
	// ErrCanceled is returned when a progress callback requests a stop.
	ErrCanceled = errors.New("render canceled")
	// ErrNonFinite is returned when a NaN or infinite sample reaches the
	// isosurface extractor.
	ErrNonFinite = errors.New("non finite field sample")
)

// ProgressFunc receives coarse progress reports from long pipeline stages.
// It is called synchronously every progressInterval samples and once at the
// end of the stage. Returning stop aborts the stage with ErrCanceled.
type ProgressFunc func(done, total int, stage string) (stop bool)

// progressInterval is the number of samples between progress reports.
const progressInterval = 100_000

// ScalarField holds signed distance samples over a regular grid. Samples are
// stored flat in z-major order: sample (ix,iy,iz) lives at index
// (iz*ny+iy)*nx + ix.
type ScalarField struct {
	Vals    []float64
	Size    fracmesh.V3i // samples per axis, each at least 2
	Origin  r3.Vec       // position of sample (0,0,0)
	Spacing r3.Vec       // distance between neighboring samples per axis
}

// Index returns the flat index of grid coordinate c.
func (f *ScalarField) Index(c fracmesh.V3i) int {
	return (c[2]*f.Size[1]+c[1])*f.Size[0] + c[0]
}

// At returns the sample at grid coordinate c.
func (f *ScalarField) At(c fracmesh.V3i) float64 {
	return f.Vals[f.Index(c)]
}

// Pos returns the world position of grid coordinate c.
func (f *ScalarField) Pos(c fracmesh.V3i) r3.Vec {
	return r3.Add(f.Origin, d3.MulElem(f.Spacing, c.ToV3()))
}

// Bounds returns the box spanned by the outermost samples.
func (f *ScalarField) Bounds() r3.Box {
	return r3.Box{
		Min: f.Origin,
		Max: f.Pos(f.Size.SubScalar(1)),
	}
}

// SampleField evaluates s over a regular size[0] x size[1] x size[2] grid
// spanning box and returns the filled field. The sampling order is
// deterministic: x fastest, then y, then z. Non finite evaluations are stored
// as-is and diagnosed by MarchField. progress may be nil.
func SampleField(s fracmesh.SDF3, box r3.Box, size fracmesh.V3i, progress ProgressFunc) (*ScalarField, error) {
	for _, n := range size {
		if n < 2 {
			return nil, fmt.Errorf("%w: got %v", ErrResolution, size)
		}
	}
	bb := d3.Box(box)
	if d3.LTEZero(bb.Size()) {
		return nil, fmt.Errorf("%w: %+v", ErrBox, box)
	}
	f := &ScalarField{
		Vals:    make([]float64, size[0]*size[1]*size[2]),
		Size:    size,
		Origin:  box.Min,
		Spacing: d3.DivElem(bb.Size(), size.SubScalar(1).ToV3()),
	}
	total := len(f.Vals)
	idx := 0
	for iz := 0; iz < size[2]; iz++ {
		for iy := 0; iy < size[1]; iy++ {
			for ix := 0; ix < size[0]; ix++ {
				f.Vals[idx] = s.Evaluate(f.Pos(fracmesh.V3i{ix, iy, iz}))
				idx++
				if progress != nil && idx%progressInterval == 0 && idx != total {
					if progress(idx, total, "sample") {
						return nil, ErrCanceled
					}
				}
			}
		}
	}
	if progress != nil && progress(total, total, "sample") {
		return nil, ErrCanceled
	}
	return f, nil
}

package render

import (
	"fmt"
	"io"
	"math"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// FieldRenderer streams marching cubes triangles for an SDF3 while keeping
// only two z slices of samples in memory. It produces the same triangles in
// the same order as SampleField followed by MarchField.
type FieldRenderer struct {
	s        fracmesh.SDF3
	iso      float64
	size     fracmesh.V3i
	origin   r3.Vec
	spacing  r3.Vec
	progress ProgressFunc

	lo, hi    []float64 // adjacent sample slices, size[0]*size[1] each
	loz       int       // z index held by lo; -1 before the first fill
	layer     int       // cell layer being marched
	iy, ix    int       // cell cursor within the layer
	unwritten triangle3Buffer
	err       error // sticky failure
}

// NewFieldRenderer returns a streaming marching cubes renderer sampling s
// over a regular size[0] x size[1] x size[2] grid spanning box at isolevel
// iso. progress is reported once per sampled slice and may be nil.
func NewFieldRenderer(s fracmesh.SDF3, box r3.Box, size fracmesh.V3i, iso float64, progress ProgressFunc) (*FieldRenderer, error) {
	for _, n := range size {
		if n < 2 {
			return nil, fmt.Errorf("%w: got %v", ErrResolution, size)
		}
	}
	bb := d3.Box(box)
	if d3.LTEZero(bb.Size()) {
		return nil, fmt.Errorf("%w: %+v", ErrBox, box)
	}
	return &FieldRenderer{
		s:         s,
		iso:       iso,
		size:      size,
		origin:    box.Min,
		spacing:   d3.DivElem(bb.Size(), size.SubScalar(1).ToV3()),
		progress:  progress,
		lo:        make([]float64, size[0]*size[1]),
		hi:        make([]float64, size[0]*size[1]),
		loz:       -1,
		unwritten: triangle3Buffer{buf: make([]Triangle3, 0, 1024)},
	}, nil
}

func (r *FieldRenderer) pos(c fracmesh.V3i) r3.Vec {
	return r3.Add(r.origin, d3.MulElem(r.spacing, c.ToV3()))
}

// fillSlice samples the z slice iz into dst.
func (r *FieldRenderer) fillSlice(dst []float64, iz int) error {
	idx := 0
	for iy := 0; iy < r.size[1]; iy++ {
		for ix := 0; ix < r.size[0]; ix++ {
			v := r.s.Evaluate(r.pos(fracmesh.V3i{ix, iy, iz}))
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %v at grid (%d,%d,%d)", ErrNonFinite, v, ix, iy, iz)
			}
			dst[idx] = v
			idx++
		}
	}
	if r.progress != nil && r.progress(iz+1, r.size[2], "slab") {
		return ErrCanceled
	}
	return nil
}

// advance loads the sample slices bracketing cell layer iz.
func (r *FieldRenderer) advance(iz int) error {
	if r.loz == -1 {
		if err := r.fillSlice(r.lo, iz); err != nil {
			return err
		}
		if err := r.fillSlice(r.hi, iz+1); err != nil {
			return err
		}
		r.loz = iz
		return nil
	}
	r.lo, r.hi = r.hi, r.lo
	if err := r.fillSlice(r.hi, iz+1); err != nil {
		return err
	}
	r.loz = iz
	return nil
}

// marchCell emits the triangles of one cell into dst.
func (r *FieldRenderer) marchCell(dst []Triangle3, ix, iy int) int {
	nx := r.size[0]
	base := fracmesh.V3i{ix, iy, r.layer}
	var corners [8]r3.Vec
	var values [8]float64
	for i, off := range mcCornerOffsets {
		c := base.Add(off)
		slab := r.lo
		if off[2] == 1 {
			slab = r.hi
		}
		values[i] = slab[c[1]*nx+c[0]]
		corners[i] = r.pos(c)
	}
	return mcToTriangles(dst, corners, values, r.iso)
}

// ReadTriangles writes rendered triangles into dst and returns the number
// written. io.EOF signals the end of the model.
func (r *FieldRenderer) ReadTriangles(dst []Triangle3) (n int, err error) {
	if len(dst) == 0 {
		panic("cannot read into empty triangle slice")
	}
	if r.err != nil {
		return 0, r.err
	}
	if r.unwritten.Len() > 0 {
		n += r.unwritten.Read(dst[n:])
		if n == len(dst) {
			return n, nil
		}
	}
	cells := r.size.SubScalar(1)
	for r.layer < cells[2] {
		if r.loz != r.layer {
			if err := r.advance(r.layer); err != nil {
				r.err = err
				return n, err
			}
		}
		for ; r.iy < cells[1]; r.iy++ {
			for ; r.ix < cells[0]; r.ix++ {
				if n+marchingCubesMaxTriangles > len(dst) {
					// no room left for a full cell, spill to the side buffer
					var tmp [marchingCubesMaxTriangles]Triangle3
					nt := r.marchCell(tmp[:], r.ix, r.iy)
					r.unwritten.Write(tmp[:nt])
					r.ix++
					return n, nil
				}
				n += r.marchCell(dst[n:], r.ix, r.iy)
			}
			r.ix = 0
		}
		r.iy = 0
		r.layer++
	}
	return n, io.EOF
}

package render

import (
	"fmt"
	"math"

	"github.com/fracmesh/fracmesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// mcCornerOffsets orders the cell corners to match mcPairTable and
// mcTriangleTable: corners 0-3 wind around the low-z face, 4-7 above them.
var mcCornerOffsets = [8]fracmesh.V3i{
	{0, 0, 0},
	{1, 0, 0},
	{1, 1, 0},
	{0, 1, 0},
	{0, 0, 1},
	{1, 0, 1},
	{1, 1, 1},
	{0, 1, 1},
}

// interpEpsilon floors interpolation denominators.
const interpEpsilon = 1e-12

// mcInterpolate returns the point on segment p1-p2 where the field crosses x.
func mcInterpolate(p1, p2 r3.Vec, v1, v2, x float64) r3.Vec {
	if math.Abs(x-v1) < interpEpsilon {
		return p1
	}
	if math.Abs(x-v2) < interpEpsilon {
		return p2
	}
	if math.Abs(v1-v2) < interpEpsilon {
		return p1
	}
	t := (x - v1) / (v2 - v1)
	return r3.Add(p1, r3.Scale(t, r3.Sub(p2, p1)))
}

// mcToTriangles writes the triangles for one cell into dst and returns the
// count written. dst must have room for marchingCubesMaxTriangles. A corner
// is inside when its value lies strictly below x; a corner exactly on x
// counts as outside. Zero area triangles are discarded.
func mcToTriangles(dst []Triangle3, p [8]r3.Vec, v [8]float64, x float64) int {
	index := 0
	for i := range v {
		if v[i] < x {
			index |= 1 << uint(i)
		}
	}
	edges := mcEdgeTable[index]
	if edges == 0 {
		return 0
	}
	// interpolate the crossing point on every cut edge
	var points [12]r3.Vec
	for e := 0; e < 12; e++ {
		if edges&(1<<uint(e)) != 0 {
			a, b := mcPairTable[e][0], mcPairTable[e][1]
			points[e] = mcInterpolate(p[a], p[b], v[a], v[b], x)
		}
	}
	table := mcTriangleTable[index]
	n := 0
	for i := 0; i < len(table); i += 3 {
		// reverse the listed winding so normals point out of the solid
		t := Triangle3{V: [3]r3.Vec{
			points[table[i+2]],
			points[table[i+1]],
			points[table[i]],
		}}
		if !t.Degenerate(0) {
			dst[n] = t
			n++
		}
	}
	return n
}

// MarchField runs marching cubes over every cell of f at isolevel iso and
// returns the extracted mesh. Cells are visited in deterministic z-major
// order and each emits its own vertices without deduplication. A NaN or
// infinite sample aborts the extraction with ErrNonFinite and no mesh.
func MarchField(f *ScalarField, iso float64) (*Mesh, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil field", ErrResolution)
	}
	for _, n := range f.Size {
		if n < 2 {
			return nil, fmt.Errorf("%w: got %v", ErrResolution, f.Size)
		}
	}
	if want := f.Size[0] * f.Size[1] * f.Size[2]; len(f.Vals) != want {
		return nil, fmt.Errorf("%w: %d samples for size %v", ErrResolution, len(f.Vals), f.Size)
	}
	cells := f.Size.SubScalar(1)
	var (
		corners [8]r3.Vec
		values  [8]float64
		buf     [marchingCubesMaxTriangles]Triangle3
	)
	tris := make([]Triangle3, 0, 1<<12)
	for iz := 0; iz < cells[2]; iz++ {
		for iy := 0; iy < cells[1]; iy++ {
			for ix := 0; ix < cells[0]; ix++ {
				base := fracmesh.V3i{ix, iy, iz}
				for i, off := range mcCornerOffsets {
					c := base.Add(off)
					val := f.At(c)
					if math.IsNaN(val) || math.IsInf(val, 0) {
						return nil, fmt.Errorf("%w: %v at grid (%d,%d,%d)", ErrNonFinite, val, c[0], c[1], c[2])
					}
					corners[i] = f.Pos(c)
					values[i] = val
				}
				n := mcToTriangles(buf[:], corners, values, iso)
				tris = append(tris, buf[:n]...)
			}
		}
	}
	return FromTriangles(tris), nil
}

package render

import (
	"bytes"
	"testing"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// testSphere is an exact distance field used to exercise the sampling and
// marching stages without pulling in the form3 catalog.
type testSphere struct {
	radius float64
}

func (s testSphere) Evaluate(p r3.Vec) float64 { return r3.Norm(p) - s.radius }

func (s testSphere) Bounds() r3.Box {
	m := s.radius + 1
	return r3.Box{Min: r3.Vec{X: -m, Y: -m, Z: -m}, Max: r3.Vec{X: m, Y: m, Z: m}}
}

func TestMarchingCubes(t *testing.T) {
	max := 0
	for i, tri := range mcTriangleTable {
		if len(tri)%3 != 0 {
			t.Errorf("config %d: %d edge indices is not a whole number of triangles", i, len(tri))
		}
		for _, e := range tri {
			if e < 0 || e > 11 {
				t.Errorf("config %d: edge index %d out of range", i, e)
			}
		}
		if len(tri) > max {
			max = len(tri)
		}
	}
	got := max / 3
	if got != marchingCubesMaxTriangles {
		t.Errorf("mismatch marching cubes max triangles. got %d. want %d", got, marchingCubesMaxTriangles)
	}
	if len(mcTriangleTable[0]) != 0 || len(mcTriangleTable[255]) != 0 {
		t.Error("empty and full cubes must produce no triangles")
	}
	if mcEdgeTable[1] != 0x109 {
		t.Errorf("cube with only corner 0 inside cuts edges 0, 3 and 8. got %#x", mcEdgeTable[1])
	}
	// A configuration and its complement cut the same edges.
	for i := 0; i < 128; i++ {
		if mcEdgeTable[i] != mcEdgeTable[255-i] {
			t.Errorf("configs %d and %d cut different edges: %#x vs %#x", i, 255-i, mcEdgeTable[i], mcEdgeTable[255-i])
		}
	}
}

func TestMarchingCubesSingleCorner(t *testing.T) {
	var corners [8]r3.Vec
	for i, off := range mcCornerOffsets {
		corners[i] = off.ToV3()
	}
	values := [8]float64{-1, 1, 1, 1, 1, 1, 1, 1}
	dst := make([]Triangle3, marchingCubesMaxTriangles)
	n := mcToTriangles(dst, corners, values, 0)
	if n != 1 {
		t.Fatalf("one interior corner yields one triangle. got %d", n)
	}
	want := map[r3.Vec]bool{
		{X: 0.5}: true,
		{Y: 0.5}: true,
		{Z: 0.5}: true,
	}
	for _, v := range dst[0].V {
		if !want[v] {
			t.Errorf("unexpected vertex %v", v)
		}
	}
	// The solid occupies the corner at the origin so the face must point
	// into the positive octant.
	nrm := dst[0].Normal()
	if nrm.X <= 0 || nrm.Y <= 0 || nrm.Z <= 0 {
		t.Errorf("normal %v points into the solid", nrm)
	}
	wantC := r3.Vec{X: 1. / 6, Y: 1. / 6, Z: 1. / 6}
	if c := dst[0].Centroid(); !d3.EqualWithin(c, wantC, 1e-15) {
		t.Errorf("centroid %v, want %v", c, wantC)
	}
	// Inverting the field flips the winding.
	for i := range values {
		values[i] = -values[i]
	}
	n = mcToTriangles(dst, corners, values, 0)
	if n != 1 {
		t.Fatalf("one exterior corner yields one triangle. got %d", n)
	}
	nrm = dst[0].Normal()
	if nrm.X >= 0 || nrm.Y >= 0 || nrm.Z >= 0 {
		t.Errorf("normal %v points into the solid", nrm)
	}
	// Samples exactly at the isovalue count as outside.
	values = [8]float64{}
	if n = mcToTriangles(dst, corners, values, 0); n != 0 {
		t.Errorf("corners at the isovalue yield no triangles. got %d", n)
	}
}

func TestSTLWriteReadback(t *testing.T) {
	const (
		cells = 40
		tol   = 1e-5
	)
	s0 := testSphere{radius: 1.3}
	size := r3.Norm(d3.Box(s0.Bounds()).Size())
	// calculate relative tolerance
	rtol := tol * size / cells
	rnd, err := NewFieldRenderer(s0, s0.Bounds(), fracmesh.V3i{cells, cells, cells}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	input, err := RenderAll(rnd)
	if err != nil {
		t.Fatal(err)
	}
	if len(input) == 0 {
		t.Fatal("no triangles rendered")
	}
	var b bytes.Buffer
	err = WriteSTL(&b, input)
	if err != nil {
		t.Fatal(err)
	}
	output, err := readBinarySTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(output) != len(input) {
		t.Fatal("length of triangles written/read not equal")
	}
	mismatches := 0
	for iface, expect := range input {
		got := output[iface]
		if got.Degenerate(1e-12) {
			t.Fatalf("triangle degenerate: %+v", got)
		}
		for i := range expect.V {
			if !d3.EqualWithin(got.V[i], expect.V[i], rtol) {
				mismatches++
				t.Errorf("%dth triangle equality out of tolerance. got vertex %0.5g, want %0.5g", iface, got.V[i], expect.V[i])
			}
		}
		if mismatches > 10 {
			t.Fatal("too many mismatches")
		}
	}
}

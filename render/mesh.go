package render

import (
	"math"

	"github.com/fracmesh/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle soup. Indices come in groups of three, each
// below len(Positions). Normals is either empty or aligned with Positions.
type Mesh struct {
	Positions []r3.Vec
	Indices   []uint32
	Normals   []r3.Vec
}

// FromTriangles builds an indexed mesh from a triangle slice. Every triangle
// contributes three fresh vertices; use Weld to merge shared ones.
func FromTriangles(tris []Triangle3) *Mesh {
	m := &Mesh{
		Positions: make([]r3.Vec, 0, 3*len(tris)),
		Indices:   make([]uint32, 0, 3*len(tris)),
	}
	for _, t := range tris {
		base := uint32(len(m.Positions))
		m.Positions = append(m.Positions, t.V[0], t.V[1], t.V[2])
		m.Indices = append(m.Indices, base, base+1, base+2)
	}
	return m
}

// NumTriangles returns the number of triangles in the mesh.
func (m *Mesh) NumTriangles() int { return len(m.Indices) / 3 }

// Triangles expands the mesh back into a triangle slice.
func (m *Mesh) Triangles() []Triangle3 {
	tris := make([]Triangle3, m.NumTriangles())
	for i := range tris {
		tris[i] = Triangle3{V: [3]r3.Vec{
			m.Positions[m.Indices[3*i]],
			m.Positions[m.Indices[3*i+1]],
			m.Positions[m.Indices[3*i+2]],
		}}
	}
	return tris
}

// Bounds returns the bounding box of all mesh vertices.
func (m *Mesh) Bounds() r3.Box {
	if len(m.Positions) == 0 {
		return r3.Box{}
	}
	bb := d3.Box{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		bb = bb.Include(p)
	}
	return r3.Box(bb)
}

// normalEpsilon is the accumulator length under which a vertex normal is
// considered degenerate.
const normalEpsilon = 1e-12

// normalUp is the fallback normal for degenerate vertices.
var normalUp = r3.Vec{Z: 1}

// CalculateNormals synthesizes per vertex normals by accumulating the unit
// normal of every incident face, unweighted, and normalizing the sums.
// A vertex whose accumulator stays below normalEpsilon in length receives
// the fixed up vector {0,0,1}.
func (m *Mesh) CalculateNormals() {
	m.Normals = make([]r3.Vec, len(m.Positions))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		e1 := r3.Sub(m.Positions[i1], m.Positions[i0])
		e2 := r3.Sub(m.Positions[i2], m.Positions[i0])
		fn := r3.Cross(e1, e2)
		l := r3.Norm(fn)
		if l < normalEpsilon {
			// degenerate face, contributes nothing
			continue
		}
		fn = r3.Scale(1/l, fn)
		m.Normals[i0] = r3.Add(m.Normals[i0], fn)
		m.Normals[i1] = r3.Add(m.Normals[i1], fn)
		m.Normals[i2] = r3.Add(m.Normals[i2], fn)
	}
	for i, n := range m.Normals {
		if r3.Norm(n) < normalEpsilon {
			m.Normals[i] = normalUp
			continue
		}
		m.Normals[i] = r3.Unit(n)
	}
}

// Weld merges vertices that quantize to the same cell of a grid with pitch
// tol, rewriting Indices in place. Triangle count and order are preserved.
// Normals are dropped; recompute them after welding. Vertices within tol of
// each other but on opposite sides of a grid boundary may stay distinct.
func (m *Mesh) Weld(tol float64) {
	if tol <= 0 || len(m.Positions) == 0 {
		return
	}
	lookup := make(map[[3]int64]uint32, len(m.Positions))
	remap := make([]uint32, len(m.Positions))
	kept := m.Positions[:0]
	for i, p := range m.Positions {
		k := [3]int64{
			int64(math.Round(p.X / tol)),
			int64(math.Round(p.Y / tol)),
			int64(math.Round(p.Z / tol)),
		}
		if j, ok := lookup[k]; ok {
			remap[i] = j
			continue
		}
		j := uint32(len(kept))
		kept = append(kept, p)
		lookup[k] = j
		remap[i] = j
	}
	for i, ix := range m.Indices {
		m.Indices[i] = remap[ix]
	}
	m.Positions = kept
	m.Normals = nil
}

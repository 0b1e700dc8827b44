// Package render samples signed distance functions over regular grids and
// extracts triangle meshes from them with marching cubes.
package render

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a 3D triangle.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the normal vector to the plane defined by the triangle.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Degenerate returns true if the triangle area falls below tol.
func (t Triangle3) Degenerate(tol float64) bool {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return 0.5*r3.Norm(r3.Cross(e1, e2)) <= tol
}

// Centroid returns the center of mass of the triangle.
func (t Triangle3) Centroid() r3.Vec {
	c := r3.Add(r3.Add(t.V[0], t.V[1]), t.V[2])
	return r3.Scale(1.0/3.0, c)
}

// Renderer is a streaming source of triangles.
type Renderer interface {
	// ReadTriangles reads up to len(t) triangles into t and returns the
	// number read. io.EOF signals the end of the model.
	ReadTriangles(t []Triangle3) (int, error)
}

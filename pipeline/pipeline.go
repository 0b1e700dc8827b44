// Package pipeline runs the full export path: variant parameters to signed
// distance field to triangle mesh to GLB container bytes.
//
// It sits on top of form3, render and glb rather than in the root package
// because the root package is the bottom of the import graph and the
// orchestrator needs everything above it.
package pipeline

import (
	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/form3"
	"github.com/fracmesh/fracmesh/glb"
	"github.com/fracmesh/fracmesh/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultResolution is the per axis sample count used when Options.Res is
// zero.
const DefaultResolution = 64

// Options configure one export.
type Options struct {
	// Res is the sample count per axis. The zero value means
	// DefaultResolution cubed.
	Res fracmesh.V3i
	// Box overrides the sample region. Nil samples the shape's own bounds.
	Box *r3.Box
	// Iso is the level of the extracted surface, almost always zero.
	Iso float64
	// WeldTol merges vertices closer than this distance before normals are
	// computed. Zero keeps the raw triangle soup.
	WeldTol float64
	// Streaming extracts the surface through a two slab window instead of
	// sampling the whole field up front, bounding peak memory.
	Streaming bool
	// Progress receives coarse stage reports and may request a stop.
	Progress render.ProgressFunc
	// GLB controls the container manifest. An empty Name is filled with
	// the variant tag.
	GLB glb.Options
}

// Export builds the shape described by p, extracts its isosurface and
// serializes it, returning the container bytes alongside the mesh they hold.
// Both results are nil on error; there is no partial output. A surface that
// misses the sample box entirely surfaces as glb.ErrBadMesh.
func Export(p form3.Params, o Options) ([]byte, *render.Mesh, error) {
	s, err := form3.New(p)
	if err != nil {
		return nil, nil, err
	}
	size := o.Res
	if size == (fracmesh.V3i{}) {
		size = fracmesh.V3i{DefaultResolution, DefaultResolution, DefaultResolution}
	}
	box := s.Bounds()
	if o.Box != nil {
		box = *o.Box
	}
	var m *render.Mesh
	if o.Streaming {
		rnd, err := render.NewFieldRenderer(s, box, size, o.Iso, o.Progress)
		if err != nil {
			return nil, nil, err
		}
		model, err := render.RenderAll(rnd)
		if err != nil {
			return nil, nil, err
		}
		m = render.FromTriangles(model)
	} else {
		f, err := render.SampleField(s, box, size, o.Progress)
		if err != nil {
			return nil, nil, err
		}
		m, err = render.MarchField(f, o.Iso)
		if err != nil {
			return nil, nil, err
		}
	}
	if o.WeldTol > 0 {
		m.Weld(o.WeldTol)
	}
	m.CalculateNormals()
	if o.GLB.Name == "" {
		o.GLB.Name = p.Variant().String()
	}
	blob, err := glb.Encode(m, o.GLB)
	if err != nil {
		return nil, nil, err
	}
	return blob, m, nil
}

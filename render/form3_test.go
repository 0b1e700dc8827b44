package render_test

import (
	"io"
	"os"
	"testing"

	"github.com/fogleman/fauxgl"
	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/form3"
	"github.com/fracmesh/fracmesh/render"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/cmpimg"
)

const (
	// imgDelta a normalized imgDelta parameter to describe how close the matching
	// should be performed (imgDelta=0: perfect match, imgDelta=1, loose match)
	imgDelta = 0.01
	quality  = 48
)

type viewConfig struct {
	// what position (point) to look at
	lookat r3.Vec
	// which way is up (direction)
	up r3.Vec
	// where the camera/eye located at (point)
	eyepos r3.Vec
	far    float64
	near   float64
}

func BenchmarkGyroid(b *testing.B) {
	for i := 0; i < b.N; i++ {
		variantToSTL(b, "gyroid", "gyroid_bench.stl", false)
	}
}

// TestVariantImages renders each variant twice, once from the raw triangle
// soup and once after welding shared vertices, and checks both rasterize to
// the same picture. Welding at a tight tolerance must not move the surface.
func TestVariantImages(t *testing.T) {
	var defaultView = viewConfig{
		up:     r3.Vec{Z: 1},
		eyepos: r3.Vec{X: 3, Y: 3, Z: 3},
		near:   1,
		far:    10,
	}
	for _, test := range []struct {
		name string
		view viewConfig
	}{
		{name: "gyroid", view: defaultView},
		{name: "metatron", view: defaultView},
		{name: "mandelbulb", view: defaultView},
		{name: "foldome", view: defaultView},
	} {
		rawSTL := "test_" + test.name + ".stl"
		weldSTL := "test_" + test.name + "_weld.stl"
		rawPNG := "test_" + test.name + ".png"
		weldPNG := "test_" + test.name + "_weld.png"
		variantToSTL(t, test.name, rawSTL, false)
		variantToSTL(t, test.name, weldSTL, true)
		stlToPNG(t, rawSTL, rawPNG, test.view)
		stlToPNG(t, weldSTL, weldPNG, test.view)
		if !equalImages(t, rawPNG, weldPNG) {
			t.Errorf("%s welded render does not match the raw render", test.name)
		}
		if !t.Failed() {
			// If test has not failed we remove the generated STL and PNG files.
			os.Remove(rawSTL)
			os.Remove(weldSTL)
			os.Remove(rawPNG)
			os.Remove(weldPNG)
		}
	}
}

func variantToSTL(t testing.TB, name, filename string, weld bool) {
	v, err := form3.ParseVariant(name)
	if err != nil {
		t.Fatal(err)
	}
	p, err := form3.DefaultParams(v)
	if err != nil {
		t.Fatal(err)
	}
	object, err := form3.New(p)
	if err != nil {
		t.Fatal(err)
	}
	size := fracmesh.V3i{quality, quality, quality}
	rnd, err := render.NewFieldRenderer(object, object.Bounds(), size, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !weld {
		if err := render.CreateSTL(filename, rnd); err != nil {
			t.Fatal(err)
		}
		return
	}
	model, err := render.RenderAll(rnd)
	if err != nil {
		t.Fatal(err)
	}
	m := render.FromTriangles(model)
	m.Weld(1e-9)
	fp, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	if err := render.WriteSTL(fp, m.Triangles()); err != nil {
		t.Fatal(err)
	}
}

func stlToPNG(t testing.TB, stlName, outputname string, view viewConfig) {
	mesh, err := fauxgl.LoadSTL(stlName)
	if err != nil {
		t.Fatal(err)
	}
	const (
		width, height = 1920, 1080 // output width and height in pixels
		scale         = 1          // optional supersampling
		fovy          = 30         // vertical field of view in degrees
	)

	var (
		far    = view.far
		near   = view.near
		eye    = fauxgl.V(view.eyepos.X, view.eyepos.Y, view.eyepos.Z) // camera position
		center = fauxgl.V(view.lookat.X, view.lookat.Y, view.lookat.Z) // view center position
		up     = fauxgl.V(view.up.X, view.up.Y, view.up.Z)             // up vector
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()                  // light direction
		color  = fauxgl.HexColor("#468966")                            // object color
	)

	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	// create a rendering context
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	// create transformation matrix and light direction
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, near, far)
	// use builtin phong shader
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	// render
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	image := context.Image()
	image = resize.Resize(width, height, image, resize.Bilinear)
	err = fauxgl.SavePNG(outputname, image)
	if err != nil {
		t.Fatal(err)
	}
}

func equalImages(t *testing.T, png1, png2 string) bool {
	fp1, err := os.Open(png1)
	if err != nil {
		t.Fatal(err)
	}
	fp2, err := os.Open(png2)
	if err != nil {
		t.Fatal(err)
	}
	b1, err := io.ReadAll(fp1)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := io.ReadAll(fp2)
	if err != nil {
		t.Fatal(err)
	}
	equal, err := cmpimg.EqualApprox("png", b1, b2, imgDelta)
	if err != nil {
		t.Fatal(err)
	}
	return equal
}

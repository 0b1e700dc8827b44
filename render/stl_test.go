package render_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/fracmesh/fracmesh"
	"github.com/fracmesh/fracmesh/form3"
	"github.com/fracmesh/fracmesh/render"
)

func TestSTLCreateWriteRead(t *testing.T) {
	const cells = 24
	p, err := form3.DefaultParams(form3.Metatron)
	if err != nil {
		t.Fatal(err)
	}
	object, err := form3.New(p)
	if err != nil {
		t.Fatal(err)
	}
	size := fracmesh.V3i{cells, cells, cells}
	rnd, err := render.NewFieldRenderer(object, object.Bounds(), size, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := render.CreateSTL("metatron.stl", rnd); err != nil {
		t.Fatal(err)
	}
	defer os.Remove("metatron.stl")
	fp, err := os.Open("metatron.stl")
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	bfile, err := io.ReadAll(fp)
	if err != nil {
		t.Fatal(err)
	}
	rnd, err = render.NewFieldRenderer(object, object.Bounds(), size, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	model, err := render.RenderAll(rnd)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	err = render.WriteSTL(&b, model)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != len(bfile) {
		t.Fatal("WriteSTL and CreateSTL output length mismatch")
	}
	if b.String() != string(bfile) {
		t.Fatal("WriteSTL and CreateSTL output mismatch")
	}
}

package glb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/fracmesh/fracmesh/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// quadMesh is a unit quad of two triangles sharing an edge, normals up.
func quadMesh() *render.Mesh {
	return &render.Mesh{
		Positions: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
		Normals: []r3.Vec{{Z: 1}, {Z: 1}, {Z: 1}, {Z: 1}},
	}
}

func TestEncodeLayout(t *testing.T) {
	blob, err := Encode(quadMesh(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint32(blob[0:]); got != glbMagic {
		t.Errorf("magic %#x, want %#x", got, glbMagic)
	}
	if got := binary.LittleEndian.Uint32(blob[4:]); got != glbVersion {
		t.Errorf("version %d, want %d", got, glbVersion)
	}
	if got := int(binary.LittleEndian.Uint32(blob[8:])); got != len(blob) {
		t.Errorf("total length %d, blob is %d bytes", got, len(blob))
	}
	jl := int(binary.LittleEndian.Uint32(blob[12:]))
	if jl%4 != 0 {
		t.Errorf("JSON chunk length %d not a multiple of 4", jl)
	}
	if got := binary.LittleEndian.Uint32(blob[16:]); got != chunkJSON {
		t.Errorf("JSON chunk type %#x", got)
	}
	// JSON padding is ASCII space.
	for i := 20 + jl - pad4(jl); i < 20+jl; i++ {
		if blob[i] != ' ' {
			t.Errorf("JSON padding byte %d is %#x, want space", i, blob[i])
		}
	}
	off := 20 + jl
	bl := int(binary.LittleEndian.Uint32(blob[off:]))
	if bl%4 != 0 {
		t.Errorf("binary chunk length %d not a multiple of 4", bl)
	}
	if got := binary.LittleEndian.Uint32(blob[off+4:]); got != chunkBIN {
		t.Errorf("binary chunk type %#x", got)
	}
	if want := headerSize + chunkHeaderSize + jl + chunkHeaderSize + bl; len(blob) != want {
		t.Errorf("blob is %d bytes, chunk sum says %d", len(blob), want)
	}
	// Buffer layout: 4 positions, 4 normals then 6 indices.
	binStart := off + 8
	if bl != 48+48+24 {
		t.Fatalf("binary chunk %d bytes, want %d", bl, 48+48+24)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(blob[binStart+12:])); got != 1 {
		t.Errorf("second vertex x = %g, want 1", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(blob[binStart+48+8:])); got != 1 {
		t.Errorf("first normal z = %g, want 1", got)
	}
	idxStart := binStart + 96
	want := []uint32{0, 1, 2, 0, 2, 3}
	for i, w := range want {
		if got := binary.LittleEndian.Uint32(blob[idxStart+4*i:]); got != w {
			t.Errorf("index %d = %d, want %d", i, got, w)
		}
	}
}

func TestManifestContent(t *testing.T) {
	blob, err := Encode(quadMesh(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	s := string(blob)
	for _, want := range []string{
		`"generator":"fracmesh"`,
		`"version":"2.0"`,
		`"POSITION":0`,
		`"NORMAL":1`,
		`"componentType":5126`,
		`"componentType":5125`,
		`"type":"VEC3"`,
		`"type":"SCALAR"`,
		`"min":[0,0,0]`,
		`"max":[1,1,0]`,
		`"baseColorFactor":[1,1,1,1]`,
		`"metallicFactor":0`,
		`"roughnessFactor":0.6`,
		`"target":34962`,
		`"target":34963`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("manifest does not contain %s", want)
		}
	}
	blob, err = Encode(quadMesh(), Options{
		Name:      "bloom",
		BaseColor: [4]float64{0.5, 0.25, 1, 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	s = string(blob)
	if !strings.Contains(s, `"name":"bloom"`) {
		t.Error("node name missing from manifest")
	}
	if !strings.Contains(s, `"baseColorFactor":[0.5,0.25,1,1]`) {
		t.Error("base color missing from manifest")
	}
}

func TestEncodeInfoRoundTrip(t *testing.T) {
	m := quadMesh()
	blob, err := Encode(m, Options{})
	if err != nil {
		t.Fatal(err)
	}
	info, err := ReadInfo(bytes.NewReader(blob))
	if err != nil {
		t.Fatal(err)
	}
	if info.TotalLength != len(blob) {
		t.Errorf("TotalLength %d, want %d", info.TotalLength, len(blob))
	}
	if info.Version != 2 {
		t.Errorf("Version %d, want 2", info.Version)
	}
	if info.Vertices != 4 || info.Triangles != 2 {
		t.Errorf("got %d vertices %d triangles, want 4 and 2", info.Vertices, info.Triangles)
	}
	if !info.HasNormals {
		t.Error("normals not reported")
	}
	if info.Generator != "fracmesh" {
		t.Errorf("generator %q", info.Generator)
	}

	// Identical input encodes to identical bytes.
	again, err := Encode(m, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(blob, again) {
		t.Error("repeated encoding differs")
	}

	// Skipping normals shrinks the buffer by one VEC3 per vertex.
	bare, err := Encode(m, Options{SkipNormals: true})
	if err != nil {
		t.Fatal(err)
	}
	bareInfo, err := ReadInfo(bytes.NewReader(bare))
	if err != nil {
		t.Fatal(err)
	}
	if bareInfo.HasNormals {
		t.Error("normals reported after SkipNormals")
	}
	if got := info.BINLength - bareInfo.BINLength; got != 12*len(m.Positions) {
		t.Errorf("normals occupy %d bytes, want %d", got, 12*len(m.Positions))
	}
}

func TestEncodeValidation(t *testing.T) {
	for _, test := range []struct {
		name string
		mod  func(m *render.Mesh) *render.Mesh
	}{
		{"nil mesh", func(m *render.Mesh) *render.Mesh { return nil }},
		{"no vertices", func(m *render.Mesh) *render.Mesh {
			m.Positions = nil
			return m
		}},
		{"no indices", func(m *render.Mesh) *render.Mesh {
			m.Indices = nil
			return m
		}},
		{"partial triangle", func(m *render.Mesh) *render.Mesh {
			m.Indices = m.Indices[:5]
			return m
		}},
		{"index out of range", func(m *render.Mesh) *render.Mesh {
			m.Indices[4] = 17
			return m
		}},
		{"normal count mismatch", func(m *render.Mesh) *render.Mesh {
			m.Normals = m.Normals[:2]
			return m
		}},
		{"NaN position", func(m *render.Mesh) *render.Mesh {
			m.Positions[1].X = math.NaN()
			return m
		}},
		{"overflows float32", func(m *render.Mesh) *render.Mesh {
			m.Positions[2].Y = 1e39
			return m
		}},
		{"infinite normal", func(m *render.Mesh) *render.Mesh {
			m.Normals[0].Z = math.Inf(1)
			return m
		}},
	} {
		m := test.mod(quadMesh())
		blob, err := Encode(m, Options{})
		if !errors.Is(err, ErrBadMesh) {
			t.Errorf("%s: got %v, want ErrBadMesh", test.name, err)
		}
		if blob != nil {
			t.Errorf("%s: partial output emitted", test.name)
		}
		var b bytes.Buffer
		if err := Write(&b, m, Options{}); !errors.Is(err, ErrBadMesh) {
			t.Errorf("%s: Write got %v, want ErrBadMesh", test.name, err)
		}
		if b.Len() != 0 {
			t.Errorf("%s: Write emitted %d bytes on failure", test.name, b.Len())
		}
	}
	// A mesh whose normals never reach the writer may carry junk there.
	m := quadMesh()
	m.Normals[0].Z = math.Inf(1)
	if _, err := Encode(m, Options{SkipNormals: true}); err != nil {
		t.Errorf("skipped normals must not be validated: %v", err)
	}
}

func TestReadInfoErrors(t *testing.T) {
	good, err := Encode(quadMesh(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	bad := bytes.Clone(good)
	binary.LittleEndian.PutUint32(bad[0:], 0xBADC0DE)
	if _, err := ReadInfo(bytes.NewReader(bad)); !errors.Is(err, ErrBadContainer) {
		t.Errorf("bad magic: got %v", err)
	}

	bad = bytes.Clone(good)
	binary.LittleEndian.PutUint32(bad[4:], 1)
	if _, err := ReadInfo(bytes.NewReader(bad)); !errors.Is(err, ErrBadContainer) {
		t.Errorf("bad version: got %v", err)
	}

	bad = bytes.Clone(good)
	binary.LittleEndian.PutUint32(bad[12:], 3) // misaligned chunk
	if _, err := ReadInfo(bytes.NewReader(bad)); !errors.Is(err, ErrBadContainer) {
		t.Errorf("misaligned chunk: got %v", err)
	}

	if _, err := ReadInfo(bytes.NewReader(good[:30])); !errors.Is(err, ErrBadContainer) {
		t.Errorf("truncated: got %v", err)
	}

	bad = bytes.Clone(good)
	binary.LittleEndian.PutUint32(bad[8:], uint32(len(bad)+4))
	if _, err := ReadInfo(bytes.NewReader(bad)); !errors.Is(err, ErrBadContainer) {
		t.Errorf("wrong total: got %v", err)
	}
}

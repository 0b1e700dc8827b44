// Package glb serializes triangle meshes into the GLB binary container: a
// 12 byte header, a JSON manifest chunk and a binary data chunk holding
// vertex positions, optional normals and triangle indices.
package glb

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/fracmesh/fracmesh/render"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	glbMagic   = 0x46546C67 // "glTF"
	glbVersion = 2
	chunkJSON  = 0x4E4F534A // "JSON"
	chunkBIN   = 0x004E4942 // "BIN\x00"

	headerSize      = 12
	chunkHeaderSize = 8
)

// glTF accessor component types and buffer view targets.
const (
	componentFloat  = 5126
	componentUint32 = 5125

	targetArrayBuffer        = 34962
	targetElementArrayBuffer = 34963
)

// ErrBadMesh is returned when a mesh fails validation before serialization.
// No bytes are emitted for an invalid mesh.
var ErrBadMesh = errors.New("inconsistent mesh")

// Options control the manifest of an encoded container.
type Options struct {
	// Name labels the scene node. Empty omits the label.
	Name string
	// BaseColor is the RGBA base color factor of the material. The zero
	// value means opaque white.
	BaseColor [4]float64
	// SkipNormals leaves the NORMAL attribute out even when the mesh
	// carries normals.
	SkipNormals bool
}

// Manifest records. Field order is emission order, which keeps repeated
// encodings of the same mesh byte for byte identical.
type manifest struct {
	Asset       asset        `json:"asset"`
	Scene       int          `json:"scene"`
	Scenes      []scene      `json:"scenes"`
	Nodes       []node       `json:"nodes"`
	Meshes      []mesh       `json:"meshes"`
	Materials   []material   `json:"materials"`
	Accessors   []accessor   `json:"accessors"`
	BufferViews []bufferView `json:"bufferViews"`
	Buffers     []buffer     `json:"buffers"`
}

type asset struct {
	Generator string `json:"generator"`
	Version   string `json:"version"`
}

type scene struct {
	Nodes []int `json:"nodes"`
}

type node struct {
	Mesh int    `json:"mesh"`
	Name string `json:"name,omitempty"`
}

type mesh struct {
	Primitives []primitive `json:"primitives"`
}

type primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    int            `json:"indices"`
	Material   int            `json:"material"`
}

type material struct {
	PBRMetallicRoughness pbr `json:"pbrMetallicRoughness"`
}

// pbr must always spell out metallicFactor: the glTF default is 1 and a
// metallic fractal looks like tinfoil.
type pbr struct {
	BaseColorFactor [4]float64 `json:"baseColorFactor"`
	MetallicFactor  float64    `json:"metallicFactor"`
	RoughnessFactor float64    `json:"roughnessFactor"`
}

type accessor struct {
	BufferView    int       `json:"bufferView"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Min           []float32 `json:"min,omitempty"`
	Max           []float32 `json:"max,omitempty"`
}

type bufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	Target     int `json:"target"`
}

type buffer struct {
	ByteLength int `json:"byteLength"`
}

// Encode serializes m into a complete GLB container. The binary buffer is
// laid out positions then normals then indices, both chunks padded to four
// byte boundaries. Encoding the same mesh twice yields identical bytes.
func Encode(m *render.Mesh, o Options) ([]byte, error) {
	if err := validate(m, o); err != nil {
		return nil, err
	}
	withNormals := len(m.Normals) > 0 && !o.SkipNormals

	posLen := 12 * len(m.Positions)
	nrmLen := 0
	if withNormals {
		nrmLen = 12 * len(m.Normals)
	}
	idxLen := 4 * len(m.Indices)
	bin := make([]byte, posLen+nrmLen+idxLen)
	off := 0
	var pmin, pmax [3]float32
	for i, p := range m.Positions {
		f := to3F32(p)
		if i == 0 {
			pmin, pmax = f, f
		}
		for k := 0; k < 3; k++ {
			pmin[k] = min(pmin[k], f[k])
			pmax[k] = max(pmax[k], f[k])
		}
		put3F32(bin[off:], f)
		off += 12
	}
	if withNormals {
		for _, n := range m.Normals {
			put3F32(bin[off:], to3F32(n))
			off += 12
		}
	}
	for _, idx := range m.Indices {
		binary.LittleEndian.PutUint32(bin[off:], idx)
		off += 4
	}

	man := buildManifest(m, o, withNormals, posLen, nrmLen, idxLen, pmin, pmax)
	jsonBytes, err := json.Marshal(man)
	if err != nil {
		return nil, err
	}

	jl := len(jsonBytes) + pad4(len(jsonBytes))
	bl := len(bin) + pad4(len(bin))
	total := headerSize + chunkHeaderSize + jl + chunkHeaderSize + bl

	blob := make([]byte, total)
	binary.LittleEndian.PutUint32(blob[0:], glbMagic)
	binary.LittleEndian.PutUint32(blob[4:], glbVersion)
	binary.LittleEndian.PutUint32(blob[8:], uint32(total))
	binary.LittleEndian.PutUint32(blob[12:], uint32(jl))
	binary.LittleEndian.PutUint32(blob[16:], chunkJSON)
	n := copy(blob[20:], jsonBytes)
	for i := 20 + n; i < 20+jl; i++ {
		blob[i] = ' '
	}
	off = 20 + jl
	binary.LittleEndian.PutUint32(blob[off:], uint32(bl))
	binary.LittleEndian.PutUint32(blob[off+4:], chunkBIN)
	copy(blob[off+8:], bin)
	// binary padding stays zero
	return blob, nil
}

// Write encodes m and writes the container to w. Nothing is written when
// encoding fails.
func Write(w io.Writer, m *render.Mesh, o Options) error {
	blob, err := Encode(m, o)
	if err != nil {
		return err
	}
	_, err = w.Write(blob)
	return err
}

func validate(m *render.Mesh, o Options) error {
	if m == nil || len(m.Positions) == 0 {
		return fmt.Errorf("%w: no vertices", ErrBadMesh)
	}
	if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a whole number of triangles", ErrBadMesh, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("%w: index %d at %d exceeds %d vertices", ErrBadMesh, idx, i, len(m.Positions))
		}
	}
	if len(m.Normals) > 0 && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normals for %d vertices", ErrBadMesh, len(m.Normals), len(m.Positions))
	}
	for i, p := range m.Positions {
		if badVec(p) {
			return fmt.Errorf("%w: position %d not finite as float32: %v", ErrBadMesh, i, p)
		}
	}
	if len(m.Normals) > 0 && !o.SkipNormals {
		for i, nrm := range m.Normals {
			if badVec(nrm) {
				return fmt.Errorf("%w: normal %d not finite as float32: %v", ErrBadMesh, i, nrm)
			}
		}
	}
	return nil
}

func buildManifest(m *render.Mesh, o Options, withNormals bool, posLen, nrmLen, idxLen int, pmin, pmax [3]float32) manifest {
	color := o.BaseColor
	if color == ([4]float64{}) {
		color = [4]float64{1, 1, 1, 1}
	}
	attrs := map[string]int{"POSITION": 0}
	accessors := []accessor{{
		BufferView:    0,
		ComponentType: componentFloat,
		Count:         len(m.Positions),
		Type:          "VEC3",
		Min:           pmin[:],
		Max:           pmax[:],
	}}
	views := []bufferView{{
		Buffer:     0,
		ByteOffset: 0,
		ByteLength: posLen,
		Target:     targetArrayBuffer,
	}}
	if withNormals {
		attrs["NORMAL"] = 1
		accessors = append(accessors, accessor{
			BufferView:    1,
			ComponentType: componentFloat,
			Count:         len(m.Normals),
			Type:          "VEC3",
		})
		views = append(views, bufferView{
			Buffer:     0,
			ByteOffset: posLen,
			ByteLength: nrmLen,
			Target:     targetArrayBuffer,
		})
	}
	idxAccessor := len(accessors)
	accessors = append(accessors, accessor{
		BufferView:    len(views),
		ComponentType: componentUint32,
		Count:         len(m.Indices),
		Type:          "SCALAR",
	})
	views = append(views, bufferView{
		Buffer:     0,
		ByteOffset: posLen + nrmLen,
		ByteLength: idxLen,
		Target:     targetElementArrayBuffer,
	})
	return manifest{
		Asset:  asset{Generator: "fracmesh", Version: "2.0"},
		Scene:  0,
		Scenes: []scene{{Nodes: []int{0}}},
		Nodes:  []node{{Mesh: 0, Name: o.Name}},
		Meshes: []mesh{{Primitives: []primitive{{
			Attributes: attrs,
			Indices:    idxAccessor,
			Material:   0,
		}}}},
		Materials: []material{{PBRMetallicRoughness: pbr{
			BaseColorFactor: color,
			MetallicFactor:  0,
			RoughnessFactor: 0.6,
		}}},
		Accessors:   accessors,
		BufferViews: views,
		Buffers:     []buffer{{ByteLength: posLen + nrmLen + idxLen}},
	}
}

// pad4 returns the bytes needed to round n up to a multiple of 4.
func pad4(n int) int { return (4 - n%4) % 4 }

func to3F32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func badVec(v r3.Vec) bool {
	return bad32(float32(v.X)) || bad32(float32(v.Y)) || bad32(float32(v.Z))
}

func bad32(f float32) bool { return math32.IsNaN(f) || math32.IsInf(f, 0) }

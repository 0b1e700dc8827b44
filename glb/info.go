package glb

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrBadContainer is returned when a container fails structural checks.
var ErrBadContainer = errors.New("malformed container")

// Info summarizes the header and manifest of a container.
type Info struct {
	TotalLength int // bytes including all headers and padding
	Version     int
	JSONLength  int // JSON chunk bytes including padding
	BINLength   int // binary chunk bytes including padding
	Vertices    int
	Triangles   int
	HasNormals  bool
	Generator   string
}

// ReadInfo parses the header, chunk framing and manifest of a GLB container
// and checks the framing invariants: magic, version, 4 byte aligned chunks
// and the total length formula.
func ReadInfo(r io.Reader) (Info, error) {
	var info Info
	var head [headerSize]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return info, fmt.Errorf("%w: header: %v", ErrBadContainer, err)
	}
	if magic := binary.LittleEndian.Uint32(head[0:]); magic != glbMagic {
		return info, fmt.Errorf("%w: bad magic %#x", ErrBadContainer, magic)
	}
	info.Version = int(binary.LittleEndian.Uint32(head[4:]))
	if info.Version != glbVersion {
		return info, fmt.Errorf("%w: unsupported version %d", ErrBadContainer, info.Version)
	}
	info.TotalLength = int(binary.LittleEndian.Uint32(head[8:]))

	jl, err := readChunkHeader(r, chunkJSON)
	if err != nil {
		return info, err
	}
	info.JSONLength = jl
	jsonBytes := make([]byte, jl)
	if _, err := io.ReadFull(r, jsonBytes); err != nil {
		return info, fmt.Errorf("%w: manifest: %v", ErrBadContainer, err)
	}
	var man manifest
	if err := json.Unmarshal(jsonBytes, &man); err != nil {
		return info, fmt.Errorf("%w: manifest: %v", ErrBadContainer, err)
	}

	bl, err := readChunkHeader(r, chunkBIN)
	if err != nil {
		return info, err
	}
	info.BINLength = bl
	if _, err := io.CopyN(io.Discard, r, int64(bl)); err != nil {
		return info, fmt.Errorf("%w: binary chunk: %v", ErrBadContainer, err)
	}
	if got := headerSize + chunkHeaderSize + jl + chunkHeaderSize + bl; got != info.TotalLength {
		return info, fmt.Errorf("%w: header says %d bytes, chunks sum to %d", ErrBadContainer, info.TotalLength, got)
	}

	info.Generator = man.Asset.Generator
	if len(man.Meshes) == 0 || len(man.Meshes[0].Primitives) == 0 {
		return info, fmt.Errorf("%w: no mesh primitive", ErrBadContainer)
	}
	prim := man.Meshes[0].Primitives[0]
	pos, ok := prim.Attributes["POSITION"]
	if !ok || pos < 0 || pos >= len(man.Accessors) {
		return info, fmt.Errorf("%w: no POSITION accessor", ErrBadContainer)
	}
	info.Vertices = man.Accessors[pos].Count
	if prim.Indices < 0 || prim.Indices >= len(man.Accessors) {
		return info, fmt.Errorf("%w: no index accessor", ErrBadContainer)
	}
	info.Triangles = man.Accessors[prim.Indices].Count / 3
	_, info.HasNormals = prim.Attributes["NORMAL"]
	return info, nil
}

func readChunkHeader(r io.Reader, wantType uint32) (int, error) {
	var hdr [chunkHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, fmt.Errorf("%w: chunk header: %v", ErrBadContainer, err)
	}
	n := int(binary.LittleEndian.Uint32(hdr[0:]))
	if typ := binary.LittleEndian.Uint32(hdr[4:]); typ != wantType {
		return 0, fmt.Errorf("%w: chunk type %#x, want %#x", ErrBadContainer, typ, wantType)
	}
	if n%4 != 0 {
		return 0, fmt.Errorf("%w: chunk length %d not 4 byte aligned", ErrBadContainer, n)
	}
	return n, nil
}

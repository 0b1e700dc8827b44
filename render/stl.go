package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

// Binary STL layout: 80 byte header, uint32 triangle count, then 50 bytes
// per triangle.
const (
	stlHeaderSize     = 84
	stlTriangleSize   = 50
	trianglesInBuffer = 1 << 10
)

// CreateSTL streams the triangles of r into a binary STL file at path.
func CreateSTL(path string, r Renderer) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	// leave room for the header, it is rewritten once the count is known
	if _, err := file.Seek(stlHeaderSize, io.SeekStart); err != nil {
		return err
	}
	rd := &stlReader{r: r}
	n, err := io.CopyBuffer(file, rd, make([]byte, stlTriangleSize*trianglesInBuffer))
	if err != nil {
		return err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	header := stlHeader{Count: uint32(n / stlTriangleSize)}
	return binary.Write(file, binary.LittleEndian, &header)
}

// WriteSTL writes model to w in binary STL format.
func WriteSTL(w io.Writer, model []Triangle3) error {
	if len(model) == 0 {
		return errors.New("empty triangle slice")
	}
	header := stlHeader{Count: uint32(len(model))}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	var d stlTriangle
	var b [stlTriangleSize]byte
	for i, t := range model {
		d.fromTriangle3(t)
		if bad3F32(d.Vertex1) || bad3F32(d.Vertex2) || bad3F32(d.Vertex3) {
			return fmt.Errorf("non finite vertex in STL triangle %d", i)
		}
		d.put(b[:])
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // header text, unused
	Count uint32    // number of triangles
}

// stlReader adapts a Renderer into an io.Reader producing STL triangle
// records, 50 bytes at a time.
type stlReader struct {
	r   Renderer
	buf [trianglesInBuffer]Triangle3
}

func (rd *stlReader) Read(b []byte) (int, error) {
	ntMax := min(len(b)/stlTriangleSize, len(rd.buf))
	if ntMax == 0 {
		return 0, errors.New("at least 50 bytes needed to stream an STL triangle")
	}
	nt, err := rd.r.ReadTriangles(rd.buf[:ntMax])
	var d stlTriangle
	for i, t := range rd.buf[:nt] {
		d.fromTriangle3(t)
		d.put(b[i*stlTriangleSize:])
	}
	return nt * stlTriangleSize, err
}

// readBinarySTL decodes the triangles of a binary STL stream.
func readBinarySTL(r io.Reader) ([]Triangle3, error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("STL header: %w", err)
	}
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf [stlTriangleSize]byte
		d   stlTriangle
	)
	output := make([]Triangle3, 0, header.Count)
	for i := 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i, header.Count, err)
		}
		d.get(buf[:])
		if bad3F32(d.Normal) || bad3F32(d.Vertex1) || bad3F32(d.Vertex2) || bad3F32(d.Vertex3) {
			return nil, fmt.Errorf("non finite data in STL triangle %d", i)
		}
		output = append(output, d.toTriangle3())
	}
	return output, nil
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // attribute byte count
}

func (d *stlTriangle) fromTriangle3(t Triangle3) {
	n := r3.Cross(r3.Sub(t.V[1], t.V[0]), r3.Sub(t.V[2], t.V[0]))
	if l := r3.Norm(n); l > 0 {
		n = r3.Scale(1/l, n)
	} else {
		// degenerate triangle, readers derive their own normal
		n = r3.Vec{}
	}
	d.Normal = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
	d.Vertex1 = [3]float32{float32(t.V[0].X), float32(t.V[0].Y), float32(t.V[0].Z)}
	d.Vertex2 = [3]float32{float32(t.V[1].X), float32(t.V[1].Y), float32(t.V[1].Z)}
	d.Vertex3 = [3]float32{float32(t.V[2].X), float32(t.V[2].Y), float32(t.V[2].Z)}
}

func (d stlTriangle) toTriangle3() Triangle3 {
	return Triangle3{V: [3]r3.Vec{
		r3From3F32(d.Vertex1),
		r3From3F32(d.Vertex2),
		r3From3F32(d.Vertex3),
	}}
}

func (d stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, d.Normal)
	put3F32(b[12:], d.Vertex1)
	put3F32(b[24:], d.Vertex2)
	put3F32(b[36:], d.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (d *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &d.Normal)
	get3F32(b[12:], &d.Vertex1)
	get3F32(b[24:], &d.Vertex2)
	get3F32(b[36:], &d.Vertex3)
	// no attributes supported
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

// Package output writes the bake artifacts: the vertex stream, the
// texture/SDF stream and the palette report.
package output

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gekko3d/voxbake/voxelbake/bake/mesh"
)

const (
	// VertexSize is the byte size of one vertex record.
	VertexSize = 16
	// VerticesPerQuad is two triangles.
	VerticesPerQuad = 6
)

// Vertex is one decoded vertex record. Every vertex of a quad carries the
// quad origin in Pos and its corner relative to the origin in Offset.
type Vertex struct {
	Pos      [3]int16
	Offset   [3]int16
	Color    uint8
	Normal   uint8
	Material uint8
}

// DecodeVertex reads one record; b must hold at least VertexSize bytes.
func DecodeVertex(b []byte) Vertex {
	var v Vertex
	for a := 0; a < 3; a++ {
		v.Pos[a] = int16(binary.LittleEndian.Uint16(b[2*a:]))
		v.Offset[a] = int16(binary.LittleEndian.Uint16(b[6+2*a:]))
	}
	v.Color, v.Normal, v.Material = b[12], b[13], b[14]
	return v
}

type VertexWriter struct {
	w   *bufio.Writer
	buf [VertexSize]byte
	n   int64
}

func NewVertexWriter(w io.Writer) *VertexWriter {
	return &VertexWriter{w: bufio.NewWriterSize(w, 1<<16)}
}

func (vw *VertexWriter) vertex(q mesh.Quad, corner [3]int) error {
	b := vw.buf[:]
	for a := 0; a < 3; a++ {
		binary.LittleEndian.PutUint16(b[2*a:], uint16(int16(q.Origin[a])))
		binary.LittleEndian.PutUint16(b[6+2*a:], uint16(int16(corner[a])))
	}
	b[12], b[13], b[14], b[15] = q.Color, q.Normal, q.Material, 0
	if _, err := vw.w.Write(b); err != nil {
		return err
	}
	vw.n++
	return nil
}

// triangle swaps the last two corners on odd normals so both triangles of
// every quad wind outward.
func (vw *VertexWriter) triangle(q mesh.Quad, a, b, c [3]int) error {
	if q.Normal%2 == 1 {
		b, c = c, b
	}
	for _, p := range [3][3]int{a, b, c} {
		if err := vw.vertex(q, p); err != nil {
			return err
		}
	}
	return nil
}

func (vw *VertexWriter) WriteQuad(q mesh.Quad) error {
	var zero, uv [3]int
	for a := 0; a < 3; a++ {
		uv[a] = q.DU[a] + q.DV[a]
	}
	if err := vw.triangle(q, zero, q.DU, q.DV); err != nil {
		return err
	}
	return vw.triangle(q, q.DV, q.DU, uv)
}

// Vertices is the number of vertex records written so far.
func (vw *VertexWriter) Vertices() int64 { return vw.n }

func (vw *VertexWriter) Flush() error { return vw.w.Flush() }

// WriteMesh writes every quad of every group in order and flushes.
func WriteMesh(w io.Writer, groups ...[]mesh.Quad) (vertices int64, err error) {
	vw := NewVertexWriter(w)
	for _, quads := range groups {
		for _, q := range quads {
			if err := vw.WriteQuad(q); err != nil {
				return vw.Vertices(), fmt.Errorf("write vertex %d: %w", vw.Vertices(), err)
			}
		}
	}
	if err := vw.Flush(); err != nil {
		return vw.Vertices(), fmt.Errorf("flush vertices: %w", err)
	}
	return vw.Vertices(), nil
}

package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gekko3d/voxbake/voxelbake/bake/grid"
	"github.com/gekko3d/voxbake/voxelbake/bake/sdf"
)

// TexelSize is the byte size of one voxel record.
const TexelSize = 4

// Texel is one voxel record: down radius, up radius, palette index and the
// auxiliary byte.
type Texel struct {
	Down, Up, Color, Aux uint8
}

// AuxFunc supplies the fourth byte of the texel at (x, y, z).
type AuxFunc func(x, y, z int) uint8

// WriteTexture writes one texel per voxel in grid storage order (z, then y,
// then x), so record i is voxel index i. Read as an image the stream is X
// texels wide with row Y*z+y. aux may be nil.
func WriteTexture(w io.Writer, g *grid.Grid, f *sdf.Field, aux AuxFunc) (int64, error) {
	d := g.Dims()
	if f.Dims() != d {
		return 0, fmt.Errorf("texture: field %v does not match grid %v", f.Dims(), d)
	}
	bw := bufio.NewWriterSize(w, 1<<16)
	row := make([]byte, d.X()*TexelSize)
	var n int64
	for z := 0; z < d.Z(); z++ {
		for y := 0; y < d.Y(); y++ {
			i := d.Index(0, y, z)
			for x := 0; x < d.X(); x++ {
				b := row[x*TexelSize:]
				b[0] = f.AtIndex(i+x, sdf.Down)
				b[1] = f.AtIndex(i+x, sdf.Up)
				b[2] = g.ColorAt(i + x)
				b[3] = 0
				if aux != nil {
					b[3] = aux(x, y, z)
				}
			}
			m, err := bw.Write(row)
			n += int64(m)
			if err != nil {
				return n, fmt.Errorf("write texture row (y=%d, z=%d): %w", y, z, err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("flush texture: %w", err)
	}
	return n, nil
}

// ReadTexel decodes the record of (x, y, z) from a whole texture stream.
func ReadTexel(data []byte, d grid.Dims, x, y, z int) (Texel, error) {
	if len(data) != d.Len()*TexelSize {
		return Texel{}, fmt.Errorf("texture holds %d bytes, want %d for %v", len(data), d.Len()*TexelSize, d)
	}
	if !d.Contains(x, y, z) {
		return Texel{}, fmt.Errorf("(%d,%d,%d) outside %v", x, y, z, d)
	}
	b := data[d.Index(x, y, z)*TexelSize:]
	return Texel{Down: b[0], Up: b[1], Color: b[2], Aux: b[3]}, nil
}

// Package grid holds the dense voxel arrays a bake works on: occupancy, raw
// RGB color and the palette index each occupied voxel is remapped to.
package grid

import (
	"errors"
	"fmt"
)

// Dims is the grid extent along x, y and z. z is the vertical axis.
type Dims [3]int

func (d Dims) X() int { return d[0] }
func (d Dims) Y() int { return d[1] }
func (d Dims) Z() int { return d[2] }

// Len is the number of cells in the grid.
func (d Dims) Len() int { return d[0] * d[1] * d[2] }

func (d Dims) Contains(x, y, z int) bool {
	return x >= 0 && x < d[0] && y >= 0 && y < d[1] && z >= 0 && z < d[2]
}

// Index is the storage offset of (x, y, z): z-major, then y, then x.
func (d Dims) Index(x, y, z int) int {
	return x + d[0]*(y+d[1]*z)
}

// Coord is the inverse of Index.
func (d Dims) Coord(i int) (x, y, z int) {
	x = i % d[0]
	y = i / d[0] % d[1]
	z = i / d[0] / d[1]
	return
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%dx%d", d[0], d[1], d[2])
}

// Record is one sparse input voxel in source coordinates.
type Record struct {
	X, Y, Z int
	Color   uint32
}

// BoundsPolicy decides what Insert does with records outside the grid.
type BoundsPolicy int

const (
	// BoundsFatal fails the whole insert on the first out-of-range record.
	BoundsFatal BoundsPolicy = iota
	// BoundsReject drops out-of-range records and counts them.
	BoundsReject
)

func ParseBoundsPolicy(s string) (BoundsPolicy, error) {
	switch s {
	case "", "fatal":
		return BoundsFatal, nil
	case "reject":
		return BoundsReject, nil
	}
	return 0, fmt.Errorf("unknown bounds policy %q", s)
}

var ErrOutOfBounds = errors.New("voxel outside grid")

type Grid struct {
	dims     Dims
	occupied []bool
	raw      []uint32
	index    []uint8
	count    int
}

func New(d Dims) *Grid {
	n := d.Len()
	return &Grid{
		dims:     d,
		occupied: make([]bool, n),
		raw:      make([]uint32, n),
		index:    make([]uint8, n),
	}
}

func (g *Grid) Dims() Dims { return g.dims }

// Count is the number of occupied voxels.
func (g *Grid) Count() int { return g.count }

// Set marks (x, y, z) occupied with a 24-bit color. A later Set on the same
// cell overwrites the color. It reports false if the cell is outside the grid.
func (g *Grid) Set(x, y, z int, color uint32) bool {
	if !g.dims.Contains(x, y, z) {
		return false
	}
	i := g.dims.Index(x, y, z)
	if !g.occupied[i] {
		g.occupied[i] = true
		g.count++
	}
	g.raw[i] = color & 0xFFFFFF
	return true
}

// Insert translates every record by offset and stores it.
func (g *Grid) Insert(recs []Record, offset [3]int, policy BoundsPolicy) (dropped int, err error) {
	for _, r := range recs {
		x, y, z := r.X+offset[0], r.Y+offset[1], r.Z+offset[2]
		if g.Set(x, y, z, r.Color) {
			continue
		}
		if policy == BoundsFatal {
			return dropped, fmt.Errorf("%w: source (%d,%d,%d) -> grid (%d,%d,%d) in %v",
				ErrOutOfBounds, r.X, r.Y, r.Z, x, y, z, g.dims)
		}
		dropped++
	}
	return dropped, nil
}

// Occupied reports whether (x, y, z) is solid. Cells outside the grid are empty.
func (g *Grid) Occupied(x, y, z int) bool {
	if !g.dims.Contains(x, y, z) {
		return false
	}
	return g.occupied[g.dims.Index(x, y, z)]
}

func (g *Grid) OccupiedAt(i int) bool { return g.occupied[i] }

// RawColor is the input color of (x, y, z); ok is false for empty cells.
func (g *Grid) RawColor(x, y, z int) (color uint32, ok bool) {
	if !g.Occupied(x, y, z) {
		return 0, false
	}
	return g.raw[g.dims.Index(x, y, z)], true
}

// Color is the palette index of (x, y, z), 0 for empty cells and for cells
// outside the grid. Only meaningful after Remap.
func (g *Grid) Color(x, y, z int) uint8 {
	if !g.dims.Contains(x, y, z) {
		return 0
	}
	return g.index[g.dims.Index(x, y, z)]
}

func (g *Grid) ColorAt(i int) uint8 { return g.index[i] }

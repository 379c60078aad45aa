// Package sdf derives the distance data the ray marcher skips empty space
// with: a summed-volume table over occupancy, O(1) box counts on top of it
// and the per-voxel largest empty box in two vertical octants.
package sdf

import "github.com/gekko3d/voxbake/voxelbake/bake/grid"

// Table is the inclusive 3-D prefix sum of occupancy: At(x,y,z) counts the
// occupied voxels q with q <= (x,y,z) component-wise.
type Table struct {
	dims grid.Dims
	sum  []int32
}

// NewTable builds the table in one sweep over storage order, so every
// lower neighbour is final before it is read.
func NewTable(g *grid.Grid) *Table {
	d := g.Dims()
	t := &Table{dims: d, sum: make([]int32, d.Len())}
	i := 0
	for z := 0; z < d.Z(); z++ {
		for y := 0; y < d.Y(); y++ {
			for x := 0; x < d.X(); x++ {
				var v int32
				if g.OccupiedAt(i) {
					v = 1
				}
				t.sum[i] = v +
					t.At(x-1, y, z) + t.At(x, y-1, z) + t.At(x, y, z-1) -
					t.At(x-1, y-1, z) - t.At(x-1, y, z-1) - t.At(x, y-1, z-1) +
					t.At(x-1, y-1, z-1)
				i++
			}
		}
	}
	return t
}

func (t *Table) Dims() grid.Dims { return t.dims }

// At reads the table with Neumann clamping on the high side. Any coordinate
// below zero is the empty prefix and reads 0.
func (t *Table) At(x, y, z int) int32 {
	if x < 0 || y < 0 || z < 0 {
		return 0
	}
	x = min(x, t.dims[0]-1)
	y = min(y, t.dims[1]-1)
	z = min(z, t.dims[2]-1)
	return t.sum[t.dims.Index(x, y, z)]
}

// Box is an axis-aligned box with inclusive corners. It may extend past the
// grid on any side.
type Box struct {
	Min, Max [3]int
}

func (b Box) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Count is the number of occupied voxels inside b clipped to the grid.
func (t *Table) Count(b Box) int {
	if b.Empty() {
		return 0
	}
	x0, y0, z0 := b.Min[0]-1, b.Min[1]-1, b.Min[2]-1
	x1, y1, z1 := b.Max[0], b.Max[1], b.Max[2]
	return int(t.At(x1, y1, z1) -
		t.At(x0, y1, z1) - t.At(x1, y0, z1) - t.At(x1, y1, z0) +
		t.At(x0, y0, z1) + t.At(x0, y1, z0) + t.At(x1, y0, z0) -
		t.At(x0, y0, z0))
}

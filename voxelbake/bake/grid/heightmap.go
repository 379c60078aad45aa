package grid

// HeightMap is the view of the grid from above: for each (x, y) column the
// palette index and height of its highest occupied voxel.
type HeightMap struct {
	W, H  int
	Color []uint8
	// Top is -1 for columns with no occupied voxel.
	Top []int
}

func (h *HeightMap) At(x, y int) (color uint8, top int) {
	i := x + h.W*y
	return h.Color[i], h.Top[i]
}

// TopView builds the height map of a remapped grid.
func TopView(g *Grid) *HeightMap {
	d := g.dims
	h := &HeightMap{
		W:     d[0],
		H:     d[1],
		Color: make([]uint8, d[0]*d[1]),
		Top:   make([]int, d[0]*d[1]),
	}
	for i := range h.Top {
		h.Top[i] = -1
	}
	for z := 0; z < d[2]; z++ {
		for y := 0; y < d[1]; y++ {
			for x := 0; x < d[0]; x++ {
				i := d.Index(x, y, z)
				if !g.occupied[i] {
					continue
				}
				c := x + d[0]*y
				h.Color[c] = g.index[i]
				h.Top[c] = z
			}
		}
	}
	return h
}

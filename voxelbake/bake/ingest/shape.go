package ingest

import (
	"fmt"

	"github.com/gekko3d/voxbake/voxelbake/bake/grid"
)

// Shape builds a solid test shape of one color with its bounding box at the
// origin. size is the radius of spheres and cones and the edge of cubes and
// pyramid bases.
func Shape(kind string, size int, color uint32) ([]grid.Record, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shape size %d", size)
	}
	var recs []grid.Record
	add := func(x, y, z int) {
		recs = append(recs, grid.Record{X: x, Y: y, Z: z, Color: color})
	}

	switch kind {
	case "sphere":
		r := size
		for x := -r; x <= r; x++ {
			for y := -r; y <= r; y++ {
				for z := -r; z <= r; z++ {
					if x*x+y*y+z*z <= r*r {
						add(x+r, y+r, z+r)
					}
				}
			}
		}
	case "cube":
		for x := 0; x < size; x++ {
			for y := 0; y < size; y++ {
				for z := 0; z < size; z++ {
					add(x, y, z)
				}
			}
		}
	case "cone":
		r, h := size, 2*size
		for z := 0; z < h; z++ {
			cr := float64(r) * (1 - float64(z)/float64(h))
			for x := -r; x <= r; x++ {
				for y := -r; y <= r; y++ {
					if float64(x*x+y*y) <= cr*cr {
						add(x+r, y+r, z)
					}
				}
			}
		}
	case "pyramid":
		half := float64(size) / 2
		for z := 0; z < size; z++ {
			limit := int(half * (1 - float64(z)/float64(size)))
			for x := -limit; x <= limit; x++ {
				for y := -limit; y <= limit; y++ {
					add(x+int(half), y+int(half), z)
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown shape %q", kind)
	}
	return recs, nil
}

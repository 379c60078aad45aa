// Package mesh turns the palette-indexed grid into axis-aligned quads by
// greedy merging of same-color faces.
package mesh

import (
	"github.com/gekko3d/voxbake/voxelbake/bake/grid"
	"github.com/go-gl/mathgl/mgl32"
)

// Material ids carried by every vertex.
const (
	MaterialSolid  = 0
	MaterialSkybox = 1
	MaterialGlass  = 2
)

// Quad is a rectangle with corner Origin spanned by edges DU and DV.
// Normal is the face id 2*axis+side: side 0 faces +axis, side 1 faces -axis.
type Quad struct {
	Origin   [3]int
	DU, DV   [3]int
	Color    uint8
	Normal   uint8
	Material uint8
}

// Axis is the axis the quad's normal lies on.
func (q Quad) Axis() int { return int(q.Normal) / 2 }

// Corners returns the four corners in the order origin, +DU, +DV, +DU+DV.
func (q Quad) Corners() [4][3]int {
	var c [4][3]int
	for a := 0; a < 3; a++ {
		c[0][a] = q.Origin[a]
		c[1][a] = q.Origin[a] + q.DU[a]
		c[2][a] = q.Origin[a] + q.DV[a]
		c[3][a] = q.Origin[a] + q.DU[a] + q.DV[a]
	}
	return c
}

// Skybox is the inward-facing shell around a grid of extent d, open at the
// floor, with its ceiling at the given height.
func Skybox(d grid.Dims, height int) []Quad {
	X, Y := d.X(), d.Y()
	sky := func(o, du, dv [3]int) Quad {
		return Quad{Origin: o, DU: du, DV: dv, Color: 0, Normal: 1, Material: MaterialSkybox}
	}
	return []Quad{
		sky([3]int{0, 0, height}, [3]int{X, 0, 0}, [3]int{0, Y, 0}),
		sky([3]int{0, 0, 0}, [3]int{X, 0, 0}, [3]int{0, 0, height}),
		sky([3]int{X, 0, 0}, [3]int{0, Y, 0}, [3]int{0, 0, height}),
		sky([3]int{X, Y, 0}, [3]int{-X, 0, 0}, [3]int{0, 0, height}),
		sky([3]int{0, Y, 0}, [3]int{0, -Y, 0}, [3]int{0, 0, height}),
	}
}

// Bounds is the axis-aligned box around every quad corner.
func Bounds(quads []Quad) (minB, maxB mgl32.Vec3) {
	if len(quads) == 0 {
		return
	}
	first := true
	for _, q := range quads {
		for _, c := range q.Corners() {
			p := mgl32.Vec3{float32(c[0]), float32(c[1]), float32(c[2])}
			if first {
				minB, maxB = p, p
				first = false
				continue
			}
			for a := 0; a < 3; a++ {
				minB[a] = min(minB[a], p[a])
				maxB[a] = max(maxB[a], p[a])
			}
		}
	}
	return minB, maxB
}

// Build2D meshes the top view: one flat quad per merged run of same-color
// columns, placed at z=0.
func Build2D(hm *grid.HeightMap, pal *grid.Palette) []Quad {
	var quads []Quad
	mask := make([]int8, hm.W*hm.H)
	for c := 1; c <= pal.Len(); c++ {
		color := uint8(c)
		found := false
		for i, v := range hm.Color {
			if hm.Top[i] >= 0 && v == color {
				mask[i] = 1
				found = true
			}
		}
		if !found {
			continue
		}
		MergeMask(mask, hm.W, hm.H, func(r Rect) {
			quads = append(quads, Quad{
				Origin:   [3]int{r.U, r.V, 0},
				DU:       [3]int{r.W, 0, 0},
				DV:       [3]int{0, r.H, 0},
				Color:    color,
				Material: pal.Material(color),
			})
		})
	}
	return quads
}

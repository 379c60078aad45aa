package sdf

import (
	"math/rand/v2"
	"testing"

	"github.com/gekko3d/voxbake/voxelbake/bake/grid"
)

func randomGrid(seed uint64, d grid.Dims, density float64) *grid.Grid {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	g := grid.New(d)
	for i := 0; i < d.Len(); i++ {
		if rng.Float64() < density {
			x, y, z := d.Coord(i)
			g.Set(x, y, z, 0xFFFFFF)
		}
	}
	return g
}

func bruteCount(g *grid.Grid, b Box) int {
	n := 0
	for z := b.Min[2]; z <= b.Max[2]; z++ {
		for y := b.Min[1]; y <= b.Max[1]; y++ {
			for x := b.Min[0]; x <= b.Max[0]; x++ {
				if g.Occupied(x, y, z) {
					n++
				}
			}
		}
	}
	return n
}

func TestTableMonotone(t *testing.T) {
	g := randomGrid(1, grid.Dims{7, 6, 5}, 0.3)
	tab := NewTable(g)
	d := g.Dims()
	for z := 0; z < d.Z(); z++ {
		for y := 0; y < d.Y(); y++ {
			for x := 0; x < d.X(); x++ {
				v := tab.At(x, y, z)
				if v < tab.At(x-1, y, z) || v < tab.At(x, y-1, z) || v < tab.At(x, y, z-1) {
					t.Fatalf("table decreases at (%d,%d,%d)", x, y, z)
				}
			}
		}
	}
	if got := tab.At(100, 100, 100); int(got) != g.Count() {
		t.Errorf("clamped corner = %d, want total %d", got, g.Count())
	}
}

func TestCountMatchesBruteForce(t *testing.T) {
	g := randomGrid(2, grid.Dims{9, 7, 6}, 0.25)
	tab := NewTable(g)
	rng := rand.New(rand.NewPCG(3, 4))

	for n := 0; n < 2000; n++ {
		var b Box
		for a := 0; a < 3; a++ {
			lo := rng.IntN(g.Dims()[a]+6) - 3
			hi := lo + rng.IntN(g.Dims()[a]+3)
			b.Min[a], b.Max[a] = lo, hi
		}
		if got, want := tab.Count(b), bruteCount(g, b); got != want {
			t.Fatalf("Count(%v) = %d, brute force %d", b, got, want)
		}
	}
}

func TestCountEdges(t *testing.T) {
	g := grid.New(grid.Dims{4, 4, 4})
	g.Set(0, 0, 0, 1)
	tab := NewTable(g)

	cases := []struct {
		name string
		box  Box
		want int
	}{
		{"origin cell", Box{Min: [3]int{0, 0, 0}, Max: [3]int{0, 0, 0}}, 1},
		{"straddles low side", Box{Min: [3]int{-3, -3, -3}, Max: [3]int{0, 0, 0}}, 1},
		{"fully below", Box{Min: [3]int{-3, -3, -3}, Max: [3]int{-1, 5, 5}}, 0},
		{"fully above", Box{Min: [3]int{4, 0, 0}, Max: [3]int{9, 9, 9}}, 0},
		{"inverted", Box{Min: [3]int{2, 0, 0}, Max: [3]int{1, 3, 3}}, 0},
		{"neighbour only", Box{Min: [3]int{1, 0, 0}, Max: [3]int{3, 3, 3}}, 0},
	}
	for _, c := range cases {
		if got := tab.Count(c.box); got != c.want {
			t.Errorf("%s: Count = %d, want %d", c.name, got, c.want)
		}
	}
}

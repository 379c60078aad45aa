package sdf

import (
	"context"
	"testing"

	"github.com/gekko3d/voxbake/voxelbake/bake/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compute(t *testing.T, g *grid.Grid, s Strategy) *Field {
	t.Helper()
	f, err := Compute(context.Background(), g, NewTable(g), Options{Strategy: s, Workers: 3})
	require.NoError(t, err)
	return f
}

func TestSingleVoxelScenario(t *testing.T) {
	g := grid.New(grid.Dims{8, 8, 4})
	g.Set(0, 0, 0, 0xFF0000)

	for _, s := range []Strategy{GradientScan, LinearScan} {
		f := compute(t, g, s)
		assert.Equal(t, uint8(0), f.At(0, 0, 0, Down))
		assert.Equal(t, uint8(0), f.At(0, 0, 0, Up))
		assert.Equal(t, uint8(2), f.At(2, 0, 0, Down))
		assert.Equal(t, uint8(2), f.At(0, 2, 0, Down))
		assert.Equal(t, uint8(2), f.At(2, 2, 0, Down))
		assert.Equal(t, uint8(1), f.At(1, 0, 0, Down))
		// nothing is below the floor layer to find
		assert.Equal(t, uint8(1), f.At(2, 0, 0, Up))
	}
}

func TestEmptyGridHitsCap(t *testing.T) {
	g := grid.New(grid.Dims{5, 5, 6})
	f := compute(t, g, GradientScan)
	for z := 0; z < 6; z++ {
		if got := f.At(2, 2, z, Down); int(got) != 6 {
			t.Errorf("down at z=%d: %d, want cap 6", z, got)
		}
		if got := f.At(2, 2, z, Up); int(got) != max(1, z) {
			t.Errorf("up at z=%d: %d, want cap %d", z, got, max(1, z))
		}
	}
}

func TestSoundAndMaximal(t *testing.T) {
	g := randomGrid(7, grid.Dims{12, 10, 8}, 0.04)
	f := compute(t, g, GradientScan)
	d := g.Dims()

	for i := 0; i < d.Len(); i++ {
		x, y, z := d.Coord(i)
		for o := Down; o < Octants; o++ {
			r := int(f.At(x, y, z, o))
			if g.OccupiedAt(i) {
				if r != 0 {
					t.Fatalf("occupied (%d,%d,%d) octant %d = %d", x, y, z, o, r)
				}
				continue
			}
			if r < 1 {
				t.Fatalf("empty (%d,%d,%d) octant %d = %d", x, y, z, o, r)
			}
			if n := bruteCount(g, OctantBox(x, y, z, o, r)); n != 0 {
				t.Fatalf("(%d,%d,%d) octant %d radius %d box holds %d voxels", x, y, z, o, r, n)
			}
			if r < Cap(d, z, o) && bruteCount(g, OctantBox(x, y, z, o, r+1)) == 0 {
				t.Fatalf("(%d,%d,%d) octant %d radius %d is not maximal", x, y, z, o, r)
			}
		}
	}
}

func TestGradientMatchesLinear(t *testing.T) {
	for seed, density := range []float64{0.01, 0.05, 0.2, 0.5} {
		g := randomGrid(uint64(seed+10), grid.Dims{16, 9, 7}, density)
		fast := compute(t, g, GradientScan)
		slow := compute(t, g, LinearScan)
		require.Equal(t, slow.r, fast.r, "density %v", density)
	}
}

func TestHorizontalLipschitz(t *testing.T) {
	g := randomGrid(21, grid.Dims{14, 14, 6}, 0.06)
	f := compute(t, g, GradientScan)
	d := g.Dims()

	for i := 0; i < d.Len(); i++ {
		x, y, z := d.Coord(i)
		if g.OccupiedAt(i) {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if !d.Contains(nx, ny, z) || g.Occupied(nx, ny, z) {
					continue
				}
				for o := Down; o < Octants; o++ {
					a, b := int(f.At(x, y, z, o)), int(f.At(nx, ny, z, o))
					if a-b > 1 || b-a > 1 {
						t.Fatalf("(%d,%d,%d)=%d vs (%d,%d,%d)=%d octant %d", x, y, z, a, nx, ny, z, b, o)
					}
				}
			}
		}
	}
}

func TestComputeRejectsForeignTable(t *testing.T) {
	g := grid.New(grid.Dims{2, 2, 2})
	other := NewTable(grid.New(grid.Dims{3, 2, 2}))
	_, err := Compute(context.Background(), g, other, Options{})
	assert.Error(t, err)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("linear")
	require.NoError(t, err)
	assert.Equal(t, LinearScan, s)
	_, err = ParseStrategy("bisect")
	assert.Error(t, err)
}

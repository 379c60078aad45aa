package sdf

import (
	"context"
	"fmt"

	"github.com/gekko3d/voxbake/voxelbake/bake/grid"
	"golang.org/x/sync/errgroup"
)

// Octant selects the vertical half-space a distance box grows into.
type Octant int

const (
	// Down boxes span z..z+r-1.
	Down Octant = 0
	// Up boxes span z-r+1..z.
	Up Octant = 1

	Octants = 2
)

// MaxRadius is the largest radius a texel byte can hold.
const MaxRadius = 255

type Strategy int

const (
	// GradientScan seeds each search from the finished (x-1, y, z) neighbour.
	GradientScan Strategy = iota
	// LinearScan searches the full radius range for every voxel.
	LinearScan
)

func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "gradient":
		return GradientScan, nil
	case "linear":
		return LinearScan, nil
	}
	return 0, fmt.Errorf("unknown sdf search %q", s)
}

type Options struct {
	Strategy Strategy
	Workers  int
}

// OctantBox is the radius-r box of voxel (x, y, z) in octant o. Radius 1 is
// the voxel itself; each step grows the box by one cell horizontally on both
// sides and by one cell vertically into the octant.
func OctantBox(x, y, z int, o Octant, r int) Box {
	e := r - 1
	b := Box{
		Min: [3]int{x - e, y - e, z},
		Max: [3]int{x + e, y + e, z},
	}
	if o == Down {
		b.Max[2] = z + e
	} else {
		b.Min[2] = z - e
	}
	return b
}

// Cap is the largest radius reported for a voxel at height z.
func Cap(d grid.Dims, z int, o Octant) int {
	c := d.Z()
	if o == Up {
		c = max(1, z)
	}
	return min(c, MaxRadius)
}

// Field holds two radii per voxel. Occupied voxels are 0 in both octants;
// every empty voxel is at least 1.
type Field struct {
	dims grid.Dims
	r    []uint8
}

func (f *Field) Dims() grid.Dims { return f.dims }

func (f *Field) At(x, y, z int, o Octant) uint8 {
	return f.r[f.dims.Index(x, y, z)*Octants+int(o)]
}

// AtIndex reads by storage offset.
func (f *Field) AtIndex(i int, o Octant) uint8 {
	return f.r[i*Octants+int(o)]
}

type engine struct {
	g    *grid.Grid
	t    *Table
	f    *Field
	dims grid.Dims
}

// search grows r from lo while the next box stays empty. The box of radius
// lo must already be known empty.
func (e *engine) search(x, y, z int, o Octant, lo, hi int) int {
	r := lo
	for r < hi && e.t.Count(OctantBox(x, y, z, o, r+1)) == 0 {
		r++
	}
	return r
}

func (e *engine) linear(x, y, z int) {
	i := e.dims.Index(x, y, z)
	if e.g.OccupiedAt(i) {
		return
	}
	for o := Down; o < Octants; o++ {
		e.f.r[i*Octants+int(o)] = uint8(e.search(x, y, z, o, 1, Cap(e.dims, z, o)))
	}
}

// row computes one x-row front to back. Octant boxes of (x-1, y, z) and
// (x, y, z) are nested one radius apart and share a cap, so the neighbour's
// radius s bounds this voxel's radius to [s-1, s+1].
func (e *engine) row(y, z int) {
	prev := -1
	for x := 0; x < e.dims.X(); x++ {
		i := e.dims.Index(x, y, z)
		if e.g.OccupiedAt(i) {
			prev = -1
			continue
		}
		for o := Down; o < Octants; o++ {
			hi := Cap(e.dims, z, o)
			lo := 1
			if prev >= 0 {
				s := int(e.f.r[prev*Octants+int(o)])
				lo = max(lo, s-1)
				hi = min(hi, s+1)
			}
			e.f.r[i*Octants+int(o)] = uint8(e.search(x, y, z, o, lo, hi))
		}
		prev = i
	}
}

// Compute fills the distance field of g. t must be the table of g.
func Compute(ctx context.Context, g *grid.Grid, t *Table, opts Options) (*Field, error) {
	d := g.Dims()
	if t.Dims() != d {
		return nil, fmt.Errorf("sdf: table %v does not match grid %v", t.Dims(), d)
	}
	e := &engine{
		g:    g,
		t:    t,
		dims: d,
		f:    &Field{dims: d, r: make([]uint8, d.Len()*Octants)},
	}

	eg, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		eg.SetLimit(opts.Workers)
	}
	for z := 0; z < d.Z(); z++ {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for y := 0; y < d.Y(); y++ {
				if opts.Strategy == LinearScan {
					for x := 0; x < d.X(); x++ {
						e.linear(x, y, z)
					}
					continue
				}
				e.row(y, z)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return e.f, nil
}

package mesh

import (
	"context"
	"fmt"
	"runtime"

	"github.com/gekko3d/voxbake/voxelbake/bake/grid"
	"golang.org/x/sync/errgroup"
)

// Mode is how face directions are attached to masks.
type Mode int

const (
	// SixFace runs one mask pass per face direction.
	SixFace Mode = iota
	// TwoSided runs one signed mask pass per axis; the sign picks the side.
	TwoSided
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "sixface", "six-face":
		return SixFace, nil
	case "twosided", "two-sided":
		return TwoSided, nil
	}
	return 0, fmt.Errorf("unknown mesh mode %q", s)
}

type Options struct {
	// Chunk is the edge length of the cubic regions meshed independently.
	Chunk   int
	Mode    Mode
	Workers int
}

type chunk struct {
	origin, size [3]int
}

type task struct {
	chunk chunk
	axis  int
	color uint8
}

// Build meshes every color of g. Work is split into (chunk, axis, color)
// tasks that run concurrently; their quads are concatenated in that order,
// so the output does not depend on scheduling.
func Build(ctx context.Context, g *grid.Grid, pal *grid.Palette, opts Options) ([]Quad, error) {
	if opts.Chunk <= 0 {
		return nil, fmt.Errorf("mesh: chunk size %d", opts.Chunk)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var tasks []task
	for _, c := range chunks(g.Dims(), opts.Chunk) {
		present := colorsNear(g, c)
		for axis := 0; axis < 3; axis++ {
			for color := 1; color <= pal.Len(); color++ {
				if present[color] {
					tasks = append(tasks, task{chunk: c, axis: axis, color: uint8(color)})
				}
			}
		}
	}

	out := make([][]Quad, len(tasks))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for n, t := range tasks {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m := mesher{g: g, pal: pal, t: t}
			if opts.Mode == TwoSided {
				m.twoSided()
			} else {
				m.sixFace()
			}
			out[n] = m.quads
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, q := range out {
		total += len(q)
	}
	quads := make([]Quad, 0, total)
	for _, q := range out {
		quads = append(quads, q...)
	}
	return quads, nil
}

// chunks tiles the grid x-major; edge chunks are clipped to the grid.
func chunks(d grid.Dims, size int) []chunk {
	var cs []chunk
	for x := 0; x < d.X(); x += size {
		for y := 0; y < d.Y(); y += size {
			for z := 0; z < d.Z(); z += size {
				cs = append(cs, chunk{
					origin: [3]int{x, y, z},
					size:   [3]int{min(size, d.X()-x), min(size, d.Y()-y), min(size, d.Z()-z)},
				})
			}
		}
	}
	return cs
}

// colorsNear lists the colors inside c or one cell past its high faces,
// which are all the colors that can own a face meshed by c.
func colorsNear(g *grid.Grid, c chunk) [256]bool {
	var present [256]bool
	o, s := c.origin, c.size
	for z := o[2]; z <= o[2]+s[2]; z++ {
		for y := o[1]; y <= o[1]+s[1]; y++ {
			for x := o[0]; x <= o[0]+s[0]; x++ {
				present[g.Color(x, y, z)] = true
			}
		}
	}
	return present
}

type mesher struct {
	g     *grid.Grid
	pal   *grid.Palette
	t     task
	quads []Quad
}

// layers is the range of slices p whose interface p|p+1 this chunk owns.
// Only the first chunk along the axis owns the boundary interface -1|0.
func (m *mesher) layers() (first, end int) {
	d := m.t.axis
	if m.t.chunk.origin[d] == 0 {
		first = -1
	}
	return first, m.t.chunk.size[d]
}

func (m *mesher) plane() (u, v, w, h int) {
	d := m.t.axis
	u, v = (d+1)%3, (d+2)%3
	return u, v, m.t.chunk.size[u], m.t.chunk.size[v]
}

// fill writes face(block, ahead) for every cell of slice p.
func (m *mesher) fill(mask []int8, p int, face func(block, ahead bool) int8) {
	d := m.t.axis
	u, v, w, h := m.plane()
	o := m.t.chunk.origin
	var pos [3]int
	pos[d] = o[d] + p
	for j := 0; j < h; j++ {
		pos[v] = o[v] + j
		for i := 0; i < w; i++ {
			pos[u] = o[u] + i
			block := m.g.Color(pos[0], pos[1], pos[2]) == m.t.color
			var ahead bool
			switch d {
			case 0:
				ahead = m.g.Color(pos[0]+1, pos[1], pos[2]) == m.t.color
			case 1:
				ahead = m.g.Color(pos[0], pos[1]+1, pos[2]) == m.t.color
			default:
				ahead = m.g.Color(pos[0], pos[1], pos[2]+1) == m.t.color
			}
			mask[j*w+i] = face(block, ahead)
		}
	}
}

func (m *mesher) emit(p int, r Rect, side int) {
	d := m.t.axis
	u, v, _, _ := m.plane()
	q := Quad{
		Origin:   m.t.chunk.origin,
		Color:    m.t.color,
		Normal:   uint8(2*d + side),
		Material: m.pal.Material(m.t.color),
	}
	q.Origin[d] += p + 1
	q.Origin[u] += r.U
	q.Origin[v] += r.V
	q.DU[u] = r.W
	q.DV[v] = r.H
	m.quads = append(m.quads, q)
}

// sixFace meshes the +axis faces (color behind, other ahead) of every slice,
// then the -axis faces.
func (m *mesher) sixFace() {
	_, _, w, h := m.plane()
	first, end := m.layers()
	mask := make([]int8, w*h)
	for side := 0; side < 2; side++ {
		face := func(block, ahead bool) int8 {
			if (side == 0 && block && !ahead) || (side == 1 && !block && ahead) {
				return 1
			}
			return 0
		}
		for p := first; p < end; p++ {
			m.fill(mask, p, face)
			MergeMask(mask, w, h, func(r Rect) { m.emit(p, r, side) })
		}
	}
}

// twoSided builds one mask per slice where the color changes across the
// interface; +1 marks a +axis face and -1 a -axis face.
func (m *mesher) twoSided() {
	_, _, w, h := m.plane()
	first, end := m.layers()
	mask := make([]int8, w*h)
	face := func(block, ahead bool) int8 {
		switch {
		case block && !ahead:
			return 1
		case !block && ahead:
			return -1
		}
		return 0
	}
	for p := first; p < end; p++ {
		m.fill(mask, p, face)
		MergeMask(mask, w, h, func(r Rect) {
			side := 0
			if r.Value < 0 {
				side = 1
			}
			m.emit(p, r, side)
		})
	}
}

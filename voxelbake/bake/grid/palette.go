package grid

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// MaxColors is the number of real colors an index byte can address once
// index 0 is reserved for empty.
const MaxColors = 255

const glassBit = 1 << 24

var (
	ErrPaletteOverflow = errors.New("palette overflow")
	ErrUnknownColor    = errors.New("color missing from palette")
)

// Order is how palette indices are assigned to distinct colors.
type Order int

const (
	// OrderSorted assigns indices by ascending color, glass last.
	OrderSorted Order = iota
	// OrderFirstSeen assigns indices in storage order of first occurrence.
	OrderFirstSeen
)

func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "sorted":
		return OrderSorted, nil
	case "first-seen", "firstseen":
		return OrderFirstSeen, nil
	}
	return 0, fmt.Errorf("unknown palette order %q", s)
}

type PaletteOptions struct {
	Order Order
	// Glass marks one input color as the special glass material.
	Glass    uint32
	HasGlass bool
}

type Entry struct {
	RGB   uint32
	Glass bool
}

func (e Entry) key() uint32 {
	if e.Glass {
		return e.RGB | glassBit
	}
	return e.RGB
}

// Palette maps distinct input colors to indices 1..Len(). Index 0 is empty.
type Palette struct {
	entries []Entry
	lookup  map[uint32]uint8
	opts    PaletteOptions
}

func (p *Palette) entryFor(rgb uint32) Entry {
	return Entry{RGB: rgb, Glass: p.opts.HasGlass && rgb == p.opts.Glass&0xFFFFFF}
}

// BuildPalette collects the colors present in g and assigns them indices.
func BuildPalette(g *Grid, opts PaletteOptions) (*Palette, error) {
	p := &Palette{
		entries: []Entry{{}},
		lookup:  make(map[uint32]uint8),
		opts:    opts,
	}

	seen := make(map[uint32]struct{})
	var found []Entry
	for i, occ := range g.occupied {
		if !occ {
			continue
		}
		e := p.entryFor(g.raw[i])
		if _, ok := seen[e.key()]; ok {
			continue
		}
		seen[e.key()] = struct{}{}
		found = append(found, e)
	}
	if len(found) > MaxColors {
		return nil, fmt.Errorf("%w: %d distinct colors, at most %d fit an index byte",
			ErrPaletteOverflow, len(found), MaxColors)
	}
	if opts.Order == OrderSorted {
		sort.Slice(found, func(a, b int) bool { return found[a].key() < found[b].key() })
	}
	for _, e := range found {
		p.lookup[e.RGB] = uint8(len(p.entries))
		p.entries = append(p.entries, e)
	}
	return p, nil
}

// Len is the number of real colors, not counting the reserved index 0.
func (p *Palette) Len() int { return len(p.entries) - 1 }

// Entry returns the color at index i. Entry(0) is the empty slot.
func (p *Palette) Entry(i uint8) Entry { return p.entries[i] }

// Lookup is an exact match; there is no nearest-color fallback.
func (p *Palette) Lookup(rgb uint32) (uint8, bool) {
	i, ok := p.lookup[rgb&0xFFFFFF]
	return i, ok
}

// Material is the material id written with geometry of color i: 2 for
// glass, 0 otherwise.
func (p *Palette) Material(i uint8) uint8 {
	if int(i) < len(p.entries) && p.entries[i].Glass {
		return 2
	}
	return 0
}

// Remap writes the palette index of every cell. Cells are independent, so
// z-slices are remapped concurrently. Remapping twice yields the same grid.
func (g *Grid) Remap(ctx context.Context, p *Palette, workers int) error {
	slice := g.dims[0] * g.dims[1]
	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for z := 0; z < g.dims[2]; z++ {
		lo := z * slice
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < lo+slice; i++ {
				if !g.occupied[i] {
					g.index[i] = 0
					continue
				}
				idx, ok := p.Lookup(g.raw[i])
				if !ok {
					x, y, z := g.dims.Coord(i)
					return fmt.Errorf("%w: %06x at (%d,%d,%d)", ErrUnknownColor, g.raw[i], x, y, z)
				}
				g.index[i] = idx
			}
			return nil
		})
	}
	return eg.Wait()
}

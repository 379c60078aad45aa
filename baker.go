// Package voxbake compiles a sparse voxel map into the artifacts the voxel
// ray marcher loads: a greedy-meshed vertex stream, a texture holding the
// two-octant distance field and palette index of every voxel, and the
// palette itself as shader source.
package voxbake

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gekko3d/voxbake/voxelbake/bake/grid"
	"github.com/gekko3d/voxbake/voxelbake/bake/ingest"
	"github.com/gekko3d/voxbake/voxelbake/bake/mesh"
	"github.com/gekko3d/voxbake/voxelbake/bake/noise"
	"github.com/gekko3d/voxbake/voxelbake/bake/output"
	"github.com/gekko3d/voxbake/voxelbake/bake/sdf"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Baker owns one run: its configuration and logger. Every stage gets its
// inputs from the Result of the stage before; nothing is shared globally.
type Baker struct {
	cfg   Config
	log   Logger
	runID string
}

// Result is everything derived from one input. Grid and Palette are final
// after Bake returns; the rest are read-only products.
type Result struct {
	Grid    *grid.Grid
	Palette *grid.Palette
	Table   *sdf.Table
	Field   *sdf.Field
	// Quads is the voxel mesh followed by the skybox.
	Quads   []mesh.Quad
	Quads2D []mesh.Quad
	Dropped int
}

// Sinks receive the serialized artifacts. Nil sinks are skipped.
type Sinks struct {
	Vertex   io.Writer
	Texture  io.Writer
	Vertex2D io.Writer
	Palette  io.Writer
}

func NewBaker(cfg Config, logger Logger) (*Baker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Baker{cfg: cfg, log: logger, runID: uuid.NewString()}, nil
}

func (b *Baker) Config() Config { return b.cfg }

// stage runs fn with start/finish logging and prefixes its error with name.
func (b *Baker) stage(name string, fn func() error) error {
	b.log.Infof("%s...", name)
	start := time.Now()
	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	b.log.Infof("%s done in %v", name, time.Since(start).Round(time.Millisecond))
	return nil
}

// Load reads the configured input. Records are in source coordinates.
func (b *Baker) Load() ([]grid.Record, error) {
	in := b.cfg.Input
	if in.Format == FormatProcedural {
		return ingest.Shape(in.Shape, in.Size, in.Color)
	}

	f, err := os.Open(in.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch in.Format {
	case FormatImage:
		return ingest.ReadImage(f, b.cfg.dims())
	case FormatVox:
		return ingest.ReadVox(f)
	}
	return ingest.ReadText(f)
}

// Bake runs ingestion, palette remap, then the distance field and the mesh
// in parallel. Both branches only read the remapped grid.
func (b *Baker) Bake(ctx context.Context, recs []grid.Record) (*Result, error) {
	cfg := b.cfg
	res := &Result{Grid: grid.New(cfg.dims())}

	err := b.stage("Building voxel grid", func() error {
		policy, _ := grid.ParseBoundsPolicy(cfg.Grid.Bounds)
		dropped, err := res.Grid.Insert(recs, cfg.inputOffset(), policy)
		if err != nil {
			return err
		}
		res.Dropped = dropped
		if dropped > 0 {
			b.log.Warnf("dropped %d of %d records outside %v", dropped, len(recs), cfg.dims())
		}
		b.log.Debugf("%d records, %d occupied voxels", len(recs), res.Grid.Count())
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = b.stage("Generating palette", func() error {
		pal, err := grid.BuildPalette(res.Grid, cfg.paletteOptions())
		if err != nil {
			return err
		}
		res.Palette = pal
		b.log.Debugf("%d colors", pal.Len())
		return res.Grid.Remap(ctx, pal, cfg.Workers)
	})
	if err != nil {
		return nil, err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return b.stage("Generating signed distance fields", func() error {
			res.Table = sdf.NewTable(res.Grid)
			field, err := sdf.Compute(ctx, res.Grid, res.Table, cfg.sdfOptions())
			res.Field = field
			return err
		})
	})
	eg.Go(func() error {
		return b.stage("Meshing", func() error {
			quads, err := mesh.Build(ctx, res.Grid, res.Palette, cfg.meshOptions())
			if err != nil {
				return err
			}
			b.log.Debugf("%d voxel quads", len(quads))
			if cfg.Mesh.Skybox {
				quads = append(quads, mesh.Skybox(cfg.dims(), cfg.skyboxHeight())...)
			}
			res.Quads = quads
			if cfg.Output.Vertex2D != "" {
				res.Quads2D = mesh.Build2D(grid.TopView(res.Grid), res.Palette)
			}
			minB, maxB := mesh.Bounds(quads)
			b.log.Debugf("mesh bounds %v - %v", minB, maxB)
			return nil
		})
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// aux fills the texture's fourth byte from the noise sources.
func (b *Baker) aux() output.AuxFunc {
	tc := b.cfg.Texture
	if tc.NoiseRows == 0 && tc.RandomRows == 0 {
		return nil
	}
	d := b.cfg.dims()
	var fractal, random noise.Oracle = noise.NewFractal(tc.Seed, d.X()), noise.NewRandom(tc.Seed)
	return func(x, y, z int) uint8 {
		row := d.Y()*z + y
		switch {
		case row < tc.NoiseRows:
			return fractal.Sample(x, row, tc.Octaves)
		case row < tc.NoiseRows+tc.RandomRows:
			return random.Sample(x, row, 0)
		}
		return 0
	}
}

// Emit serializes res into the sinks.
func (b *Baker) Emit(res *Result, s Sinks) error {
	if s.Palette != nil {
		if err := output.WritePalette(s.Palette, res.Palette); err != nil {
			return fmt.Errorf("palette report: %w", err)
		}
	}
	if s.Vertex != nil {
		err := b.stage("Writing vertex file", func() error {
			n, err := output.WriteMesh(s.Vertex, res.Quads)
			b.log.Infof("%d quads, %d vertices, %s", len(res.Quads), n,
				humanize.Bytes(uint64(n*output.VertexSize)))
			return err
		})
		if err != nil {
			return err
		}
	}
	if s.Vertex2D != nil {
		err := b.stage("Writing 2D vertex file", func() error {
			n, err := output.WriteMesh(s.Vertex2D, res.Quads2D)
			b.log.Infof("%d quads, %s", len(res.Quads2D), humanize.Bytes(uint64(n*output.VertexSize)))
			return err
		})
		if err != nil {
			return err
		}
	}
	if s.Texture != nil {
		err := b.stage("Writing SDF file", func() error {
			n, err := output.WriteTexture(s.Texture, res.Grid, res.Field, b.aux())
			b.log.Infof("%d texels, %s", res.Grid.Dims().Len(), humanize.Bytes(uint64(n)))
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

type outputs struct {
	files []*output.AtomicFile
	sinks Sinks
}

func (o *outputs) create(path string) (*output.AtomicFile, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := output.CreateAtomic(path)
	if err != nil {
		return nil, err
	}
	o.files = append(o.files, f)
	return f, nil
}

func (o *outputs) abort() {
	for _, f := range o.files {
		f.Abort()
	}
}

func (o *outputs) commit() error {
	for _, f := range o.files {
		if err := f.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f.Path(), err)
		}
	}
	return nil
}

// openOutputs creates every configured artifact up front so an unwritable
// path fails the run before any work is done.
func (b *Baker) openOutputs() (*outputs, error) {
	oc := b.cfg.Output
	o := &outputs{}
	var err error
	if o.sinks.Vertex, err = o.create(oc.Vertex); err != nil {
		o.abort()
		return nil, err
	}
	if o.sinks.Texture, err = o.create(oc.Texture); err != nil {
		o.abort()
		return nil, err
	}
	if oc.Vertex2D != "" {
		if o.sinks.Vertex2D, err = o.create(oc.Vertex2D); err != nil {
			o.abort()
			return nil, err
		}
	}
	if b.cfg.PaletteToStdout() {
		o.sinks.Palette = os.Stdout
	} else if o.sinks.Palette, err = o.create(oc.Palette); err != nil {
		o.abort()
		return nil, err
	}
	return o, nil
}

// Run is the whole bake: open outputs, load, bake, emit, commit. Outputs are
// only renamed into place once everything succeeded.
func (b *Baker) Run(ctx context.Context) error {
	start := time.Now()
	b.log.Infof("run %s: %s input, grid %v", b.runID, b.cfg.Input.Format, b.cfg.dims())

	outs, err := b.openOutputs()
	if err != nil {
		return fmt.Errorf("open outputs: %w", err)
	}
	defer outs.abort()

	var recs []grid.Record
	err = b.stage("Loading voxel map", func() error {
		var err error
		recs, err = b.Load()
		return err
	})
	if err != nil {
		return err
	}

	res, err := b.Bake(ctx, recs)
	if err != nil {
		return err
	}
	if err := b.Emit(res, outs.sinks); err != nil {
		return err
	}
	if err := outs.commit(); err != nil {
		return err
	}
	b.log.Infof("run %s finished in %v", b.runID, time.Since(start).Round(time.Millisecond))
	return nil
}

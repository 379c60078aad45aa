package voxbake

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gekko3d/voxbake/voxelbake/bake/grid"
	"github.com/gekko3d/voxbake/voxelbake/bake/ingest"
	"github.com/gekko3d/voxbake/voxelbake/bake/mesh"
	"github.com/gekko3d/voxbake/voxelbake/bake/output"
	"github.com/gekko3d/voxbake/voxelbake/bake/sdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig(dir string) Config {
	cfg := DefaultConfig()
	cfg.Grid.Dims = [3]int{16, 8, 4}
	cfg.Mesh.Chunk = 4
	cfg.Workers = 2
	cfg.Input.Path = filepath.Join(dir, "map.txt")
	cfg.Output = OutputConfig{
		Vertex:   filepath.Join(dir, "out", "vertex.bin"),
		Texture:  filepath.Join(dir, "out", "map.bin"),
		Vertex2D: filepath.Join(dir, "out", "vertex2d.bin"),
		Palette:  filepath.Join(dir, "out", "palette.glsl"),
	}
	return cfg
}

const mapHeader = "# Goxel 0.10.0\n# One line per voxel\n# X Y Z RRGGBB\n"

func TestBakeSingleVoxel(t *testing.T) {
	cfg := smallConfig(t.TempDir())
	b, err := NewBaker(cfg, NewNopLogger())
	require.NoError(t, err)

	recs, err := ingest.ReadText(strings.NewReader(mapHeader + "-512 -5 0 ff0000\n"))
	require.NoError(t, err)
	res, err := b.Bake(context.Background(), recs)
	require.NoError(t, err)

	require.Equal(t, 1, res.Palette.Len())
	assert.Equal(t, uint32(0xFF0000), res.Palette.Entry(1).RGB)
	assert.True(t, res.Grid.Occupied(0, 0, 0))
	assert.Equal(t, uint8(2), res.Field.At(2, 0, 0, sdf.Down))

	require.Len(t, res.Quads, 6+5)
	for _, q := range res.Quads[6:] {
		assert.Equal(t, uint8(mesh.MaterialSkybox), q.Material)
	}

	var vertex, texture, palette bytes.Buffer
	require.NoError(t, b.Emit(res, Sinks{Vertex: &vertex, Texture: &texture, Palette: &palette}))
	assert.Equal(t, (6+5)*output.VerticesPerQuad*output.VertexSize, vertex.Len())
	assert.Equal(t, 16*8*4*output.TexelSize, texture.Len())
	assert.Equal(t, "return p==0?vec3(0,0,0):p==1?vec3(1,0,0):vec3(1);\n", palette.String())

	tx, err := output.ReadTexel(texture.Bytes(), res.Grid.Dims(), 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, output.Texel{Color: 1}, tx)
}

func TestBakeOutOfBounds(t *testing.T) {
	cfg := smallConfig(t.TempDir())
	recs := []grid.Record{{X: -512, Y: -5, Z: 0, Color: 1}, {X: 0, Y: 0, Z: 0, Color: 2}}

	b, err := NewBaker(cfg, NewNopLogger())
	require.NoError(t, err)
	_, err = b.Bake(context.Background(), recs)
	if !errors.Is(err, grid.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}

	cfg.Grid.Bounds = "reject"
	b, err = NewBaker(cfg, NewNopLogger())
	require.NoError(t, err)
	res, err := b.Bake(context.Background(), recs)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dropped)
}

func TestBakeAuxRows(t *testing.T) {
	cfg := smallConfig(t.TempDir())
	cfg.Texture = TextureConfig{NoiseRows: 8, RandomRows: 8, Octaves: 4, Seed: 5}
	b, err := NewBaker(cfg, NewNopLogger())
	require.NoError(t, err)
	res, err := b.Bake(context.Background(), nil)
	require.NoError(t, err)

	var texture bytes.Buffer
	require.NoError(t, b.Emit(res, Sinks{Texture: &texture}))
	d := res.Grid.Dims()
	nonzero := 0
	for z := 0; z < d.Z(); z++ {
		for y := 0; y < d.Y(); y++ {
			for x := 0; x < d.X(); x++ {
				tx, err := output.ReadTexel(texture.Bytes(), d, x, y, z)
				require.NoError(t, err)
				if d.Y()*z+y >= 16 && tx.Aux != 0 {
					t.Fatalf("row %d past the noise rows has aux %d", d.Y()*z+y, tx.Aux)
				}
				if tx.Aux != 0 {
					nonzero++
				}
			}
		}
	}
	assert.Greater(t, nonzero, 0)
}

func TestRunWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := smallConfig(dir)
	require.NoError(t, os.WriteFile(cfg.Input.Path,
		[]byte(mapHeader+"-512 -5 0 ff0000\n-511 -5 0 ff0000\n-500 -3 2 81c8d4\n"), 0o644))

	b, err := NewBaker(cfg, NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, b.Run(context.Background()))

	vertex, err := os.ReadFile(cfg.Output.Vertex)
	require.NoError(t, err)
	assert.Zero(t, len(vertex)%(output.VerticesPerQuad*output.VertexSize))
	texture, err := os.ReadFile(cfg.Output.Texture)
	require.NoError(t, err)
	assert.Len(t, texture, 16*8*4*output.TexelSize)
	v2d, err := os.ReadFile(cfg.Output.Vertex2D)
	require.NoError(t, err)
	assert.NotEmpty(t, v2d)
	pal, err := os.ReadFile(cfg.Output.Palette)
	require.NoError(t, err)
	assert.Contains(t, string(pal), "p==2?vec3(0.505882,0.784314,0.831373):")

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Len(t, entries, 4, "no temporary files left behind")

	// glass sorts last and carries material 2
	var glass int
	for off := 0; off < len(vertex); off += output.VertexSize {
		if v := output.DecodeVertex(vertex[off:]); v.Color == 2 {
			assert.Equal(t, uint8(mesh.MaterialGlass), v.Material)
			glass++
		}
	}
	assert.Equal(t, 6*output.VerticesPerQuad, glass)
}

func TestRunFailureLeavesNoArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := smallConfig(dir)
	require.NoError(t, os.WriteFile(cfg.Input.Path, []byte(mapHeader+"1 2 three ff0000\n"), 0o644))

	b, err := NewBaker(cfg, NewNopLogger())
	require.NoError(t, err)
	err = b.Run(context.Background())
	if !errors.Is(err, ingest.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunProcedural(t *testing.T) {
	dir := t.TempDir()
	cfg := smallConfig(dir)
	cfg.Input = InputConfig{Format: FormatProcedural, Shape: "cube", Size: 3, Color: 0x336699}
	cfg.Output.Vertex2D = ""

	b, err := NewBaker(cfg, NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, b.Run(context.Background()))

	vertex, err := os.ReadFile(cfg.Output.Vertex)
	require.NoError(t, err)
	assert.Len(t, vertex, (6+5)*output.VerticesPerQuad*output.VertexSize, "solid cube meshes to six quads")
}

func TestNewBakerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mesh.Chunk = -1
	_, err := NewBaker(cfg, nil)
	assert.Error(t, err)
}

func TestLoggerPrefix(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLogger("voxbake", false, &out, &errOut)
	l.Debugf("hidden")
	l.Infof("stage %d", 1)
	l.Warnf("careful")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[voxbake] INFO: stage 1")
	assert.Contains(t, errOut.String(), "[voxbake] WARN: careful")

	l.SetDebug(true)
	l.Debugf("shown")
	assert.Contains(t, out.String(), "DEBUG: shown")
}

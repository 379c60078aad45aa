package voxbake

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gekko3d/voxbake/voxelbake/bake/grid"
	"github.com/gekko3d/voxbake/voxelbake/bake/mesh"
	"github.com/gekko3d/voxbake/voxelbake/bake/sdf"
)

// maxCoord is the largest extent a signed 16-bit vertex field can hold.
const maxCoord = 1<<15 - 1

// Input formats.
const (
	FormatText       = "text"
	FormatImage      = "image"
	FormatVox        = "vox"
	FormatProcedural = "procedural"
)

type Config struct {
	// Workers bounds every parallel stage; 0 means GOMAXPROCS.
	Workers int  `toml:"workers"`
	Debug   bool `toml:"debug"`

	Grid    GridConfig    `toml:"grid"`
	Palette PaletteConfig `toml:"palette"`
	SDF     SDFConfig     `toml:"sdf"`
	Mesh    MeshConfig    `toml:"mesh"`
	Texture TextureConfig `toml:"texture"`
	Input   InputConfig   `toml:"input"`
	Output  OutputConfig  `toml:"output"`
}

type GridConfig struct {
	Dims [3]int `toml:"dims"`
	// Offset translates text and vox coordinates into the grid.
	Offset [3]int `toml:"offset"`
	// Bounds is "fatal" or "reject".
	Bounds string `toml:"bounds"`
}

type PaletteConfig struct {
	// Order is "sorted" or "first-seen".
	Order string `toml:"order"`
	// Glass is the RGB of the glass material; negative disables it.
	Glass int64 `toml:"glass"`
}

type SDFConfig struct {
	// Search is "gradient" or "linear".
	Search string `toml:"search"`
}

type MeshConfig struct {
	// Mode is "sixface" or "twosided".
	Mode   string `toml:"mode"`
	Chunk  int    `toml:"chunk"`
	Skybox bool   `toml:"skybox"`
	// SkyboxHeight of 0 uses the grid's Y extent.
	SkyboxHeight int `toml:"skybox_height"`
}

// TextureConfig fills the texture's auxiliary byte. Texture rows (Y*z+y)
// below NoiseRows get fractal noise, the next RandomRows rows get white
// noise, the rest 0.
type TextureConfig struct {
	NoiseRows  int   `toml:"noise_rows"`
	RandomRows int   `toml:"random_rows"`
	Octaves    int   `toml:"octaves"`
	Seed       int64 `toml:"seed"`
}

type InputConfig struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
	// Shape, Size and Color describe procedural input.
	Shape string `toml:"shape"`
	Size  int    `toml:"size"`
	Color uint32 `toml:"color"`
}

type OutputConfig struct {
	Vertex   string `toml:"vertex"`
	Texture  string `toml:"texture"`
	Vertex2D string `toml:"vertex2d"`
	// Palette of "" or "-" prints the report to stdout.
	Palette string `toml:"palette"`
}

func DefaultConfig() Config {
	return Config{
		Grid: GridConfig{
			Dims:   [3]int{1024, 256, 32},
			Offset: [3]int{512, 5, 0},
			Bounds: "fatal",
		},
		Palette: PaletteConfig{Order: "sorted", Glass: 0x81C8D4},
		SDF:     SDFConfig{Search: "gradient"},
		Mesh:    MeshConfig{Mode: "sixface", Chunk: 32, Skybox: true},
		Texture: TextureConfig{Octaves: 8},
		Input:   InputConfig{Format: FormatText, Path: "maps/map.txt", Shape: "sphere", Size: 8, Color: 0xFF0000},
		Output:  OutputConfig{Vertex: "out/vertex.bin", Texture: "out/map.bin"},
	}
}

// LoadConfig decodes a TOML file over the defaults. Unknown keys are an
// error so typos do not silently fall back to defaults.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, errors.New("no TOML configuration file provided")
	}
	md, err := toml.DecodeFile(filename, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("could not decode TOML config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	for a, n := range c.Grid.Dims {
		if n < 1 || n > maxCoord {
			errs = append(errs, fmt.Errorf("grid.dims[%d] = %d, want 1..%d", a, n, maxCoord))
		}
	}
	if _, err := grid.ParseBoundsPolicy(c.Grid.Bounds); err != nil {
		errs = append(errs, err)
	}
	if _, err := grid.ParseOrder(c.Palette.Order); err != nil {
		errs = append(errs, err)
	}
	if c.Palette.Glass > 0xFFFFFF {
		errs = append(errs, fmt.Errorf("palette.glass %#x is not a 24-bit color", c.Palette.Glass))
	}
	if _, err := sdf.ParseStrategy(c.SDF.Search); err != nil {
		errs = append(errs, err)
	}
	if _, err := mesh.ParseMode(c.Mesh.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.Mesh.Chunk < 1 {
		errs = append(errs, fmt.Errorf("mesh.chunk = %d", c.Mesh.Chunk))
	}
	if c.Mesh.SkyboxHeight < 0 || c.Mesh.SkyboxHeight > maxCoord {
		errs = append(errs, fmt.Errorf("mesh.skybox_height = %d", c.Mesh.SkyboxHeight))
	}
	if c.Texture.NoiseRows < 0 || c.Texture.RandomRows < 0 {
		errs = append(errs, errors.New("texture rows must not be negative"))
	}
	if c.Texture.Octaves < 0 || c.Texture.Octaves > 16 {
		errs = append(errs, fmt.Errorf("texture.octaves = %d, want 0..16", c.Texture.Octaves))
	}
	switch c.Input.Format {
	case FormatText, FormatImage, FormatVox:
		if c.Input.Path == "" {
			errs = append(errs, fmt.Errorf("input.path is required for %s input", c.Input.Format))
		}
	case FormatProcedural:
		if c.Input.Size < 1 {
			errs = append(errs, fmt.Errorf("input.size = %d", c.Input.Size))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown input format %q", c.Input.Format))
	}
	if c.Output.Vertex == "" || c.Output.Texture == "" {
		errs = append(errs, errors.New("output.vertex and output.texture are required"))
	}
	return errors.Join(errs...)
}

func (c Config) dims() grid.Dims { return grid.Dims(c.Grid.Dims) }

// inputOffset is the translation applied to records of the configured format.
func (c Config) inputOffset() [3]int {
	switch c.Input.Format {
	case FormatText, FormatVox:
		return c.Grid.Offset
	}
	return [3]int{}
}

func (c Config) paletteOptions() grid.PaletteOptions {
	order, _ := grid.ParseOrder(c.Palette.Order)
	return grid.PaletteOptions{
		Order:    order,
		Glass:    uint32(max(c.Palette.Glass, 0)),
		HasGlass: c.Palette.Glass >= 0,
	}
}

func (c Config) sdfOptions() sdf.Options {
	s, _ := sdf.ParseStrategy(c.SDF.Search)
	return sdf.Options{Strategy: s, Workers: c.Workers}
}

func (c Config) meshOptions() mesh.Options {
	m, _ := mesh.ParseMode(c.Mesh.Mode)
	return mesh.Options{Chunk: c.Mesh.Chunk, Mode: m, Workers: c.Workers}
}

func (c Config) skyboxHeight() int {
	if c.Mesh.SkyboxHeight > 0 {
		return c.Mesh.SkyboxHeight
	}
	return c.Grid.Dims[1]
}

// PaletteToStdout reports whether the palette report is printed to stdout.
func (c Config) PaletteToStdout() bool {
	return c.Output.Palette == "" || c.Output.Palette == "-"
}

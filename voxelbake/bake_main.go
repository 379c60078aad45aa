package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gekko3d/voxbake"
)

func main() {
	configPath := flag.String("config", "", "TOML configuration file")
	in := flag.String("in", "", "Input path (overrides input.path)")
	format := flag.String("format", "", "Input format: text, image, vox or procedural")
	vertex := flag.String("vertex", "", "Vertex output path")
	texture := flag.String("texture", "", "Texture output path")
	vertex2d := flag.String("vertex2d", "", "2D vertex output path")
	palette := flag.String("palette", "", "Palette report path, - for stdout")
	shape := flag.String("shape", "", "Procedural shape: sphere, cube, cone or pyramid")
	size := flag.Int("size", 0, "Procedural shape size")
	workers := flag.Int("workers", 0, "Worker count, 0 for GOMAXPROCS")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg := voxbake.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = voxbake.LoadConfig(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	// Only flags given on the command line override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			cfg.Input.Path = *in
		case "format":
			cfg.Input.Format = *format
		case "vertex":
			cfg.Output.Vertex = *vertex
		case "texture":
			cfg.Output.Texture = *texture
		case "vertex2d":
			cfg.Output.Vertex2D = *vertex2d
		case "palette":
			cfg.Output.Palette = *palette
		case "shape":
			cfg.Input.Shape = *shape
		case "size":
			cfg.Input.Size = *size
		case "workers":
			cfg.Workers = *workers
		case "debug":
			cfg.Debug = *debug
		}
	})

	// Keep stdout clean for the palette report.
	var out io.Writer = os.Stdout
	if cfg.PaletteToStdout() {
		out = os.Stderr
	}
	logger := voxbake.NewLogger("voxbake", cfg.Debug, out, os.Stderr)

	baker, err := voxbake.NewBaker(cfg, logger)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := baker.Run(ctx); err != nil {
		logger.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}

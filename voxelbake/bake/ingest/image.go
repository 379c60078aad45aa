package ingest

import (
	"errors"
	"fmt"
	"image"
	"io"

	// decoders for image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/gekko3d/voxbake/voxelbake/bake/grid"
)

var ErrImageSize = errors.New("image size does not match grid")

// ReadImage reads a stack of horizontal slices packed into one image X
// pixels wide and Y*Z tall: pixel (x, Y*z+y) is voxel (x, y, z). Black
// pixels are empty. Records are already in grid coordinates.
func ReadImage(r io.Reader, d grid.Dims) ([]grid.Record, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() != d.X() || b.Dy() != d.Y()*d.Z() {
		return nil, fmt.Errorf("%w: %s is %dx%d, want %dx%d",
			ErrImageSize, format, b.Dx(), b.Dy(), d.X(), d.Y()*d.Z())
	}

	var recs []grid.Record
	for row := 0; row < b.Dy(); row++ {
		y, z := row%d.Y(), row/d.Y()
		for x := 0; x < b.Dx(); x++ {
			cr, cg, cb, _ := img.At(b.Min.X+x, b.Min.Y+row).RGBA()
			rgb := (cr>>8)<<16 | (cg>>8)<<8 | cb>>8
			if rgb == 0 {
				continue
			}
			recs = append(recs, grid.Record{X: x, Y: y, Z: z, Color: rgb})
		}
	}
	return recs, nil
}

package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/gekko3d/voxbake/voxelbake/bake/grid"
)

func channel(rgb uint32, shift uint) string {
	return strconv.FormatFloat(float64((rgb>>shift)&0xFF)/255.0, 'g', 6, 64)
}

// WritePalette prints the palette as the nested-ternary lookup the shader's
// palette(int p) function returns, index 0 first, white as the fallback.
func WritePalette(w io.Writer, pal *grid.Palette) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "return ")
	for i := 0; i <= pal.Len(); i++ {
		rgb := pal.Entry(uint8(i)).RGB
		fmt.Fprintf(bw, "p==%d?vec3(%s,%s,%s):", i, channel(rgb, 16), channel(rgb, 8), channel(rgb, 0))
	}
	fmt.Fprintln(bw, "vec3(1);")
	return bw.Flush()
}

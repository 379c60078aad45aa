// Package noise provides the deterministic byte sources used for the
// texture's auxiliary channel.
package noise

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Oracle maps a texel position and an octave count to a byte. It must be a
// pure function of its arguments for a fixed seed.
type Oracle interface {
	Sample(x, y, octaves int) uint8
}

// Fractal is octave-summed OpenSimplex noise sampled on a 4-D torus, so it
// tiles with the given period along both axes.
type Fractal struct {
	n      opensimplex.Noise
	period int
}

func NewFractal(seed int64, period int) *Fractal {
	return &Fractal{n: opensimplex.New(seed), period: max(period, 1)}
}

func (f *Fractal) simplex(x, y int) float64 {
	arc := 2 * math.Pi / float64(f.period)
	ax, ay := arc*float64(x), arc*float64(y)
	return f.n.Eval4(
		math.Cos(ax)+1, math.Sin(ax)+2,
		math.Cos(ay)+3, math.Sin(ay)+4,
	)
}

func (f *Fractal) Sample(x, y, octaves int) uint8 {
	n := 0.0
	for o := 0; o < octaves; o++ {
		n += f.simplex(x<<o, y<<o) / float64(int(1)<<o)
	}
	v := int(300 * n)
	return uint8(128 + min(max(v, -128), 127))
}

// Random is white noise: a hash of the position and seed. Octaves are
// ignored.
type Random struct {
	seed uint32
}

func NewRandom(seed int64) *Random {
	return &Random{seed: uint32(seed) ^ uint32(seed>>32)}
}

func (r *Random) Sample(x, y, _ int) uint8 {
	h := r.seed
	h ^= uint32(x) * 0x9e3779b1
	h ^= uint32(y) * 0x85ebca6b
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	h *= 0x846ca68b
	h ^= h >> 16
	return uint8(h >> 24)
}

package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFractalDeterministic(t *testing.T) {
	a := NewFractal(42, 64)
	b := NewFractal(42, 64)
	for x := 0; x < 64; x += 7 {
		for y := 0; y < 64; y += 5 {
			if a.Sample(x, y, 8) != b.Sample(x, y, 8) {
				t.Fatalf("same seed differs at (%d,%d)", x, y)
			}
		}
	}
}

func TestFractalVaries(t *testing.T) {
	f := NewFractal(1, 128)
	seen := map[uint8]bool{}
	for x := 0; x < 128; x += 3 {
		seen[f.Sample(x, 17, 4)] = true
	}
	assert.Greater(t, len(seen), 4, "noise should not be flat")
}

func TestFractalZeroOctavesIsMidGray(t *testing.T) {
	f := NewFractal(3, 32)
	assert.Equal(t, uint8(128), f.Sample(5, 9, 0))
}

func TestFractalTiles(t *testing.T) {
	f := NewFractal(9, 32)
	for x := 0; x < 32; x += 4 {
		a, b := int(f.Sample(x, 3, 1)), int(f.Sample(x+32, 3, 1))
		if a-b > 1 || b-a > 1 {
			t.Errorf("x=%d: %d vs %d one period later", x, a, b)
		}
	}
}

func TestRandomDeterministic(t *testing.T) {
	r := NewRandom(7)
	assert.Equal(t, r.Sample(10, 20, 0), NewRandom(7).Sample(10, 20, 5))
	counts := map[uint8]int{}
	for x := 0; x < 256; x++ {
		counts[r.Sample(x, 0, 0)]++
	}
	assert.Greater(t, len(counts), 100)
}

package mesh

// Rect is one merged run of equal mask cells: origin (U, V) and size W x H.
type Rect struct {
	U, V, W, H int
	Value      int8
}

// MergeMask covers every non-zero cell of a w x h row-major mask with
// rectangles of equal value. Rectangles are taken greedily in scan order,
// widest first then tallest. The mask is cleared as cells are consumed.
func MergeMask(mask []int8, w, h int, emit func(Rect)) {
	for j := 0; j < h; j++ {
		row := mask[j*w : (j+1)*w]
		for i := 0; i < w; {
			v := row[i]
			if v == 0 {
				i++
				continue
			}

			rw := 1
			for i+rw < w && row[i+rw] == v {
				rw++
			}
			rh := 1
			for j+rh < h && spanMatches(mask[(j+rh)*w:], i, rw, v) {
				rh++
			}

			emit(Rect{U: i, V: j, W: rw, H: rh, Value: v})

			for l := 0; l < rh; l++ {
				clear(mask[(j+l)*w+i : (j+l)*w+i+rw])
			}
			i += rw
		}
	}
}

// spanMatches reports whether row[i:i+n] is all v.
func spanMatches(row []int8, i, n int, v int8) bool {
	for k := i; k < i+n; k++ {
		if row[k] != v {
			return false
		}
	}
	return true
}

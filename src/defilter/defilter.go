// Package defilter undoes PNG's per-row prediction filters in place.
package defilter

import (
	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/KuratZero/c-png-to-pnm/src/pngerr"
	"github.com/KuratZero/c-png-to-pnm/src/raster"
)

// Filter types a PNG scanline can start with.
const (
	FilterNone    = 0
	FilterSub     = 1
	FilterUp      = 2
	FilterAverage = 3
	FilterPaeth   = 4
	NumFilters    = 5
)

// Defilter reconstructs every row of buf, which must hold exactly
// layout.Size() bytes. Rows are processed top to bottom since each row is
// predicted from the reconstructed row above it. The filter bytes are left
// untouched.
func Defilter(buf []byte, layout raster.Layout) error {
	if len(buf) != layout.Size() {
		return oops.New(pngerr.ErrStructure, "filtered image is %d bytes, want %d", len(buf), layout.Size())
	}

	var prev []byte
	for y := 0; y < layout.Height; y++ {
		row := layout.Row(buf, y)
		if err := Row(row[0], row[1:], prev, layout.BytesPerPixel); err != nil {
			return oops.New(err, "row %d", y)
		}
		prev = row[1:]
	}
	return nil
}

// Row reconstructs the samples cur of one row filtered with filter. prev is
// the reconstructed previous row, or nil for the first row. bpp is the
// distance to the corresponding byte of the pixel to the left.
func Row(filter byte, cur, prev []byte, bpp int) error {
	switch filter {
	case FilterNone:
		// No-op.
	case FilterSub:
		for i := bpp; i < len(cur); i++ {
			cur[i] += cur[i-bpp]
		}
	case FilterUp:
		if prev == nil {
			return nil
		}
		for i, p := range prev {
			cur[i] += p
		}
	case FilterAverage:
		for i := range cur {
			var a, b int
			if i >= bpp {
				a = int(cur[i-bpp])
			}
			if prev != nil {
				b = int(prev[i])
			}
			cur[i] += uint8((a + b) / 2)
		}
	case FilterPaeth:
		for i := range cur {
			var a, b, c uint8
			if i >= bpp {
				a = cur[i-bpp]
			}
			if prev != nil {
				b = prev[i]
				if i >= bpp {
					c = prev[i-bpp]
				}
			}
			cur[i] += Paeth(a, b, c)
		}
	default:
		return oops.New(pngerr.ErrStructure, "bad filter type %d", filter)
	}
	return nil
}

// Paeth returns whichever of a (left), b (up) and c (upper left) is closest
// to a+b-c, preferring a, then b, on ties.
func Paeth(a, b, c uint8) uint8 {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Package raster describes the in-memory shape of decoded image data: which
// channels a color mode carries and where each row and sample lives.
package raster

import (
	"fmt"
	"math"

	"github.com/KuratZero/c-png-to-pnm/src/arena"
	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/KuratZero/c-png-to-pnm/src/pngerr"
)

type ColorMode uint8

const (
	Grayscale      ColorMode = 0
	TrueColor      ColorMode = 2
	Indexed        ColorMode = 3
	GrayscaleAlpha ColorMode = 4
	TrueColorAlpha ColorMode = 6
)

func (m ColorMode) Valid() bool {
	switch m {
	case Grayscale, TrueColor, Indexed, GrayscaleAlpha, TrueColorAlpha:
		return true
	}
	return false
}

// BytesPerPixel is the size of one stored pixel at 8 bits per sample.
func (m ColorMode) BytesPerPixel() int {
	switch m {
	case Grayscale, Indexed:
		return 1
	case GrayscaleAlpha:
		return 2
	case TrueColor:
		return 3
	case TrueColorAlpha:
		return 4
	}
	return 0
}

// OutChannels is 1 for modes written as graymaps and 3 for pixmaps.
func (m ColorMode) OutChannels() int {
	switch m {
	case Grayscale, GrayscaleAlpha:
		return 1
	}
	return 3
}

func (m ColorMode) HasAlpha() bool {
	return m == GrayscaleAlpha || m == TrueColorAlpha
}

func (m ColorMode) String() string {
	switch m {
	case Grayscale:
		return "grayscale"
	case TrueColor:
		return "truecolor"
	case Indexed:
		return "indexed"
	case GrayscaleAlpha:
		return "grayscale+alpha"
	case TrueColorAlpha:
		return "truecolor+alpha"
	}
	return fmt.Sprintf("colormode(%d)", uint8(m))
}

// Layout addresses a filtered raster: Height rows, each a filter selector
// byte followed by Width*BytesPerPixel sample bytes.
type Layout struct {
	Width         int
	Height        int
	BytesPerPixel int
}

// NewLayout checks that the raster of a width x height image in mode m can
// be addressed, returning its layout.
func NewLayout(width, height uint32, m ColorMode) (Layout, error) {
	total, err := arena.Size("filtered image", uint64(height), RowStrideFor(width, m))
	if err != nil {
		return Layout{}, err
	}
	if total > math.MaxInt {
		return Layout{}, oops.New(pngerr.ErrAllocation, "filtered image of %d bytes is not addressable", total)
	}
	return Layout{Width: int(width), Height: int(height), BytesPerPixel: m.BytesPerPixel()}, nil
}

// RowStrideFor is the stride including the filter byte, as a uint64 so it
// cannot overflow for any 32-bit width.
func RowStrideFor(width uint32, m ColorMode) uint64 {
	return uint64(width)*uint64(m.BytesPerPixel()) + 1
}

// SampleBytes is the number of sample bytes in one row.
func (l Layout) SampleBytes() int {
	return l.Width * l.BytesPerPixel
}

// RowStride is SampleBytes plus the leading filter byte.
func (l Layout) RowStride() int {
	return l.SampleBytes() + 1
}

// Size is the byte length of the whole filtered raster.
func (l Layout) Size() int {
	return l.Height * l.RowStride()
}

// Row returns row y including its filter byte.
func (l Layout) Row(buf []byte, y int) []byte {
	start := y * l.RowStride()
	return buf[start : start+l.RowStride() : start+l.RowStride()]
}

// Samples returns the sample bytes of row y, without the filter byte.
func (l Layout) Samples(buf []byte, y int) []byte {
	return l.Row(buf, y)[1:]
}

// Pixel returns the bytes of pixel x within a row's samples.
func (l Layout) Pixel(samples []byte, x int) []byte {
	start := x * l.BytesPerPixel
	return samples[start : start+l.BytesPerPixel : start+l.BytesPerPixel]
}

type RGB [3]uint8

// Palette is the PLTE color table, indexed by the samples of an Indexed image.
type Palette []RGB

// NewPalette splits PLTE data into colors. Trailing bytes that do not form a
// whole color are dropped.
func NewPalette(data []byte) Palette {
	p := make(Palette, len(data)/3)
	for i := range p {
		copy(p[i][:], data[3*i:3*i+3])
	}
	return p
}

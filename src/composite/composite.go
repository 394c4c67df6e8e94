// Package composite turns defiltered samples into output pixels: palette
// lookup, transparency keys and alpha blending against a background.
package composite

import (
	"github.com/KuratZero/c-png-to-pnm/src/arena"
	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/KuratZero/c-png-to-pnm/src/pngerr"
	"github.com/KuratZero/c-png-to-pnm/src/raster"
)

type Input struct {
	Mode   raster.ColorMode
	Layout raster.Layout

	// Raw is the defiltered raster, filter bytes included.
	Raw []byte

	Palette      raster.Palette
	Transparency []byte

	// Background is only used when HasBackground is set. Without one,
	// transparency is ignored and colors pass through.
	Background    raster.RGB
	HasBackground bool
}

// Composite produces Width*Height*OutChannels bytes in raster order.
func Composite(in Input, a *arena.Arena) ([]byte, error) {
	channels := in.Mode.OutChannels()
	size, err := arena.Size("output image", uint64(in.Layout.Width), uint64(in.Layout.Height), uint64(channels))
	if err != nil {
		return nil, err
	}
	out, err := a.Bytes("output image", size)
	if err != nil {
		return nil, err
	}

	pos := 0
	for y := 0; y < in.Layout.Height; y++ {
		samples := in.Layout.Samples(in.Raw, y)
		for x := 0; x < in.Layout.Width; x++ {
			px := in.Layout.Pixel(samples, x)
			dst := out[pos : pos+channels]
			if err := in.pixel(dst, px); err != nil {
				return nil, oops.New(err, "pixel (%d, %d)", x, y)
			}
			pos += channels
		}
	}
	return out, nil
}

func (in *Input) pixel(dst, px []byte) error {
	bg := in.Background
	switch in.Mode {
	case raster.Grayscale:
		dst[0] = px[0]
		if in.HasBackground && grayKeyed(in.Transparency, px[0]) {
			dst[0] = bg[0]
		}
	case raster.TrueColor:
		copy(dst, px)
		if in.HasBackground && rgbKeyed(in.Transparency, px) {
			copy(dst, bg[:])
		}
	case raster.Indexed:
		idx := int(px[0])
		if idx >= len(in.Palette) {
			return oops.New(pngerr.ErrStructure, "palette index %d is outside the %d-color palette", idx, len(in.Palette))
		}
		color := in.Palette[idx]
		copy(dst, color[:])
		if in.HasBackground && idx < len(in.Transparency) {
			alpha := in.Transparency[idx]
			for i := range dst {
				dst[i] = Blend(alpha, color[i], bg[i])
			}
		}
	case raster.GrayscaleAlpha:
		dst[0] = px[0]
		if in.HasBackground {
			dst[0] = Blend(px[1], px[0], bg[0])
		}
	case raster.TrueColorAlpha:
		copy(dst, px[:3])
		if in.HasBackground {
			for i := range dst {
				dst[i] = Blend(px[3], px[i], bg[i])
			}
		}
	default:
		return oops.New(pngerr.ErrUnsupported, "color type %d", in.Mode)
	}
	return nil
}

// grayKeyed reports whether v matches one of the 2-byte gray keys of tRNS.
func grayKeyed(trns []byte, v uint8) bool {
	for i := 0; i+2 <= len(trns); i += 2 {
		if trns[i+1] == v {
			return true
		}
	}
	return false
}

// rgbKeyed reports whether px matches one of the 6-byte RGB keys of tRNS.
func rgbKeyed(trns []byte, px []byte) bool {
	for i := 0; i+6 <= len(trns); i += 6 {
		if trns[i+1] == px[0] && trns[i+3] == px[1] && trns[i+5] == px[2] {
			return true
		}
	}
	return false
}

// Blend composites color over bg with the given alpha, all in 0..255:
// alpha/255*color + (1-alpha/255)*bg, truncated toward zero.
func Blend(alpha, color, bg uint8) uint8 {
	a := uint32(alpha)
	return uint8((a*uint32(color) + (255-a)*uint32(bg)) / 255)
}

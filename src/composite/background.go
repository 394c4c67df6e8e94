package composite

import (
	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/KuratZero/c-png-to-pnm/src/pngerr"
	"github.com/KuratZero/c-png-to-pnm/src/raster"
)

// Override is a background supplied by the user: nothing, one value or
// three color components. In Indexed mode a single value is a palette index;
// otherwise it is replicated across all channels.
type Override []uint8

func (o Override) Validate() error {
	switch len(o) {
	case 0, 1, 3:
		return nil
	}
	return oops.New(pngerr.ErrInvalidArgument, "background needs 1 or 3 values, got %d", len(o))
}

// ResolveBackground picks the color transparent pixels are blended onto: the
// override if there is one, else the bKGD chunk, else none (ok is false).
func ResolveBackground(mode raster.ColorMode, palette raster.Palette, override Override, bkgd []byte) (bg raster.RGB, ok bool, err error) {
	if err := override.Validate(); err != nil {
		return bg, false, err
	}

	switch len(override) {
	case 3:
		return raster.RGB{override[0], override[1], override[2]}, true, nil
	case 1:
		if mode == raster.Indexed {
			idx := int(override[0])
			if idx >= len(palette) {
				return bg, false, oops.New(pngerr.ErrInvalidArgument, "background palette index %d is outside the %d-color palette", idx, len(palette))
			}
			return palette[idx], true, nil
		}
		return raster.RGB{override[0], override[0], override[0]}, true, nil
	}

	if bkgd == nil {
		return bg, false, nil
	}
	return fromChunk(mode, palette, bkgd)
}

// fromChunk interprets bKGD data. 8-bit images store gray and RGB samples as
// 16-bit values, so the low byte of each is used.
func fromChunk(mode raster.ColorMode, palette raster.Palette, data []byte) (raster.RGB, bool, error) {
	var bg raster.RGB
	switch mode {
	case raster.Grayscale, raster.GrayscaleAlpha:
		if len(data) < 2 {
			return bg, false, oops.New(pngerr.ErrStructure, "bKGD is %d bytes, want 2 for color type %d", len(data), mode)
		}
		return raster.RGB{data[1], data[1], data[1]}, true, nil
	case raster.TrueColor, raster.TrueColorAlpha:
		if len(data) < 6 {
			return bg, false, oops.New(pngerr.ErrStructure, "bKGD is %d bytes, want 6 for color type %d", len(data), mode)
		}
		return raster.RGB{data[1], data[3], data[5]}, true, nil
	case raster.Indexed:
		if len(data) < 1 {
			return bg, false, oops.New(pngerr.ErrStructure, "bKGD is empty, want a palette index")
		}
		idx := int(data[0])
		if idx >= len(palette) {
			return bg, false, oops.New(pngerr.ErrStructure, "bKGD palette index %d is outside the %d-color palette", idx, len(palette))
		}
		return palette[idx], true, nil
	}
	return bg, false, oops.New(pngerr.ErrUnsupported, "color type %d", mode)
}

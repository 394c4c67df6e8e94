// Package container walks the chunks of a PNG stream, enforces the
// structural rules that apply to 8-bit images and collects everything later
// stages need: the compressed image data and the palette, transparency and
// background chunks.
package container

import (
	"io"

	"github.com/KuratZero/c-png-to-pnm/src/arena"
	"github.com/KuratZero/c-png-to-pnm/src/chunk"
	"github.com/KuratZero/c-png-to-pnm/src/config"
	"github.com/KuratZero/c-png-to-pnm/src/logging"
	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/KuratZero/c-png-to-pnm/src/pngcrc"
	"github.com/KuratZero/c-png-to-pnm/src/pngerr"
	"github.com/KuratZero/c-png-to-pnm/src/raster"
	"github.com/rs/zerolog"
)

type Options struct {
	CRC    config.CRCPolicy
	Table  *pngcrc.Table
	Arena  *arena.Arena
	Logger *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.CRC == "" {
		o.CRC = config.Config.CRC
	}
	if o.Table == nil {
		o.Table = pngcrc.NewTable()
	}
	if o.Arena == nil {
		o.Arena = arena.New(config.Config.MaxAllocBytes)
	}
	if o.Logger == nil {
		o.Logger = logging.GlobalLogger()
	}
	return o
}

// Image is the assembled content of a PNG stream. Optional chunks that were
// absent are nil.
type Image struct {
	Header Header

	// Compressed is the concatenation of every IDAT payload in stream order.
	Compressed []byte

	Palette      raster.Palette
	Transparency []byte
	Background   []byte
}

// Read consumes a whole PNG stream, from the signature to the end of input.
// On error nothing is returned; every buffer read so far is dropped.
func Read(input io.Reader, opts Options) (*Image, error) {
	opts = opts.withDefaults()
	r := chunk.NewReader(input)

	if err := ReadSignature(r); err != nil {
		return nil, err
	}
	first, err := r.ReadChunk(opts.Table, opts.CRC, opts.Arena)
	if err != nil {
		return nil, err
	}
	header, err := ParseHeader(first)
	if err != nil {
		return nil, err
	}

	img, err := assemble(r, header, opts)
	if err != nil {
		return nil, err
	}

	eof, err := r.AtEOF()
	if err != nil {
		return nil, err
	}
	if !eof {
		return nil, oops.New(pngerr.ErrStructure, "unexpected data after IEND at offset %d", r.Offset())
	}

	if err := img.validate(); err != nil {
		return nil, err
	}
	return img, nil
}

func assemble(r *chunk.Reader, header Header, opts Options) (*Image, error) {
	img := &Image{Header: header}
	var palette []byte
	seenPalette := false

	for {
		c, err := r.ReadChunk(opts.Table, opts.CRC, opts.Arena)
		if err != nil {
			return nil, err
		}
		if !c.CRCValid {
			opts.Logger.Warn().Str("chunk", string(c.Tag[:])).Msg("ignoring checksum mismatch in ancillary chunk")
		}

		switch c.Kind {
		case chunk.KindHeader:
			return nil, oops.New(pngerr.ErrStructure, "more than one IHDR chunk at offset %d", r.Offset())
		case chunk.KindImageData:
			img.Compressed, err = opts.Arena.Grow("image data", img.Compressed, c.Data)
		case chunk.KindPalette:
			if seenPalette {
				return nil, oops.New(pngerr.ErrStructure, "more than one PLTE chunk at offset %d", r.Offset())
			}
			seenPalette = true
			palette, err = opts.Arena.Grow("palette", nil, c.Data)
		case chunk.KindTransparency:
			// Split tRNS payloads are joined, like IDAT.
			img.Transparency, err = opts.Arena.Grow("transparency", img.Transparency, c.Data)
			if err == nil && img.Transparency == nil {
				img.Transparency = []byte{}
			}
		case chunk.KindBackground:
			// Last one wins; its buffer is reused so replaced payloads stay
			// off the budget.
			img.Background, err = opts.Arena.Grow("background", img.Background[:0], c.Data)
			if err == nil && img.Background == nil {
				img.Background = []byte{}
			}
		case chunk.KindEnd:
			if seenPalette {
				if len(palette)%3 != 0 {
					return nil, oops.New(pngerr.ErrStructure, "PLTE length %d is not divisible by 3", len(palette))
				}
				img.Palette = raster.NewPalette(palette)
			}
			return img, nil
		default:
			opts.Logger.Debug().Str("chunk", string(c.Tag[:])).Uint32("length", c.Length).Msg("skipping chunk")
		}
		if err != nil {
			return nil, err
		}
	}
}

func (img *Image) validate() error {
	mode := img.Header.ColorMode
	if img.Transparency != nil && mode.HasAlpha() {
		return oops.New(pngerr.ErrStructure, "tRNS chunk is not allowed with color type %d", mode)
	}
	switch {
	case img.Palette != nil && (mode == raster.Grayscale || mode == raster.GrayscaleAlpha):
		return oops.New(pngerr.ErrStructure, "PLTE chunk is not allowed with color type %d", mode)
	case img.Palette == nil && mode == raster.Indexed:
		return oops.New(pngerr.ErrStructure, "color type 3 requires a PLTE chunk")
	}
	if len(img.Compressed) == 0 {
		return oops.New(pngerr.ErrStructure, "no IDAT chunk")
	}
	return nil
}

package container

import (
	"encoding/binary"

	"github.com/KuratZero/c-png-to-pnm/src/chunk"
	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/KuratZero/c-png-to-pnm/src/pngerr"
	"github.com/KuratZero/c-png-to-pnm/src/raster"
)

const (
	Signature    = "\x89PNG\r\n\x1a\n"
	headerLength = 13
)

// ReadSignature consumes the 8-byte PNG signature.
func ReadSignature(r *chunk.Reader) error {
	var sig [len(Signature)]byte
	if err := r.ReadFull(sig[:], "signature"); err != nil {
		return err
	}
	if string(sig[:]) != Signature {
		return oops.New(pngerr.ErrStructure, "input is not a png (signature % x)", sig[:])
	}
	return nil
}

type Header struct {
	Width       uint32
	Height      uint32
	BitDepth    uint8
	ColorMode   raster.ColorMode
	Compression uint8
	Filter      uint8
	Interlace   uint8
}

// ParseHeader decodes and validates an IHDR chunk. Malformed headers fail
// with pngerr.ErrStructure; well-formed headers asking for anything besides
// 8-bit, non-interlaced, method-0 images fail with pngerr.ErrUnsupported.
func ParseHeader(c *chunk.Chunk) (Header, error) {
	if c.Kind != chunk.KindHeader {
		return Header{}, oops.New(pngerr.ErrStructure, "first chunk is %s, not IHDR", c.Name())
	}
	if len(c.Data) != headerLength {
		return Header{}, oops.New(pngerr.ErrStructure, "IHDR is %d bytes long, want %d", len(c.Data), headerLength)
	}

	h := Header{
		Width:       binary.BigEndian.Uint32(c.Data[0:4]),
		Height:      binary.BigEndian.Uint32(c.Data[4:8]),
		BitDepth:    c.Data[8],
		ColorMode:   raster.ColorMode(c.Data[9]),
		Compression: c.Data[10],
		Filter:      c.Data[11],
		Interlace:   c.Data[12],
	}

	if h.Width == 0 || h.Height == 0 {
		return Header{}, oops.New(pngerr.ErrStructure, "image has zero size (%dx%d)", h.Width, h.Height)
	}
	if h.BitDepth != 8 {
		return Header{}, oops.New(pngerr.ErrUnsupported, "bit depth %d (only 8 is supported)", h.BitDepth)
	}
	if !h.ColorMode.Valid() {
		return Header{}, oops.New(pngerr.ErrUnsupported, "color type %d", uint8(h.ColorMode))
	}
	if h.Compression != 0 {
		return Header{}, oops.New(pngerr.ErrUnsupported, "compression method %d", h.Compression)
	}
	if h.Filter != 0 {
		return Header{}, oops.New(pngerr.ErrUnsupported, "filter method %d", h.Filter)
	}
	if h.Interlace != 0 {
		return Header{}, oops.New(pngerr.ErrUnsupported, "interlace method %d", h.Interlace)
	}
	return h, nil
}

// Layout is the addressing of the image's filtered raster.
func (h Header) Layout() (raster.Layout, error) {
	return raster.NewLayout(h.Width, h.Height, h.ColorMode)
}

// Package pngtest assembles PNG byte streams chunk by chunk for tests,
// including malformed ones the standard encoder would never produce.
// Checksums come from hash/crc32 so they are independent of pngcrc.
package pngtest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"github.com/klauspost/compress/zlib"
)

const Signature = "\x89PNG\r\n\x1a\n"

type Builder struct {
	buf bytes.Buffer
}

// New starts a stream with the PNG signature already written.
func New() *Builder {
	b := &Builder{}
	b.buf.WriteString(Signature)
	return b
}

// Raw appends bytes verbatim.
func (b *Builder) Raw(p []byte) *Builder {
	b.buf.Write(p)
	return b
}

func (b *Builder) Chunk(tag string, data []byte) *Builder {
	return b.ChunkWithCRC(tag, data, crc32.ChecksumIEEE(append([]byte(tag), data...)))
}

func (b *Builder) ChunkWithCRC(tag string, data []byte, crc uint32) *Builder {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(data)))
	b.buf.Write(tmp[:])
	b.buf.WriteString(tag)
	b.buf.Write(data)
	binary.BigEndian.PutUint32(tmp[:], crc)
	b.buf.Write(tmp[:])
	return b
}

// Header appends an IHDR for an 8-bit, non-interlaced image.
func (b *Builder) Header(width, height uint32, colorType byte) *Builder {
	return b.Chunk("IHDR", HeaderData(width, height, 8, colorType, 0, 0, 0))
}

func HeaderData(width, height uint32, depth, colorType, compression, filter, interlace byte) []byte {
	data := make([]byte, 13)
	binary.BigEndian.PutUint32(data[0:4], width)
	binary.BigEndian.PutUint32(data[4:8], height)
	data[8] = depth
	data[9] = colorType
	data[10] = compression
	data[11] = filter
	data[12] = interlace
	return data
}

// ImageData compresses the concatenated rows into a single IDAT. Each row
// must start with its filter selector.
func (b *Builder) ImageData(rows ...[]byte) *Builder {
	return b.Chunk("IDAT", Compress(bytes.Join(rows, nil)))
}

// SplitImageData spreads the compressed rows over IDAT chunks of at most
// size bytes each.
func (b *Builder) SplitImageData(size int, rows ...[]byte) *Builder {
	z := Compress(bytes.Join(rows, nil))
	for len(z) > 0 {
		n := size
		if n > len(z) {
			n = len(z)
		}
		b.Chunk("IDAT", z[:n])
		z = z[n:]
	}
	return b
}

func (b *Builder) End() *Builder {
	return b.Chunk("IEND", nil)
}

func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}

func Compress(raw []byte) []byte {
	var out bytes.Buffer
	w := zlib.NewWriter(&out)
	if _, err := w.Write(raw); err != nil {
		panic(err)
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return out.Bytes()
}

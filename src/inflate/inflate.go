// Package inflate decompresses the zlib stream carried by a PNG's IDAT chunks.
package inflate

import (
	"bytes"
	"errors"
	"io"

	"github.com/KuratZero/c-png-to-pnm/src/arena"
	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/KuratZero/c-png-to-pnm/src/pngerr"
	"github.com/klauspost/compress/zlib"
)

// Inflate decompresses src into a buffer of exactly expectedSize bytes taken
// from a. A corrupt stream, or one that inflates to any other size, fails
// with pngerr.ErrDecompression.
func Inflate(src []byte, expectedSize int, a *arena.Arena) ([]byte, error) {
	dst, err := a.Bytes("inflated image", uint64(expectedSize))
	if err != nil {
		return nil, err
	}

	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, oops.New(pngerr.ErrDecompression, "bad zlib header: %v", err)
	}
	defer zr.Close()

	n, err := io.ReadFull(zr, dst)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, oops.New(pngerr.ErrDecompression, "image data inflates to %d bytes, want %d", n, expectedSize)
		}
		return nil, oops.New(pngerr.ErrDecompression, "inflating image data: %v", err)
	}

	// Reading past the end verifies the trailing checksum and catches
	// streams that carry more data than the image needs.
	var extra [1]byte
	m, err := zr.Read(extra[:])
	if m > 0 {
		return nil, oops.New(pngerr.ErrDecompression, "image data inflates to more than %d bytes", expectedSize)
	}
	if err != io.EOF {
		if err == nil {
			return nil, oops.New(pngerr.ErrDecompression, "zlib stream did not end after %d bytes", expectedSize)
		}
		return nil, oops.New(pngerr.ErrDecompression, "finishing image data: %v", err)
	}
	return dst, nil
}

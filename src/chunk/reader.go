package chunk

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/KuratZero/c-png-to-pnm/src/pngerr"
)

// Reader is a sequential big-endian cursor over a PNG stream. Running out of
// input before a field is complete is reported as pngerr.ErrStreamTruncated.
type Reader struct {
	r      *bufio.Reader
	tmp    [4]byte
	offset int64
}

func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

// Offset is the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// ReadFull fills buf completely.
func (r *Reader) ReadFull(buf []byte, what string) error {
	n, err := io.ReadFull(r.r, buf)
	r.offset += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return oops.New(pngerr.ErrStreamTruncated, "reading %s at offset %d: got %d of %d bytes", what, r.offset-int64(n), n, len(buf))
		}
		return oops.New(pngerr.ErrStreamTruncated, "reading %s at offset %d: %v", what, r.offset-int64(n), err)
	}
	return nil
}

func (r *Reader) ReadUint32(what string) (uint32, error) {
	if err := r.ReadFull(r.tmp[:], what); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r.tmp[:]), nil
}

func (r *Reader) ReadTag() ([4]byte, error) {
	var tag [4]byte
	if err := r.ReadFull(tag[:], "chunk type"); err != nil {
		return tag, err
	}
	return tag, nil
}

// AtEOF reports whether the stream has no bytes left.
func (r *Reader) AtEOF() (bool, error) {
	_, err := r.r.Peek(1)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, oops.New(pngerr.ErrStreamTruncated, "checking for end of stream at offset %d: %v", r.offset, err)
}

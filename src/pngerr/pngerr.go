// Package pngerr defines the failure categories of a conversion. Every error
// returned by the decoding pipeline wraps exactly one of the sentinels below,
// so callers classify failures with errors.Is or KindOf.
package pngerr

import "errors"

var (
	ErrStreamTruncated  = errors.New("unexpected end of stream")
	ErrChecksumMismatch = errors.New("chunk checksum mismatch")
	ErrStructure        = errors.New("invalid png structure")
	ErrUnsupported      = errors.New("unsupported png feature")
	ErrAllocation       = errors.New("allocation failed")
	ErrDecompression    = errors.New("image data decompression failed")
	ErrWrite            = errors.New("output write failed")
	ErrCannotOpen       = errors.New("cannot open file")
	ErrInvalidArgument  = errors.New("invalid argument")
)

type Kind int

const (
	KindNone Kind = iota
	KindStreamTruncated
	KindChecksumMismatch
	KindStructure
	KindUnsupported
	KindAllocation
	KindDecompression
	KindWrite
	KindCannotOpen
	KindInvalidArgument
	KindUnknown
)

var kinds = []struct {
	sentinel error
	kind     Kind
}{
	{ErrStreamTruncated, KindStreamTruncated},
	{ErrChecksumMismatch, KindChecksumMismatch},
	{ErrStructure, KindStructure},
	{ErrUnsupported, KindUnsupported},
	{ErrAllocation, KindAllocation},
	{ErrDecompression, KindDecompression},
	{ErrWrite, KindWrite},
	{ErrCannotOpen, KindCannotOpen},
	{ErrInvalidArgument, KindInvalidArgument},
}

// KindOf reports the category of err. A nil error is KindNone and an error
// outside the taxonomy is KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindUnknown
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindStreamTruncated:
		return "stream truncated"
	case KindChecksumMismatch:
		return "checksum mismatch"
	case KindStructure:
		return "structural violation"
	case KindUnsupported:
		return "unsupported feature"
	case KindAllocation:
		return "allocation failure"
	case KindDecompression:
		return "decompression failure"
	case KindWrite:
		return "write failure"
	case KindCannotOpen:
		return "cannot open file"
	case KindInvalidArgument:
		return "invalid argument"
	}
	return "unknown"
}

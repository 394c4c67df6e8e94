// Package chunk reads the length-prefixed, typed and checksummed records that
// make up a PNG stream.
package chunk

import (
	"fmt"

	"github.com/KuratZero/c-png-to-pnm/src/arena"
	"github.com/KuratZero/c-png-to-pnm/src/config"
	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/KuratZero/c-png-to-pnm/src/pngcrc"
	"github.com/KuratZero/c-png-to-pnm/src/pngerr"
)

// MaxLength is the largest chunk length PNG allows.
const MaxLength = 0x7fffffff

type Kind int

const (
	KindHeader Kind = iota
	KindImageData
	KindEnd
	KindPalette
	KindTransparency
	KindBackground
	KindOther
)

var knownTags = [...]struct {
	tag  [4]byte
	kind Kind
}{
	{[4]byte{'I', 'H', 'D', 'R'}, KindHeader},
	{[4]byte{'I', 'D', 'A', 'T'}, KindImageData},
	{[4]byte{'I', 'E', 'N', 'D'}, KindEnd},
	{[4]byte{'P', 'L', 'T', 'E'}, KindPalette},
	{[4]byte{'t', 'R', 'N', 'S'}, KindTransparency},
	{[4]byte{'b', 'K', 'G', 'D'}, KindBackground},
}

// Classify maps a chunk type to one of the known kinds, or KindOther.
func Classify(tag [4]byte) Kind {
	for _, known := range knownTags {
		if known.tag == tag {
			return known.kind
		}
	}
	return KindOther
}

// Tag returns the chunk type of a known kind.
func (k Kind) Tag() [4]byte {
	for _, known := range knownTags {
		if known.kind == k {
			return known.tag
		}
	}
	return [4]byte{'?', '?', '?', '?'}
}

// Critical reports whether a checksum mismatch on this kind is always fatal.
func (k Kind) Critical() bool {
	return k == KindHeader || k == KindImageData || k == KindEnd
}

func (k Kind) String() string {
	if k == KindOther {
		return "other"
	}
	tag := k.Tag()
	return string(tag[:])
}

type Chunk struct {
	Length uint32
	Tag    [4]byte
	Kind   Kind
	Data   []byte

	// CRC is the checksum stored in the stream; CRCValid reports whether it
	// matches the one computed over Tag and Data.
	CRC      uint32
	CRCValid bool
}

func (c *Chunk) Name() string {
	return fmt.Sprintf("%q", string(c.Tag[:]))
}

// ReadRaw reads one chunk without judging its checksum.
func (r *Reader) ReadRaw(table *pngcrc.Table, a *arena.Arena) (*Chunk, error) {
	length, err := r.ReadUint32("chunk length")
	if err != nil {
		return nil, err
	}
	tag, err := r.ReadTag()
	if err != nil {
		return nil, err
	}
	if length > MaxLength {
		return nil, oops.New(pngerr.ErrStructure, "chunk %q declares length %d, more than the allowed %d", string(tag[:]), length, MaxLength)
	}

	data, err := a.Scratch(fmt.Sprintf("chunk %q", string(tag[:])), uint64(length))
	if err != nil {
		return nil, err
	}
	if err := r.ReadFull(data, fmt.Sprintf("chunk %q data", string(tag[:]))); err != nil {
		return nil, err
	}
	stored, err := r.ReadUint32(fmt.Sprintf("chunk %q checksum", string(tag[:])))
	if err != nil {
		return nil, err
	}

	return &Chunk{
		Length:   length,
		Tag:      tag,
		Kind:     Classify(tag),
		Data:     data,
		CRC:      stored,
		CRCValid: table.Checksum(tag, data) == stored,
	}, nil
}

// ReadChunk reads one chunk and rejects it if its checksum is wrong. Under
// config.CRCCritical only header, image data and end chunks are checked.
func (r *Reader) ReadChunk(table *pngcrc.Table, policy config.CRCPolicy, a *arena.Arena) (*Chunk, error) {
	c, err := r.ReadRaw(table, a)
	if err != nil {
		return nil, err
	}
	if !c.CRCValid && (policy != config.CRCCritical || c.Kind.Critical()) {
		return nil, oops.New(pngerr.ErrChecksumMismatch, "chunk %s: stored checksum %08x does not match computed %08x",
			c.Name(), c.CRC, table.Checksum(c.Tag, c.Data))
	}
	return c, nil
}

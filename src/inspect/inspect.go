// Package inspect lists the chunks of a PNG stream without decoding it.
package inspect

import (
	"io"

	"github.com/KuratZero/c-png-to-pnm/src/arena"
	"github.com/KuratZero/c-png-to-pnm/src/chunk"
	"github.com/KuratZero/c-png-to-pnm/src/config"
	"github.com/KuratZero/c-png-to-pnm/src/container"
	"github.com/KuratZero/c-png-to-pnm/src/pngcrc"
	"github.com/KuratZero/c-png-to-pnm/src/utils"
)

type Options struct {
	MaxAllocBytes uint64
}

type Entry struct {
	// Offset of the chunk's length field from the start of the stream.
	Offset   int64
	Tag      string
	Kind     chunk.Kind
	Length   uint32
	CRC      uint32
	CRCValid bool
}

// Chunks reads r to the end and describes every chunk in it. Checksums are
// reported, not enforced. On a read error the entries seen so far are
// returned along with it.
func Chunks(r io.Reader, opts Options) ([]Entry, error) {
	cr := chunk.NewReader(r)
	if err := container.ReadSignature(cr); err != nil {
		return nil, err
	}

	table := pngcrc.NewTable()
	a := arena.New(utils.OrDefault(opts.MaxAllocBytes, config.Config.MaxAllocBytes))

	var entries []Entry
	for {
		eof, err := cr.AtEOF()
		if err != nil {
			return entries, err
		}
		if eof {
			return entries, nil
		}

		offset := cr.Offset()
		c, err := cr.ReadRaw(table, a)
		if err != nil {
			return entries, err
		}
		entries = append(entries, Entry{
			Offset:   offset,
			Tag:      string(c.Tag[:]),
			Kind:     c.Kind,
			Length:   c.Length,
			CRC:      c.CRC,
			CRCValid: c.CRCValid,
		})
	}
}

// Package pngcrc computes the chunk checksums of the PNG container: the
// reflected CRC-32 over the 4-byte chunk type followed by the chunk data.
package pngcrc

// Polynomial is the reflected form of the CRC-32 generator used by PNG.
const Polynomial = 0xEDB88320

// Table is the 256-entry lookup table for byte-at-a-time CRC updates. It is
// built once and never modified, so a single Table can be shared freely.
type Table [256]uint32

func NewTable() *Table {
	var t Table
	for n := range t {
		c := uint32(n)
		for k := 0; k < 8; k++ {
			if c&1 != 0 {
				c = Polynomial ^ (c >> 1)
			} else {
				c >>= 1
			}
		}
		t[n] = c
	}
	return &t
}

// Update feeds buf into a running CRC register. The register is neither
// pre- nor post-conditioned here.
func (t *Table) Update(crc uint32, buf []byte) uint32 {
	c := crc
	for _, b := range buf {
		c = t[byte(c)^b] ^ (c >> 8)
	}
	return c
}

// Checksum returns the CRC of tag followed by payload, as stored after
// every chunk.
func (t *Table) Checksum(tag [4]byte, payload []byte) uint32 {
	c := t.Update(0xFFFFFFFF, tag[:])
	c = t.Update(c, payload)
	return c ^ 0xFFFFFFFF
}

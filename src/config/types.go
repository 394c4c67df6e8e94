package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// CRCPolicy selects which chunks must carry a valid checksum.
type CRCPolicy string

const (
	// CRCAll rejects a checksum mismatch on any chunk.
	CRCAll CRCPolicy = "all"
	// CRCCritical only rejects mismatches on IHDR, IDAT and IEND.
	CRCCritical CRCPolicy = "critical"
)

func ParseCRCPolicy(s string) (CRCPolicy, error) {
	switch CRCPolicy(s) {
	case CRCAll, CRCCritical:
		return CRCPolicy(s), nil
	}
	return "", fmt.Errorf("unknown crc policy %q (want %q or %q)", s, CRCAll, CRCCritical)
}

type PNMConfig struct {
	LogLevel zerolog.Level

	// Upper bound on the bytes a single conversion may allocate for chunk
	// payloads, the inflated image and the output raster combined.
	MaxAllocBytes uint64

	CRC CRCPolicy
}

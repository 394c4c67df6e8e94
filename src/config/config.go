package config

import "github.com/rs/zerolog"

// Config holds the compiled-in defaults. Command-line flags override them.
var Config = PNMConfig{
	LogLevel:      zerolog.InfoLevel,
	MaxAllocBytes: 1 << 30,
	CRC:           CRCAll,
}

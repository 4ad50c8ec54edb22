package pix

import (
	"io"
	"log/slog"
)

// discardLogger is used when no logger is configured.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type encodeConfig struct {
	foldASCII bool
}

// EncodeOption represents a functional option for Encode.
type EncodeOption func(*encodeConfig)

// WithASCIIFolding strips accents from the merchant name, city and the
// free-text fields before they are truncated ("São Paulo" -> "Sao Paulo").
func WithASCIIFolding() EncodeOption {
	return func(c *encodeConfig) {
		c.foldASCII = true
	}
}

type decodeConfig struct {
	logger         *slog.Logger
	strictChecksum bool
}

// DecodeOption represents a functional option for Decode.
type DecodeOption func(*decodeConfig)

// WithLogger sets the logger used for debug output (unknown tags,
// checksum mismatches).
func WithLogger(logger *slog.Logger) DecodeOption {
	return func(c *decodeConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStrictChecksum makes Decode fail with ErrChecksumMismatch instead of
// returning a payload with ChecksumValid set to false.
func WithStrictChecksum() DecodeOption {
	return func(c *decodeConfig) {
		c.strictChecksum = true
	}
}

func newDecodeConfig(opts []DecodeOption) *decodeConfig {
	c := &decodeConfig{logger: discardLogger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

package format

import (
	"fmt"
	"math"
	"strings"
)

type (
	CompressionType uint8
	Scale           uint8
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.

	// ScaleUnified maps id to id/(size-1), the same formula the codec uses for normalization.
	ScaleUnified Scale = 0x1
	// ScaleLegacy maps id to id/size, kept for models trained with that convention.
	ScaleLegacy Scale = 0x2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c is one of the known compression types.
func (c CompressionType) IsValid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}

// MarshalText implements encoding.TextMarshaler so the type reads naturally in config files.
func (c CompressionType) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("invalid compression type: %d", uint8(c))
	}

	return []byte(strings.ToLower(c.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CompressionType) UnmarshalText(text []byte) error {
	parsed, err := ParseCompressionType(string(text))
	if err != nil {
		return err
	}
	*c = parsed

	return nil
}

// ParseCompressionType parses a case-insensitive compression name ("none", "zstd", "s2", "lz4").
func ParseCompressionType(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression type: %q", name)
	}
}

func (s Scale) String() string {
	switch s {
	case ScaleUnified:
		return "Unified"
	case ScaleLegacy:
		return "Legacy"
	default:
		return "Unknown"
	}
}

// Value converts an id into the continuous domain for a vocabulary of the given size.
//
// A vocabulary of a single symbol always maps to 0 under ScaleUnified.
func (s Scale) Value(id, size int) float64 {
	switch s {
	case ScaleLegacy:
		if size <= 0 {
			return 0
		}

		return float64(id) / float64(size)
	default:
		if size <= 1 {
			return 0
		}

		return float64(id) / float64(size-1)
	}
}

// ID converts a continuous value back into an id of a vocabulary of the given size
// using round-half-up: floor(x*divisor + 0.5).
//
// ok is false when the rounded id falls outside [0, size) or x is not a number; in that
// case the returned id is clamped into range (NaN maps to 0) so callers may choose to
// use it instead of failing.
func (s Scale) ID(x float64, size int) (id int, ok bool) {
	if size <= 0 {
		return 0, false
	}

	var divisor float64
	switch s {
	case ScaleLegacy:
		divisor = float64(size)
	default:
		divisor = float64(size - 1)
	}

	f := math.Floor(x*divisor + 0.5)
	switch {
	case math.IsNaN(f):
		return 0, false
	case f < 0:
		return 0, false
	case f >= float64(size):
		return size - 1, false
	}

	return int(f), true
}

// MarshalText implements encoding.TextMarshaler.
func (s Scale) MarshalText() ([]byte, error) {
	switch s {
	case ScaleUnified, ScaleLegacy:
		return []byte(strings.ToLower(s.String())), nil
	default:
		return nil, fmt.Errorf("invalid scale: %d", uint8(s))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scale) UnmarshalText(text []byte) error {
	parsed, err := ParseScale(string(text))
	if err != nil {
		return err
	}
	*s = parsed

	return nil
}

// ParseScale parses a case-insensitive scale name ("unified", "legacy"). Empty means unified.
func ParseScale(name string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "unified", "":
		return ScaleUnified, nil
	case "legacy":
		return ScaleLegacy, nil
	default:
		return 0, fmt.Errorf("unknown scale: %q", name)
	}
}

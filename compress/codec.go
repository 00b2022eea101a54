package compress

import (
	"fmt"
	"time"

	"github.com/arloliu/sarada/format"
)

// Compressor compresses a complete payload (a snapshot body or a model body).
type Compressor interface {
	// Compress returns the compressed form of data.
	//
	// The returned slice is owned by the caller and data is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores payloads produced by the matching Compressor.
//
// Implementations must be safe for concurrent use.
type Decompressor interface {
	// Decompress returns the original payload.
	//
	// It returns an error if data is corrupted or was written by a different algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes one compression run. The inspect command prints it.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the size of input data before compression
	OriginalSize int64

	// CompressedSize is the size of data after compression
	CompressedSize int64

	// CompressionTimeNs is the time taken to compress the data
	CompressionTimeNs int64
}

// CompressionRatio returns compressed size / original size, or 0 for empty input.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage.
func (s CompressionStats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

// Measure compresses data with the given algorithm and reports the resulting sizes.
//
// Parameters:
//   - compressionType: Algorithm to measure
//   - data: Uncompressed payload
//
// Returns:
//   - CompressionStats: Sizes and elapsed time
//   - error: Unsupported compression type or compression failure
func Measure(compressionType format.CompressionType, data []byte) (CompressionStats, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return CompressionStats{}, err
	}

	start := time.Now()
	compressed, err := codec.Compress(data)
	if err != nil {
		return CompressionStats{}, fmt.Errorf("%s compression failed: %w", compressionType, err)
	}

	return CompressionStats{
		Algorithm:         compressionType,
		OriginalSize:      int64(len(data)),
		CompressedSize:    int64(len(compressed)),
		CompressionTimeNs: time.Since(start).Nanoseconds(),
	}, nil
}

// CreateCodec creates a Codec for the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Compressor instance for the specified type
//   - error: Invalid compression type error
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the shared built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

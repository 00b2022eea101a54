package compress

// ZstdCompressor provides Zstandard compression, the default for corpus snapshots.
//
// Snapshots are written once per project and read on every fit and generate run, so
// the better ratio outweighs the slower compression. The implementation is selected
// at build time: valyala/gozstd when cgo is available, klauspost/compress otherwise.
// Both read and write standard zstd frames, so files move freely between builds.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

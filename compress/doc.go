// Package compress provides the compression codecs applied to sarada's binary files.
//
// Corpus snapshots and fitted model files are encoded first (uvarint ids, length
// prefixed symbol tables) and then compressed as a whole with one of:
//   - None: payload stored as-is
//   - Zstd: best ratio; default for snapshots
//   - S2: fast with a good ratio
//   - LZ4: fastest decompression
//
// The chosen algorithm is recorded in the file header, so readers pick the right
// Decompressor through GetCodec:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	compressed, err := codec.Compress(payload)
//
// All codecs returned by GetCodec are stateless values that are safe for concurrent use;
// the pure-Go Zstd and LZ4 implementations reuse pooled encoders internally.
package compress

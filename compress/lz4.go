package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// lz4MaxDecompressedSize bounds the adaptive decompression buffer.
const lz4MaxDecompressedSize = 128 * 1024 * 1024

// LZ4Compressor provides LZ4 block compression.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data into a single LZ4 block.
//
// Incompressible input makes the block encoder report zero bytes written; the data is
// then stored as a literal-only block so Decompress never has to special case it.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return literalBlock(data), nil
	}

	return dst[:n], nil
}

// Decompress decompresses an LZ4 block of unknown original size.
//
// The buffer starts at 4x the input and doubles on ErrInvalidSourceShortBuffer up to
// lz4MaxDecompressedSize.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bufSize := len(data) * 4
	for bufSize <= lz4MaxDecompressedSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < lz4MaxDecompressedSize {
				bufSize *= 2
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}

// literalBlock encodes data as one LZ4 sequence made only of literals.
func literalBlock(data []byte) []byte {
	n := len(data)
	out := make([]byte, 0, n+n/255+2)

	if n < 15 {
		out = append(out, byte(n<<4))
	} else {
		out = append(out, 0xF0)
		rest := n - 15
		for rest >= 255 {
			out = append(out, 255)
			rest -= 255
		}
		out = append(out, byte(rest))
	}

	return append(out, data...)
}

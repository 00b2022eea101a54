package markov

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/arloliu/sarada/compress"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
	"github.com/arloliu/sarada/internal/hash"
	"github.com/arloliu/sarada/internal/pool"
	"github.com/arloliu/sarada/internal/varint"
	"github.com/arloliu/sarada/snapshot"
)

// Encode serializes the model with the given payload compression.
//
// The file starts with a snapshot.Header carrying MagicModelV1, the output length as
// symbol count and the input length as window size. The payload holds the scale, the
// window count and every non-empty transition row as sparse (id, count) pairs, and is
// guarded by an xxHash64 of the uncompressed bytes.
func (m *Model) Encode(ct format.CompressionType) ([]byte, error) {
	if uint64(m.outputLength) > math.MaxUint32 || uint64(m.inputLength) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: model shape %dx%d too large", errs.ErrInvalidConfig, m.inputLength, m.outputLength)
	}

	m.mu.RLock()
	buf := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(buf)

	buf.B = append(buf.B, byte(m.scale))
	buf.WriteUvarint(m.windows)
	for from, row := range m.rows {
		if len(row) == 0 {
			continue
		}

		buf.WriteUvarint(uint64(from))     //nolint:gosec
		buf.WriteUvarint(uint64(len(row))) //nolint:gosec
		for _, to := range slices.Sorted(maps.Keys(row)) {
			buf.WriteUvarint(uint64(to)) //nolint:gosec
			buf.WriteUvarint(row[to])
		}
	}
	m.mu.RUnlock()

	compressor, err := compress.GetCodec(ct)
	if err != nil {
		return nil, err
	}
	payload, err := compressor.Compress(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress model: %w", err)
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: model payload of %d bytes is too large", errs.ErrInvalidConfig, len(payload))
	}

	h := snapshot.NewHeader(snapshot.MagicModelV1, ct)
	h.SymbolCount = uint32(m.outputLength) //nolint:gosec
	h.WindowSize = uint32(m.inputLength)   //nolint:gosec
	h.PayloadLength = uint32(len(payload)) //nolint:gosec
	h.Fingerprint = hash.Sum64(buf.Bytes())

	out := make([]byte, 0, snapshot.HeaderSize+len(payload))
	out = h.AppendTo(out)

	return append(out, payload...), nil
}

// MarshalBinary implements encoding.BinaryMarshaler with Zstd compression.
func (m *Model) MarshalBinary() ([]byte, error) {
	return m.Encode(format.CompressionZstd)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, replacing the whole model.
func (m *Model) UnmarshalBinary(data []byte) error {
	h, err := snapshot.ParseHeader(data)
	if err != nil {
		return err
	}
	if h.Magic != snapshot.MagicModelV1 {
		return fmt.Errorf("%w: 0x%04X is not a model file", errs.ErrInvalidMagicNumber, h.Magic)
	}
	if h.SymbolCount == 0 || h.WindowSize == 0 {
		return fmt.Errorf("%w: model shape %dx%d", errs.ErrInvalidPayload, h.WindowSize, h.SymbolCount)
	}

	body := data[snapshot.HeaderSize:]
	if uint64(len(body)) != uint64(h.PayloadLength) {
		return fmt.Errorf("%w: header declares %d payload bytes, have %d", errs.ErrInvalidPayload, h.PayloadLength, len(body))
	}

	decompressor, err := compress.GetCodec(h.CompressionType())
	if err != nil {
		return err
	}
	raw, err := decompressor.Decompress(body)
	if err != nil {
		return fmt.Errorf("%w: decompress: %v", errs.ErrInvalidPayload, err)
	}
	if hash.Sum64(raw) != h.Fingerprint {
		return fmt.Errorf("%w: model payload checksum", errs.ErrFingerprintMismatch)
	}

	if h.SymbolCount > MaxSymbols {
		return fmt.Errorf("%w: model of %d symbols exceeds %d", errs.ErrInvalidPayload, h.SymbolCount, MaxSymbols)
	}
	size := int(h.SymbolCount)

	if len(raw) < 1 {
		return fmt.Errorf("%w: empty model payload", errs.ErrInvalidPayload)
	}
	decoded, err := New(int(h.WindowSize), size, format.Scale(raw[0]))
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidPayload, err)
	}

	offset := 1
	windows, n, err := varint.ReadUvarint(raw[offset:])
	if err != nil {
		return err
	}
	offset += n
	decoded.windows = windows

	var total uint64
	for offset < len(raw) {
		from, n, err := varint.ReadInt(raw[offset:], size-1)
		if err != nil {
			return fmt.Errorf("row source: %w", err)
		}
		offset += n

		entries, n, err := varint.ReadInt(raw[offset:], size)
		if err != nil {
			return fmt.Errorf("row %d length: %w", from, err)
		}
		offset += n

		for range entries {
			to, n, err := varint.ReadInt(raw[offset:], size-1)
			if err != nil {
				return fmt.Errorf("row %d target: %w", from, err)
			}
			offset += n

			count, n, err := varint.ReadUvarint(raw[offset:])
			if err != nil {
				return fmt.Errorf("row %d count: %w", from, err)
			}
			offset += n

			if count == 0 {
				return fmt.Errorf("%w: row %d stores an empty transition", errs.ErrInvalidPayload, from)
			}
			decoded.add(from, to, count)
			total += count
		}
	}

	if total != windows {
		return fmt.Errorf("%w: transitions sum to %d, header declares %d windows", errs.ErrInvalidPayload, total, windows)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputLength = decoded.inputLength
	m.outputLength = decoded.outputLength
	m.scale = decoded.scale
	m.rows = decoded.rows
	m.rowTotals = decoded.rowTotals
	m.windows = decoded.windows

	return nil
}

// Load decodes a model and checks it against the shapes the caller expects.
//
// Returns:
//   - *Model: The decoded model
//   - error: Decoding errors, or ErrModelShapeMismatch when the stored shapes differ
func Load(data []byte, inputLength, outputLength int) (*Model, error) {
	m := &Model{}
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, err
	}

	if m.inputLength != inputLength || m.outputLength != outputLength {
		return nil, fmt.Errorf("%w: stored model is %dx%d, expected %dx%d",
			errs.ErrModelShapeMismatch, m.inputLength, m.outputLength, inputLength, outputLength)
	}

	return m, nil
}

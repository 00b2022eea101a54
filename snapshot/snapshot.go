package snapshot

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/arloliu/sarada/codec"
	"github.com/arloliu/sarada/compress"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/internal/pool"
	"github.com/arloliu/sarada/internal/varint"
)

// Snapshot is a decoded snapshot: the header and the rebuilt Codec.
type Snapshot[T comparable] struct {
	Header Header
	Codec  *codec.Codec[T]
}

// WindowSize returns the recorded window size, or 0 when none was recorded.
func (s *Snapshot[T]) WindowSize() int {
	return int(s.Header.WindowSize)
}

// Encode serializes the corpus and symbol table of c.
//
// Parameters:
//   - c: Codec to persist
//   - sc: Symbol table encoding for T
//   - opts: Optional compression, window size and byte order
//
// Returns:
//   - []byte: Header followed by the payload
//   - error: ErrInvalidConfig for bad options or oversized corpora, or a symbol encoding error
func Encode[T comparable](c *codec.Codec[T], sc SymbolCodec[T], opts ...Option) ([]byte, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	symbols := c.Symbols()
	corpus := c.Corpus()
	if uint64(len(symbols)) > math.MaxUint32 || uint64(len(corpus)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d symbols in %d sequences exceed the snapshot limits",
			errs.ErrInvalidConfig, len(symbols), len(corpus))
	}

	buf := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(buf)

	for id, s := range symbols {
		buf.B, err = sc.Append(buf.B, s)
		if err != nil {
			return nil, fmt.Errorf("symbol %d: %w", id, err)
		}
	}

	for _, seq := range corpus {
		buf.WriteUvarint(uint64(len(seq)))
		for _, s := range seq {
			id, err := c.ID(s)
			if err != nil {
				return nil, err
			}
			buf.WriteUvarint(uint64(id)) //nolint:gosec
		}
	}

	compressor, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}
	payload, err := compressor.Compress(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: payload of %d bytes is too large", errs.ErrInvalidConfig, len(payload))
	}

	h := NewHeader(MagicSnapshotV1, cfg.compression)
	h.SetBigEndian(cfg.bigEndian)
	h.SymbolCount = uint32(len(symbols))   //nolint:gosec
	h.SequenceCount = uint32(len(corpus))  //nolint:gosec
	h.WindowSize = uint32(cfg.windowSize)  //nolint:gosec
	h.PayloadLength = uint32(len(payload)) //nolint:gosec
	h.Fingerprint = c.Fingerprint()

	out := make([]byte, 0, HeaderSize+len(payload))
	out = h.AppendTo(out)
	out = append(out, payload...)

	cfg.logger.Debug("snapshot encoded",
		zap.Int("symbols", len(symbols)),
		zap.Int("sequences", len(corpus)),
		zap.Stringer("compression", cfg.compression),
		zap.Int("raw_bytes", buf.Len()),
		zap.Int("stored_bytes", len(payload)),
	)

	return out, nil
}

// Decode parses a snapshot and rebuilds its Codec.
//
// The rebuilt Codec must reproduce the stored symbol table and corpus fingerprint,
// otherwise Decode fails with ErrFingerprintMismatch.
//
// Parameters:
//   - data: Bytes produced by Encode
//   - sc: Symbol table encoding for T, the same one used by Encode
//   - opts: Optional codec options and logger
//
// Returns:
//   - *Snapshot[T]: The header and the rebuilt Codec
//   - error: Header errors, ErrInvalidPayload, ErrFingerprintMismatch, or codec.Build errors
func Decode[T comparable](data []byte, sc SymbolCodec[T], opts ...Option) (*Snapshot[T], error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if h.Magic != MagicSnapshotV1 {
		return nil, fmt.Errorf("%w: 0x%04X is not a snapshot", errs.ErrInvalidMagicNumber, h.Magic)
	}

	raw, err := readPayload(h, data[HeaderSize:])
	if err != nil {
		return nil, err
	}

	symbols, corpus, err := decodePayload(h, raw, sc)
	if err != nil {
		return nil, err
	}

	c, err := codec.Build(corpus, cfg.codecOptions...)
	if err != nil {
		return nil, err
	}

	if c.Size() != len(symbols) {
		return nil, fmt.Errorf("%w: corpus yields %d symbols, table holds %d",
			errs.ErrFingerprintMismatch, c.Size(), len(symbols))
	}
	for id, s := range c.Symbols() {
		if s != symbols[id] {
			return nil, fmt.Errorf("%w: id %d is %v in the table but %v in the corpus",
				errs.ErrFingerprintMismatch, id, symbols[id], s)
		}
	}
	if c.Fingerprint() != h.Fingerprint {
		return nil, fmt.Errorf("%w: stored 0x%016X, rebuilt 0x%016X",
			errs.ErrFingerprintMismatch, h.Fingerprint, c.Fingerprint())
	}

	cfg.logger.Debug("snapshot decoded",
		zap.Int("symbols", c.Size()),
		zap.Int("sequences", len(corpus)),
		zap.Uint64("fingerprint", h.Fingerprint),
	)

	return &Snapshot[T]{Header: h, Codec: c}, nil
}

// readPayload checks the stored payload length and decompresses the payload.
func readPayload(h Header, body []byte) ([]byte, error) {
	if uint64(len(body)) != uint64(h.PayloadLength) {
		return nil, fmt.Errorf("%w: header declares %d payload bytes, have %d",
			errs.ErrInvalidPayload, h.PayloadLength, len(body))
	}

	decompressor, err := compress.GetCodec(h.CompressionType())
	if err != nil {
		return nil, err
	}
	raw, err := decompressor.Decompress(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", errs.ErrInvalidPayload, err)
	}

	return raw, nil
}

func decodePayload[T comparable](h Header, raw []byte, sc SymbolCodec[T]) ([]T, [][]T, error) {
	if h.SymbolCount == 0 {
		return nil, nil, fmt.Errorf("%w: snapshot holds no symbols", errs.ErrInvalidPayload)
	}

	symbolCount := int(h.SymbolCount)
	symbols := make([]T, 0, min(symbolCount, len(raw)))
	offset := 0
	for id := range symbolCount {
		s, n, err := sc.Read(raw[offset:])
		if err != nil {
			return nil, nil, fmt.Errorf("symbol %d: %w", id, err)
		}
		if n <= 0 {
			return nil, nil, fmt.Errorf("%w: symbol %d consumed no bytes", errs.ErrInvalidPayload, id)
		}
		symbols = append(symbols, s)
		offset += n
	}

	sequenceCount := int(h.SequenceCount)
	corpus := make([][]T, 0, min(sequenceCount, len(raw)-offset))
	for i := range sequenceCount {
		length, n, err := varint.ReadInt(raw[offset:], len(raw)-offset)
		if err != nil {
			return nil, nil, fmt.Errorf("sequence %d length: %w", i, err)
		}
		offset += n

		seq := make([]T, length)
		for j := range seq {
			id, n, err := varint.ReadInt(raw[offset:], symbolCount-1)
			if err != nil {
				return nil, nil, fmt.Errorf("sequence %d position %d: %w", i, j, err)
			}
			offset += n
			seq[j] = symbols[id]
		}
		corpus = append(corpus, seq)
	}

	if offset != len(raw) {
		return nil, nil, fmt.Errorf("%w: %d trailing bytes after corpus", errs.ErrInvalidPayload, len(raw)-offset)
	}

	return symbols, corpus, nil
}

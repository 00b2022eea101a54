package symbol

import (
	"fmt"
	"math"

	"github.com/arloliu/sarada/endian"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/internal/varint"
)

// binaryFixedSize is the kind byte plus the float64 duration.
const binaryFixedSize = 1 + 8

// AppendBinary implements encoding.BinaryAppender.
//
// Layout: [kind:u8][duration:f64 little-endian][pitch:uvarint length + bytes].
func (s Symbol) AppendBinary(dst []byte) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return dst, err
	}

	engine := endian.GetLittleEndianEngine()
	dst = append(dst, byte(s.kind))
	dst = engine.AppendUint64(dst, math.Float64bits(s.duration))

	return varint.AppendString(dst, s.pitch), nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s Symbol) MarshalBinary() ([]byte, error) {
	return s.AppendBinary(nil)
}

// ReadBinary decodes one symbol from the start of src.
//
// Returns:
//   - Symbol: The decoded symbol
//   - int: Number of bytes consumed
//   - error: ErrInvalidPayload for truncated input, ErrInvalidSymbol for invalid content
func ReadBinary(src []byte) (Symbol, int, error) {
	if len(src) < binaryFixedSize {
		return Symbol{}, 0, fmt.Errorf("%w: symbol needs %d bytes, have %d", errs.ErrInvalidPayload, binaryFixedSize, len(src))
	}

	engine := endian.GetLittleEndianEngine()
	s := Symbol{
		kind:     Kind(src[0]),
		duration: canonicalDuration(math.Float64frombits(engine.Uint64(src[1:binaryFixedSize]))),
	}

	pitch, n, err := varint.ReadString(src[binaryFixedSize:])
	if err != nil {
		return Symbol{}, 0, err
	}
	s.pitch = pitch

	if err := s.Validate(); err != nil {
		return Symbol{}, 0, err
	}

	return s, binaryFixedSize + n, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Symbol) UnmarshalBinary(data []byte) error {
	parsed, n, err := ReadBinary(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("%w: %d trailing bytes after symbol", errs.ErrInvalidPayload, len(data)-n)
	}
	*s = parsed

	return nil
}

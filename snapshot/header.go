package snapshot

import (
	"fmt"

	"github.com/arloliu/sarada/endian"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
)

const (
	HeaderSize = 32 // fixed header size in bytes

	MagicSnapshotV1 = 0x5D51 // MagicSnapshotV1 identifies a corpus snapshot.
	MagicModelV1    = 0x5D52 // MagicModelV1 identifies a fitted model file.

	Version = 1 // current format version

	VersionMask   = 0x0F // Mask for format version (bits 0-3)
	BigEndianMask = 0x10 // Mask for endianness bit (bit 4), 0=little, 1=big
	ReservedMask  = 0xE0 // Mask for reserved bits (bits 5-7), must be 0
)

// Header is the fixed-size section at the start of snapshot and model files.
//
// The magic number is always little-endian; every later field uses the byte order
// selected by the endianness flag.
type Header struct {
	// Magic identifies the file kind. byte offset 0-1
	Magic uint16
	// Flags packs the format version and the endianness bit. byte offset 2
	Flags uint8
	// Compression is the format.CompressionType of the payload. byte offset 3
	Compression uint8
	// SymbolCount is the number of distinct symbols (the codec size). byte offset 4-7
	SymbolCount uint32
	// SequenceCount is the number of corpus sequences. byte offset 8-11
	SequenceCount uint32
	// WindowSize is the window size training used, 0 when not recorded. byte offset 12-15
	WindowSize uint32
	// Fingerprint is the xxHash64 digest guarding the payload. byte offset 16-23
	Fingerprint uint64
	// PayloadLength is the stored (possibly compressed) payload size. byte offset 24-27
	PayloadLength uint32
	// Reserved must be 0. byte offset 28-31
	Reserved uint32
}

// NewHeader creates a little-endian, current-version header with the given magic.
func NewHeader(magic uint16, compression format.CompressionType) *Header {
	return &Header{
		Magic:       magic,
		Flags:       Version,
		Compression: uint8(compression),
	}
}

// Version returns the format version stored in the flags.
func (h *Header) Version() uint8 {
	return h.Flags & VersionMask
}

// IsBigEndian reports whether the fields after the magic number are big-endian.
func (h *Header) IsBigEndian() bool {
	return h.Flags&BigEndianMask != 0
}

// SetBigEndian selects the byte order of the fields after the magic number.
func (h *Header) SetBigEndian(big bool) {
	if big {
		h.Flags |= BigEndianMask
	} else {
		h.Flags &^= BigEndianMask
	}
}

// Engine returns the byte order engine selected by the flags.
func (h *Header) Engine() endian.EndianEngine {
	return endian.EngineFor(h.IsBigEndian())
}

// CompressionType returns the payload compression.
func (h *Header) CompressionType() format.CompressionType {
	return format.CompressionType(h.Compression)
}

// Validate checks the magic number, version, reserved bits and compression type.
func (h *Header) Validate() error {
	if h.Magic != MagicSnapshotV1 && h.Magic != MagicModelV1 {
		return fmt.Errorf("%w: 0x%04X", errs.ErrInvalidMagicNumber, h.Magic)
	}
	if h.Version() != Version {
		return fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidHeaderFlags, h.Version())
	}
	if h.Flags&ReservedMask != 0 || h.Reserved != 0 {
		return fmt.Errorf("%w: reserved bits are set", errs.ErrInvalidHeaderFlags)
	}
	if !h.CompressionType().IsValid() {
		return fmt.Errorf("%w: unknown compression %d", errs.ErrInvalidHeaderFlags, h.Compression)
	}

	return nil
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly HeaderSize bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not HeaderSize bytes, or validation errors
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidHeaderSize, len(data), HeaderSize)
	}

	h.Magic = endian.GetLittleEndianEngine().Uint16(data[0:2])
	h.Flags = data[2]
	h.Compression = data[3]

	engine := h.Engine()
	h.SymbolCount = engine.Uint32(data[4:8])
	h.SequenceCount = engine.Uint32(data[8:12])
	h.WindowSize = engine.Uint32(data[12:16])
	h.Fingerprint = engine.Uint64(data[16:24])
	h.PayloadLength = engine.Uint32(data[24:28])
	h.Reserved = engine.Uint32(data[28:32])

	return h.Validate()
}

// Bytes serializes the header into a new HeaderSize byte slice.
func (h *Header) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, HeaderSize))
}

// AppendTo appends the serialized header to dst.
func (h *Header) AppendTo(dst []byte) []byte {
	engine := h.Engine()

	dst = endian.GetLittleEndianEngine().AppendUint16(dst, h.Magic)
	dst = append(dst, h.Flags, h.Compression)
	dst = engine.AppendUint32(dst, h.SymbolCount)
	dst = engine.AppendUint32(dst, h.SequenceCount)
	dst = engine.AppendUint32(dst, h.WindowSize)
	dst = engine.AppendUint64(dst, h.Fingerprint)
	dst = engine.AppendUint32(dst, h.PayloadLength)

	return engine.AppendUint32(dst, h.Reserved)
}

// ParseHeader parses a Header from the start of data.
//
// Parameters:
//   - data: Byte slice starting with a header (must be at least HeaderSize bytes)
//
// Returns:
//   - Header: Parsed header struct
//   - error: ErrInvalidHeaderSize, ErrInvalidMagicNumber or ErrInvalidHeaderFlags
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: got %d bytes, want at least %d", errs.ErrInvalidHeaderSize, len(data), HeaderSize)
	}

	h := Header{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}

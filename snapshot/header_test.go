package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/sarada/endian"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
)

func sampleHeader() *Header {
	h := NewHeader(MagicSnapshotV1, format.CompressionS2)
	h.SymbolCount = 42
	h.SequenceCount = 7
	h.WindowSize = 40
	h.Fingerprint = 0x0123456789ABCDEF
	h.PayloadLength = 1024

	return h
}

func TestNewHeader(t *testing.T) {
	h := NewHeader(MagicModelV1, format.CompressionZstd)

	require.Equal(t, uint16(MagicModelV1), h.Magic)
	require.Equal(t, uint8(Version), h.Version())
	require.False(t, h.IsBigEndian())
	require.Equal(t, format.CompressionZstd, h.CompressionType())
	require.NoError(t, h.Validate())
}

func TestHeader_RoundTrip(t *testing.T) {
	for _, big := range []bool{false, true} {
		original := sampleHeader()
		original.SetBigEndian(big)

		data := original.Bytes()
		require.Len(t, data, HeaderSize)

		parsed := &Header{}
		require.NoError(t, parsed.Parse(data))
		require.Equal(t, *original, *parsed)
		require.Equal(t, big, endian.IsBigEndian(parsed.Engine()))
	}
}

func TestHeader_MagicIsLittleEndian(t *testing.T) {
	h := sampleHeader()
	h.SetBigEndian(true)
	data := h.Bytes()

	require.Equal(t, byte(MagicSnapshotV1&0xFF), data[0])
	require.Equal(t, byte(MagicSnapshotV1>>8), data[1])
	require.Equal(t, []byte{0, 0, 0, 42}, data[4:8])

	h.SetBigEndian(false)
	require.Equal(t, []byte{42, 0, 0, 0}, h.Bytes()[4:8])
}

func TestHeader_ParseErrors(t *testing.T) {
	t.Run("Invalid size", func(t *testing.T) {
		h := &Header{}
		require.ErrorIs(t, h.Parse([]byte{1, 2, 3}), errs.ErrInvalidHeaderSize)

		_, err := ParseHeader(make([]byte, HeaderSize-1))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("Invalid magic number", func(t *testing.T) {
		data := sampleHeader().Bytes()
		data[0], data[1] = 0xFF, 0xFF

		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
	})

	t.Run("Unsupported version", func(t *testing.T) {
		data := sampleHeader().Bytes()
		data[2] = (data[2] &^ VersionMask) | 0x2

		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})

	t.Run("Reserved bits", func(t *testing.T) {
		data := sampleHeader().Bytes()
		data[2] |= 0x80

		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)

		data = sampleHeader().Bytes()
		data[31] = 1
		_, err = ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})

	t.Run("Unknown compression", func(t *testing.T) {
		data := sampleHeader().Bytes()
		data[3] = 0x0F

		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})
}

func TestParseHeader_IgnoresTrailingData(t *testing.T) {
	data := append(sampleHeader().Bytes(), 1, 2, 3)

	h, err := ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, uint32(42), h.SymbolCount)
}

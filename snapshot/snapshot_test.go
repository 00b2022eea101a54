package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/sarada/codec"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
	"github.com/arloliu/sarada/symbol"
)

var allCompressions = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

func stringCodec(t *testing.T) *codec.Codec[string] {
	t.Helper()

	c, err := codec.Build([][]string{
		{"C4", "E4", "G4", "C5", "G4", "E4"},
		{},
		{"D4", "F4", "A4", "C4"},
	})
	require.NoError(t, err)

	return c
}

func musicalCodec(t *testing.T) *codec.Codec[symbol.Symbol] {
	t.Helper()

	c, err := codec.Build([][]symbol.Symbol{
		{symbol.Note("C4", 1), symbol.Chord([]string{"E4", "G4"}, 0.5), symbol.Rest(1), symbol.Note("C4", 1)},
		{symbol.Note("A3", 2), symbol.Rest(0.5)},
	})
	require.NoError(t, err)

	return c
}

func TestEncodeDecode_Strings(t *testing.T) {
	c := stringCodec(t)

	for _, ct := range allCompressions {
		t.Run(ct.String(), func(t *testing.T) {
			data, err := Encode(c, StringSymbols{}, WithCompression(ct), WithWindowSize(3))
			require.NoError(t, err)

			snap, err := Decode(data, StringSymbols{})
			require.NoError(t, err)

			require.Equal(t, ct, snap.Header.CompressionType())
			require.Equal(t, 3, snap.WindowSize())
			require.Equal(t, c.Symbols(), snap.Codec.Symbols())
			require.Equal(t, c.Corpus(), snap.Codec.Corpus())
			require.Equal(t, c.Fingerprint(), snap.Codec.Fingerprint())
		})
	}
}

func TestEncodeDecode_Musical(t *testing.T) {
	c := musicalCodec(t)

	data, err := Encode(c, MusicalSymbols{}, WithBigEndian())
	require.NoError(t, err)

	snap, err := Decode(data, MusicalSymbols{})
	require.NoError(t, err)
	require.True(t, snap.Header.IsBigEndian())
	require.Equal(t, 0, snap.WindowSize())
	require.Equal(t, format.CompressionZstd, snap.Header.CompressionType())

	for _, s := range c.Symbols() {
		want, err := c.ID(s)
		require.NoError(t, err)
		got, err := snap.Codec.ID(s)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestEncodeDecode_NegativeZeroDuration(t *testing.T) {
	seq, err := symbol.ParseSequence("C4 C4:-0 E4")
	require.NoError(t, err)

	c, err := codec.Build([][]symbol.Symbol{seq})
	require.NoError(t, err)
	require.Equal(t, 2, c.Size())

	data, err := Encode(c, MusicalSymbols{})
	require.NoError(t, err)

	snap, err := Decode(data, MusicalSymbols{})
	require.NoError(t, err)
	require.Equal(t, c.Fingerprint(), snap.Codec.Fingerprint())
	require.Equal(t, c.Corpus(), snap.Codec.Corpus())
}

func TestEncode_Options(t *testing.T) {
	c := stringCodec(t)

	_, err := Encode(c, StringSymbols{}, WithCompression(format.CompressionType(0)))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = Encode(c, StringSymbols{}, WithWindowSize(-1))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = Encode(c, StringSymbols{}, WithLogger(nil))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestEncode_InvalidSymbol(t *testing.T) {
	c, err := codec.Build([][]symbol.Symbol{{symbol.Note("C4", 1), {}}})
	require.NoError(t, err)

	_, err = Encode(c, MusicalSymbols{})
	require.ErrorIs(t, err, errs.ErrInvalidSymbol)
}

func TestDecode_Corruption(t *testing.T) {
	c := stringCodec(t)
	data, err := Encode(c, StringSymbols{}, WithCompression(format.CompressionNone))
	require.NoError(t, err)

	t.Run("Short header", func(t *testing.T) {
		_, err := Decode(data[:10], StringSymbols{})
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("Truncated payload", func(t *testing.T) {
		_, err := Decode(data[:len(data)-3], StringSymbols{})
		require.ErrorIs(t, err, errs.ErrInvalidPayload)
	})

	t.Run("Trailing bytes", func(t *testing.T) {
		_, err := Decode(append(append([]byte(nil), data...), 0), StringSymbols{})
		require.ErrorIs(t, err, errs.ErrInvalidPayload)
	})

	t.Run("Model magic", func(t *testing.T) {
		corrupted := append([]byte(nil), data...)
		corrupted[0] = byte(MagicModelV1 & 0xFF)

		_, err := Decode(corrupted, StringSymbols{})
		require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
	})

	t.Run("Fingerprint", func(t *testing.T) {
		corrupted := append([]byte(nil), data...)
		corrupted[16] ^= 0xFF

		_, err := Decode(corrupted, StringSymbols{})
		require.ErrorIs(t, err, errs.ErrFingerprintMismatch)
	})

	t.Run("Symbol table", func(t *testing.T) {
		// Swap the first two table entries ("C4" and "E4" have the same length).
		corrupted := append([]byte(nil), data...)
		first := HeaderSize
		second := HeaderSize + 3
		copy(corrupted[first:first+3], data[second:second+3])
		copy(corrupted[second:second+3], data[first:first+3])

		_, err := Decode(corrupted, StringSymbols{})
		require.ErrorIs(t, err, errs.ErrFingerprintMismatch)
	})

	t.Run("Id out of range", func(t *testing.T) {
		corrupted := append([]byte(nil), data...)
		// The last byte is the id of the final symbol of the final sequence.
		corrupted[len(corrupted)-1] = 0x7F

		_, err := Decode(corrupted, StringSymbols{})
		require.ErrorIs(t, err, errs.ErrInvalidPayload)
	})

	t.Run("Corrupted compressed payload", func(t *testing.T) {
		zdata, err := Encode(c, StringSymbols{}, WithCompression(format.CompressionZstd))
		require.NoError(t, err)
		for i := HeaderSize; i < len(zdata); i++ {
			zdata[i] ^= 0xA5
		}

		_, err = Decode(zdata, StringSymbols{})
		require.Error(t, err)
	})
}

func TestDecode_CustomFingerprinter(t *testing.T) {
	upper := codec.WithFingerprinter(func(dst []byte, s string) []byte {
		return append(append(dst, '#'), s...)
	})

	c, err := codec.Build([][]string{{"x", "y", "z"}}, upper)
	require.NoError(t, err)

	data, err := Encode(c, StringSymbols{})
	require.NoError(t, err)

	_, err = Decode(data, StringSymbols{})
	require.ErrorIs(t, err, errs.ErrFingerprintMismatch)

	snap, err := Decode(data, StringSymbols{}, WithCodecOptions(upper))
	require.NoError(t, err)
	require.Equal(t, c.Fingerprint(), snap.Codec.Fingerprint())
}

func BenchmarkEncode(b *testing.B) {
	corpus := make([][]int, 32)
	for i := range corpus {
		corpus[i] = make([]int, 512)
		for j := range corpus[i] {
			corpus[i][j] = (i*13 + j*j) % 128
		}
	}
	strs := make([][]string, len(corpus))
	for i, seq := range corpus {
		strs[i] = make([]string, len(seq))
		for j, v := range seq {
			strs[i][j] = symbol.Note("C4", float64(v)).String()
		}
	}
	c, err := codec.Build(strs)
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		_, _ = Encode(c, StringSymbols{})
	}
}

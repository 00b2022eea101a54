package symbol

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/sarada/errs"
)

func TestBinary_RoundTrip(t *testing.T) {
	symbols := []Symbol{
		Note("C4", 1),
		Note("F#5", 0),
		Chord([]string{"C4", "E-4", "G4"}, 0.5),
		Rest(3),
	}

	var buf []byte
	for _, s := range symbols {
		var err error
		buf, err = s.AppendBinary(buf)
		require.NoError(t, err)
	}

	offset := 0
	for _, want := range symbols {
		got, n, err := ReadBinary(buf[offset:])
		require.NoError(t, err)
		require.Equal(t, want, got)
		offset += n
	}
	require.Equal(t, len(buf), offset)
}

func TestBinary_Marshaler(t *testing.T) {
	s := Note("A4", 0.25)
	data, err := s.MarshalBinary()
	require.NoError(t, err)

	var back Symbol
	require.NoError(t, back.UnmarshalBinary(data))
	require.Equal(t, s, back)

	err = back.UnmarshalBinary(append(data, 0x00))
	require.ErrorIs(t, err, errs.ErrInvalidPayload)
}

func TestBinary_Invalid(t *testing.T) {
	_, err := Symbol{}.AppendBinary(nil)
	require.ErrorIs(t, err, errs.ErrInvalidSymbol)

	_, _, err = ReadBinary([]byte{byte(KindNote), 0, 0})
	require.ErrorIs(t, err, errs.ErrInvalidPayload)

	data, err := Note("C4", 1).MarshalBinary()
	require.NoError(t, err)

	_, _, err = ReadBinary(data[:len(data)-1])
	require.ErrorIs(t, err, errs.ErrInvalidPayload)

	corrupted := append([]byte(nil), data...)
	corrupted[0] = 0x7F
	_, _, err = ReadBinary(corrupted)
	require.ErrorIs(t, err, errs.ErrInvalidSymbol)
}

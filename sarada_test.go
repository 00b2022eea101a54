package sarada

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
	"github.com/arloliu/sarada/generate"
	"github.com/arloliu/sarada/snapshot"
	"github.com/arloliu/sarada/symbol"
)

var tokens = [][]string{
	{"C4", "D4", "E4", "C4", "D4", "E4"},
	{"E4", "G4", "C4"},
}

func TestNewCodec(t *testing.T) {
	c, err := NewCodec(tokens)
	require.NoError(t, err)
	require.Equal(t, []string{"C4", "D4", "E4", "G4"}, c.Symbols())

	_, err = NewCodec(nil)
	require.ErrorIs(t, err, errs.ErrEmptyDataset)
}

func TestTrainAndGenerate(t *testing.T) {
	c, err := NewCodec(tokens)
	require.NoError(t, err)

	model, err := NewModel(c, 2)
	require.NoError(t, err)
	require.Equal(t, 2, model.InputLength())
	require.Equal(t, 4, model.OutputLength())

	n, err := Train(model, c, 2, 3)
	require.NoError(t, err)
	require.Equal(t, 15, n)
	require.Equal(t, uint64(15), model.Windows())

	seq, err := Generate(context.Background(), model, c, 8, generate.WithWindowSize(2), generate.WithSeed(1))
	require.NoError(t, err)
	require.Len(t, seq, 8)
	for _, s := range seq {
		_, err := c.ID(s)
		require.NoError(t, err)
	}

	again, err := Generate(context.Background(), model, c, 8, generate.WithWindowSize(2), generate.WithSeed(1))
	require.NoError(t, err)
	require.Equal(t, seq, again)
}

func TestTrain_EpochsScaleCounts(t *testing.T) {
	c, err := NewCodec(tokens)
	require.NoError(t, err)

	once, err := NewModel(c, 2)
	require.NoError(t, err)
	_, err = Train(once, c, 2, 1)
	require.NoError(t, err)

	thrice, err := NewModel(c, 2)
	require.NoError(t, err)
	_, err = Train(thrice, c, 2, 3)
	require.NoError(t, err)

	for from := range c.Size() {
		for to := range c.Size() {
			require.Equal(t, 3*once.Transition(from, to), thrice.Transition(from, to))
		}
	}

	window := []float64{0, 0}
	sharp, err := thrice.Predict(context.Background(), window)
	require.NoError(t, err)
	soft, err := once.Predict(context.Background(), window)
	require.NoError(t, err)
	// C4 is only ever followed by D4.
	d4, err := c.ID("D4")
	require.NoError(t, err)
	require.Greater(t, sharp[d4], soft[d4])
}

func TestTrain_Errors(t *testing.T) {
	c, err := NewCodec(tokens)
	require.NoError(t, err)
	model, err := NewModel(c, 2)
	require.NoError(t, err)

	_, err = Train(model, c, 2, 0)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = Train(model, c, 0, 1)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestSnapshotRoundTrip(t *testing.T) {
	c, err := NewMusicCodec([][]symbol.Symbol{
		{symbol.Note("C4", 1), symbol.Rest(0.5), symbol.Chord([]string{"C4", "E4", "G4"}, 2)},
		{symbol.Note("C4", 1)},
	})
	require.NoError(t, err)

	data, err := EncodeSnapshot(c, snapshot.WithCompression(format.CompressionS2), snapshot.WithWindowSize(3))
	require.NoError(t, err)

	snap, err := DecodeSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, 3, snap.WindowSize())
	require.Equal(t, format.CompressionS2, snap.Header.CompressionType())
	require.Equal(t, c.Symbols(), snap.Codec.Symbols())
	require.Equal(t, c.Fingerprint(), snap.Codec.Fingerprint())
}

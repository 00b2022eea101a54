// Package sarada learns the sequential structure of symbol sequences and generates new
// sequences in the same style.
//
// A corpus of sequences is turned into a Codec, which assigns every distinct symbol a
// dense id and maps ids onto [0, 1]. The Codec slides a window over every sequence to
// produce training pairs for a model, and the generate package drives a fitted model in
// an autoregressive loop to produce new values that the Codec decodes back into symbols.
//
// # Basic Usage
//
// Fitting a model on a small corpus of note names:
//
//	import "github.com/arloliu/sarada"
//
//	c, _ := sarada.NewCodec([][]string{
//	    {"C4", "D4", "E4", "C4", "D4", "E4"},
//	    {"E4", "G4", "C4"},
//	})
//
//	model, _ := sarada.NewModel(c, 2)
//	_, _ = sarada.Train(model, c, 2, 10)
//
// Generating a new sequence:
//
//	seq, _ := sarada.Generate(ctx, model, c, 16, generate.WithWindowSize(2), generate.WithSeed(1))
//	fmt.Println(seq)
//
// Persisting a musical corpus:
//
//	data, _ := sarada.EncodeSnapshot(c, snapshot.WithWindowSize(40))
//	snap, _ := sarada.DecodeSnapshot(data)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the codec, markov, generate
// and snapshot packages for the most common use cases. For fine-grained control, use those
// packages directly. The project package manages a model directory on disk and backs the
// sarada command.
package sarada

import (
	"context"
	"fmt"

	"github.com/arloliu/sarada/codec"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
	"github.com/arloliu/sarada/generate"
	"github.com/arloliu/sarada/markov"
	"github.com/arloliu/sarada/snapshot"
	"github.com/arloliu/sarada/symbol"
)

// NewCodec builds a Codec over a corpus of string tokens.
//
// Parameters:
//   - corpus: Sequences of tokens, in corpus order
//   - opts: Optional configuration (see codec.Option)
//
// Returns:
//   - *codec.Codec[string]: The built codec
//   - error: ErrEmptyDataset when the corpus holds no tokens
func NewCodec(corpus [][]string, opts ...codec.Option) (*codec.Codec[string], error) {
	return codec.Build(corpus, opts...)
}

// NewMusicCodec builds a Codec over a corpus of musical symbols.
//
// Example:
//
//	seqs, _ := corpus.Parse(file)
//	c, err := sarada.NewMusicCodec(seqs)
func NewMusicCodec(corpus [][]symbol.Symbol, opts ...codec.Option) (*codec.Codec[symbol.Symbol], error) {
	return codec.Build(corpus, opts...)
}

// NewModel creates an empty transition model shaped for c and the given window size.
//
// The model predicts on the unified scale, the same one Codec.Normalize uses.
func NewModel[T comparable](c *codec.Codec[T], windowSize int) (*markov.Model, error) {
	return markov.New(windowSize, c.Size(), format.ScaleUnified)
}

// Train fits model on every window of c for the given number of epochs.
//
// Each epoch adds every window to the transition counts again, so counts scale with
// epochs and the add-one smoothing of unseen transitions weakens accordingly.
//
// Parameters:
//   - model: Model to fit, with input length windowSize
//   - c: Codec that supplies the training windows
//   - windowSize: Number of symbols per input window
//   - epochs: Number of passes over the windows
//
// Returns:
//   - int: Total number of windows the model consumed
//   - error: ErrInvalidConfig for a non-positive epoch count or window size
func Train[T comparable](model *markov.Model, c *codec.Codec[T], windowSize, epochs int) (int, error) {
	if epochs <= 0 {
		return 0, fmt.Errorf("%w: epochs %d must be positive", errs.ErrInvalidConfig, epochs)
	}

	windows, err := c.Windows(windowSize)
	if err != nil {
		return 0, err
	}

	total := 0
	for range epochs {
		n, err := model.Fit(windows)
		if err != nil {
			return total, err
		}
		total += n
	}

	return total, nil
}

// Generate runs the generation loop and decodes the result back into symbols.
//
// It is shorthand for generate.GenerateSymbols. The window size option is required.
func Generate[T comparable](ctx context.Context, model generate.Model, c *codec.Codec[T], length int, opts ...generate.Option) ([]T, error) {
	return generate.GenerateSymbols(ctx, model, c, length, opts...)
}

// EncodeSnapshot serializes a musical corpus codec into a snapshot.
//
// Example:
//
//	data, err := sarada.EncodeSnapshot(c,
//	    snapshot.WithCompression(format.CompressionS2),
//	    snapshot.WithWindowSize(40),
//	)
func EncodeSnapshot(c *codec.Codec[symbol.Symbol], opts ...snapshot.Option) ([]byte, error) {
	return snapshot.Encode(c, snapshot.MusicalSymbols{}, opts...)
}

// DecodeSnapshot restores a musical corpus codec from a snapshot, verifying its fingerprint.
func DecodeSnapshot(data []byte, opts ...snapshot.Option) (*snapshot.Snapshot[symbol.Symbol], error) {
	return snapshot.Decode(data, snapshot.MusicalSymbols{}, opts...)
}

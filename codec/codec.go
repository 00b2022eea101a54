package codec

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
	"github.com/arloliu/sarada/internal/options"
)

// Codec maps the symbols of a corpus to dense ids and their numeric forms.
//
// A Codec is immutable after Build and safe for concurrent use.
type Codec[T comparable] struct {
	ids         map[T]int
	symbols     []T
	corpus      [][]T
	fingerprint uint64
	logger      *zap.Logger
}

// Build creates a Codec from a corpus.
//
// Ids are assigned in first-occurrence order. The corpus is copied, so later changes
// to the caller's slices do not affect the Codec.
//
// Parameters:
//   - corpus: Sequences of symbols; individual sequences may be empty
//   - opts: Optional configuration (logger, fingerprinter)
//
// Returns:
//   - *Codec[T]: The built codec
//   - error: ErrEmptyDataset when the corpus holds no symbols, ErrInvalidConfig for bad options
func Build[T comparable](corpus [][]T, opts ...Option) (*Codec[T], error) {
	cfg := &Config{logger: zap.NewNop()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	appendSymbol := defaultFingerprinter[T]()
	if cfg.fingerprinter != nil {
		fn, ok := cfg.fingerprinter.(func([]byte, T) []byte)
		if !ok {
			var zero T
			return nil, fmt.Errorf("%w: fingerprinter %T does not accept symbols of type %T",
				errs.ErrInvalidConfig, cfg.fingerprinter, zero)
		}
		appendSymbol = fn
	}

	c := &Codec[T]{
		ids:    make(map[T]int),
		corpus: make([][]T, len(corpus)),
		logger: cfg.logger,
	}

	total := 0
	for i, seq := range corpus {
		c.corpus[i] = append([]T(nil), seq...)
		for _, s := range seq {
			if _, seen := c.ids[s]; !seen {
				c.ids[s] = len(c.symbols)
				c.symbols = append(c.symbols, s)
			}
		}
		total += len(seq)
	}

	if total == 0 {
		return nil, fmt.Errorf("%w: %d sequences, 0 symbols", errs.ErrEmptyDataset, len(corpus))
	}

	c.fingerprint = fingerprintCorpus(c.corpus, appendSymbol)

	c.logger.Debug("codec built",
		zap.Int("size", len(c.symbols)),
		zap.Int("sequences", len(c.corpus)),
		zap.Int("symbols", total),
		zap.Uint64("fingerprint", c.fingerprint),
	)

	return c, nil
}

// Size returns the number of distinct symbols.
func (c *Codec[T]) Size() int {
	return len(c.symbols)
}

// ID returns the id of s, or ErrUnknownSymbol.
func (c *Codec[T]) ID(s T) (int, error) {
	id, ok := c.ids[s]
	if !ok {
		return 0, fmt.Errorf("%w: %v", errs.ErrUnknownSymbol, s)
	}

	return id, nil
}

// Symbol returns the symbol holding id, or ErrDecode when id is out of range.
func (c *Codec[T]) Symbol(id int) (T, error) {
	if id < 0 || id >= len(c.symbols) {
		var zero T
		return zero, fmt.Errorf("%w: id %d outside [0, %d)", errs.ErrDecode, id, len(c.symbols))
	}

	return c.symbols[id], nil
}

// Symbols returns a copy of the id-ordered symbol table.
func (c *Codec[T]) Symbols() []T {
	return append([]T(nil), c.symbols...)
}

// Corpus returns a copy of the corpus the codec was built from.
func (c *Codec[T]) Corpus() [][]T {
	out := make([][]T, len(c.corpus))
	for i, seq := range c.corpus {
		out[i] = append([]T(nil), seq...)
	}

	return out
}

// Fingerprint returns the xxHash64 digest of the corpus traversal.
//
// Two codecs with equal fingerprints were built from the same sequences in the same
// order and therefore assign the same ids.
func (c *Codec[T]) Fingerprint() uint64 {
	return c.fingerprint
}

// Normalize maps s to id/(Size()-1), or 0 when the vocabulary holds a single symbol.
func (c *Codec[T]) Normalize(s T) (float64, error) {
	id, err := c.ID(s)
	if err != nil {
		return 0, err
	}

	return format.ScaleUnified.Value(id, len(c.symbols)), nil
}

// Denormalize maps x back to a symbol using id = floor(x*(Size()-1) + 0.5).
//
// Values that round outside the vocabulary fail with ErrDecode; see DenormalizeClamped
// for the lenient variant.
func (c *Codec[T]) Denormalize(x float64) (T, error) {
	id, ok := format.ScaleUnified.ID(x, len(c.symbols))
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: value %v maps outside [0, %d)", errs.ErrDecode, x, len(c.symbols))
	}

	return c.symbols[id], nil
}

// DenormalizeClamped is like Denormalize but clamps the id into range. NaN maps to id 0.
func (c *Codec[T]) DenormalizeClamped(x float64) T {
	id, _ := format.ScaleUnified.ID(x, len(c.symbols))
	return c.symbols[id]
}

// NormalizeSeq normalizes every symbol of seq.
func (c *Codec[T]) NormalizeSeq(seq []T) ([]float64, error) {
	out := make([]float64, len(seq))
	for i, s := range seq {
		x, err := c.Normalize(s)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		out[i] = x
	}

	return out, nil
}

// DenormalizeSeq denormalizes every value of xs, clamping instead of failing when clamp is set.
func (c *Codec[T]) DenormalizeSeq(xs []float64, clamp bool) ([]T, error) {
	out := make([]T, len(xs))
	for i, x := range xs {
		if clamp {
			out[i] = c.DenormalizeClamped(x)
			continue
		}

		s, err := c.Denormalize(x)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		out[i] = s
	}

	return out, nil
}

// Categorize returns the one-hot vector of s: length Size(), 1 at the id of s.
func (c *Codec[T]) Categorize(s T) ([]float64, error) {
	id, err := c.ID(s)
	if err != nil {
		return nil, err
	}

	v := make([]float64, len(c.symbols))
	v[id] = 1

	return v, nil
}

// Decategorize returns the symbol at the argmax of v, preferring the lowest index on ties.
//
// v may be any score vector, not only a one-hot one. NaN scores never win. A vector
// whose length differs from Size() fails with ErrDecode.
func (c *Codec[T]) Decategorize(v []float64) (T, error) {
	if len(v) != len(c.symbols) {
		var zero T
		return zero, fmt.Errorf("%w: vector length %d, codec size %d", errs.ErrDecode, len(v), len(c.symbols))
	}

	return c.symbols[Argmax(v)], nil
}

// Argmax returns the index of the largest value of v, the lowest index on ties, and 0
// for an empty or all-NaN vector.
func Argmax(v []float64) int {
	best := 0
	bestScore := math.Inf(-1)
	found := false
	for i, x := range v {
		if math.IsNaN(x) {
			continue
		}
		if !found || x > bestScore {
			best, bestScore, found = i, x, true
		}
	}

	return best
}

package codec

import (
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
)

// Window is one training example: Input holds W consecutive normalized values and
// Target the one-hot vector of the symbol that follows them.
type Window struct {
	Input  []float64
	Target []float64
}

// Windows returns the training windows of the corpus as a lazy sequence.
//
// Every sequence of length n > windowSize contributes n - windowSize windows, in
// sequence order and then position order. Shorter sequences are skipped and logged at
// debug level. The returned sequence can be ranged over any number of times; each pass
// starts again from the first window. Each yielded Window owns its slices.
//
// Returns:
//   - iter.Seq[Window]: The windows
//   - error: ErrInvalidConfig when windowSize <= 0
func (c *Codec[T]) Windows(windowSize int) (iter.Seq[Window], error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size %d must be positive", errs.ErrInvalidConfig, windowSize)
	}

	size := len(c.symbols)

	return func(yield func(Window) bool) {
		for idx, seq := range c.corpus {
			if len(seq) <= windowSize {
				c.logger.Debug("sequence too short for window, skipped",
					zap.Int("sequence", idx),
					zap.Int("length", len(seq)),
					zap.Int("window_size", windowSize),
				)

				continue
			}

			values := make([]float64, len(seq))
			for i, s := range seq {
				values[i] = format.ScaleUnified.Value(c.ids[s], size)
			}

			for start := 0; start+windowSize < len(seq); start++ {
				w := Window{
					Input:  append([]float64(nil), values[start:start+windowSize]...),
					Target: make([]float64, size),
				}
				w.Target[c.ids[seq[start+windowSize]]] = 1

				if !yield(w) {
					return
				}
			}
		}
	}, nil
}

// CountWindows returns how many windows Windows(windowSize) yields without producing them.
func (c *Codec[T]) CountWindows(windowSize int) (int, error) {
	if windowSize <= 0 {
		return 0, fmt.Errorf("%w: window size %d must be positive", errs.ErrInvalidConfig, windowSize)
	}

	total := 0
	for _, seq := range c.corpus {
		if n := len(seq) - windowSize; n > 0 {
			total += n
		}
	}

	return total, nil
}

// Materialize drains windows into the input and target matrices handed to a learner.
func Materialize(windows iter.Seq[Window]) (inputs, targets [][]float64) {
	for w := range windows {
		inputs = append(inputs, w.Input)
		targets = append(targets, w.Target)
	}

	return inputs, targets
}

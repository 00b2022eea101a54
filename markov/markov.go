// Package markov provides a first-order transition model that satisfies
// generate.Model.
//
// The model counts transitions between symbol ids: for every training window, from the
// id of its last input value to the id its target selects. Predict returns the
// Laplace-smoothed transition row of the id behind the last value of the window, which
// is uniform for ids never seen as a source.
//
// It is a small, dependency-free stand-in for an external learner and is what the
// sarada command line fits and drives.
package markov

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/arloliu/sarada/codec"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
)

// MaxSymbols is the largest vocabulary a model accepts.
const MaxSymbols = 1 << 20

// Model is a first-order transition model over symbol ids.
//
// Fit and Predict may be called concurrently; Predict only takes a read lock.
type Model struct {
	mu           sync.RWMutex
	inputLength  int
	outputLength int
	scale        format.Scale
	rows         []map[int]uint64 // source id -> target id -> count, nil when unseen
	rowTotals    []uint64
	windows      uint64
}

// New creates an empty model.
//
// Parameters:
//   - inputLength: Window size the model accepts
//   - outputLength: Number of symbol ids (the codec size)
//   - scale: Convention of the windows Predict receives; training windows always use
//     format.ScaleUnified, the codec's normalization
//
// Returns:
//   - *Model: Empty model
//   - error: ErrInvalidConfig for lengths outside (0, MaxSymbols] or an unknown scale
func New(inputLength, outputLength int, scale format.Scale) (*Model, error) {
	if inputLength <= 0 || outputLength <= 0 || outputLength > MaxSymbols {
		return nil, fmt.Errorf("%w: input length %d and output length %d must be in (0, %d]",
			errs.ErrInvalidConfig, inputLength, outputLength, MaxSymbols)
	}
	if scale != format.ScaleUnified && scale != format.ScaleLegacy {
		return nil, fmt.Errorf("%w: unknown scale %d", errs.ErrInvalidConfig, scale)
	}

	return &Model{
		inputLength:  inputLength,
		outputLength: outputLength,
		scale:        scale,
		rows:         make([]map[int]uint64, outputLength),
		rowTotals:    make([]uint64, outputLength),
	}, nil
}

// InputLength implements generate.Model.
func (m *Model) InputLength() int {
	return m.inputLength
}

// OutputLength implements generate.Model.
func (m *Model) OutputLength() int {
	return m.outputLength
}

// Scale returns the convention Predict decodes windows with.
func (m *Model) Scale() format.Scale {
	return m.scale
}

// Windows returns the number of windows the model has been fitted on.
func (m *Model) Windows() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.windows
}

// Fit accumulates the transitions of windows. It may be called repeatedly; counts add up.
//
// Every window must match the model shapes, otherwise Fit fails with
// ErrModelShapeMismatch and the windows seen so far in this call are kept.
func (m *Model) Fit(windows iter.Seq[codec.Window]) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for w := range windows {
		if len(w.Input) != m.inputLength || len(w.Target) != m.outputLength {
			return n, fmt.Errorf("%w: window %d has input %d and target %d, model expects %d and %d",
				errs.ErrModelShapeMismatch, n, len(w.Input), len(w.Target), m.inputLength, m.outputLength)
		}

		from, _ := format.ScaleUnified.ID(w.Input[len(w.Input)-1], m.outputLength)
		to := codec.Argmax(w.Target)

		m.add(from, to, 1)
		m.windows++
		n++
	}

	return n, nil
}

// Predict implements generate.Model.
//
// Values outside the scale's range are clamped to the nearest id.
func (m *Model) Predict(ctx context.Context, window []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(window) != m.inputLength {
		return nil, fmt.Errorf("%w: window length %d, model expects %d", errs.ErrModelShapeMismatch, len(window), m.inputLength)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.windows == 0 {
		return nil, errs.ErrModelNotFitted
	}

	from, _ := m.scale.ID(window[len(window)-1], m.outputLength)
	denominator := float64(m.rowTotals[from]) + float64(m.outputLength)

	scores := make([]float64, m.outputLength)
	for to := range scores {
		scores[to] = 1 / denominator
	}
	for to, count := range m.rows[from] {
		scores[to] = (float64(count) + 1) / denominator
	}

	return scores, nil
}

// Transition returns how often from was followed by to during fitting.
func (m *Model) Transition(from, to int) uint64 {
	if from < 0 || from >= m.outputLength || to < 0 || to >= m.outputLength {
		return 0
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.rows[from][to]
}

// add records count transitions from -> to. The caller holds the write lock.
func (m *Model) add(from, to int, count uint64) {
	if m.rows[from] == nil {
		m.rows[from] = make(map[int]uint64)
	}
	m.rows[from][to] += count
	m.rowTotals[from] += count
}

package generate

import (
	"context"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/sarada/codec"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
	"github.com/arloliu/sarada/internal/options"
	"github.com/arloliu/sarada/internal/pool"
)

// Generate produces length continuous values by driving model autoregressively.
//
// Parameters:
//   - ctx: Checked before every model query
//   - model: Trained model; its shapes must match the window size and c.Size()
//   - c: Codec built from the corpus the model was trained on
//   - length: Number of values to return; 0 still runs the warm-up steps
//   - opts: WithWindowSize is required; see the other options for seeding and scale
//
// Returns:
//   - []float64: Exactly length values in the domain of the configured scale
//   - error: ErrInvalidConfig, ErrModelShapeMismatch, or the wrapped model/context error
func Generate[T comparable](ctx context.Context, model Model, c *codec.Codec[T], length int, opts ...Option) ([]float64, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if err := checkShapes(model, cfg.windowSize, c.Size(), length); err != nil {
		return nil, err
	}

	return run(ctx, model, c.Size(), length, cfg, cfg.randFor(0))
}

// GenerateSymbols is Generate followed by Decode.
func GenerateSymbols[T comparable](ctx context.Context, model Model, c *codec.Codec[T], length int, opts ...Option) ([]T, error) {
	values, err := Generate(ctx, model, c, length, opts...)
	if err != nil {
		return nil, err
	}

	return Decode(c, values, opts...)
}

// GenerateMany runs one generation per entry of lengths.
//
// Requests are independent: each owns its buffer, and with WithSeed the i-th request is
// seeded with seed+i, so results do not depend on scheduling. Requests run sequentially
// unless WithParallelism allows more, in which case the model must tolerate concurrent
// Predict calls. The first failure cancels the remaining requests.
func GenerateMany[T comparable](ctx context.Context, model Model, c *codec.Codec[T], lengths []int, opts ...Option) ([][]float64, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if cfg.rng != nil && cfg.parallelism > 1 {
		return nil, fmt.Errorf("%w: a shared random source cannot be used with parallelism %d",
			errs.ErrInvalidConfig, cfg.parallelism)
	}
	for _, length := range lengths {
		if err := checkShapes(model, cfg.windowSize, c.Size(), length); err != nil {
			return nil, err
		}
	}

	results := make([][]float64, len(lengths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.parallelism)

	for i, length := range lengths {
		g.Go(func() error {
			values, err := run(gctx, model, c.Size(), length, cfg, cfg.randFor(i))
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			results[i] = values

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Decode converts generated values back into symbols with the configured scale.
// Out-of-range values fail with ErrDecode unless WithClamp(true) is given.
func Decode[T comparable](c *codec.Codec[T], values []float64, opts ...Option) ([]T, error) {
	// Only scale and clamp matter here, so a missing window size is not an error.
	cfg := &Config{scale: format.ScaleUnified}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if cfg.scale == format.ScaleUnified {
		return c.DenormalizeSeq(values, cfg.clamp)
	}

	out := make([]T, len(values))
	for i, x := range values {
		id, ok := cfg.scale.ID(x, c.Size())
		if !ok && !cfg.clamp {
			return nil, fmt.Errorf("position %d: %w: value %v maps outside [0, %d) under %s scale",
				i, errs.ErrDecode, x, c.Size(), cfg.scale)
		}

		s, err := c.Symbol(id)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		out[i] = s
	}

	return out, nil
}

func checkShapes(model Model, windowSize, size, length int) error {
	if length < 0 {
		return fmt.Errorf("%w: length %d must not be negative", errs.ErrInvalidConfig, length)
	}
	if in := model.InputLength(); in != windowSize {
		return fmt.Errorf("%w: model input length %d, window size %d", errs.ErrModelShapeMismatch, in, windowSize)
	}
	if out := model.OutputLength(); out != size {
		return fmt.Errorf("%w: model output length %d, codec size %d", errs.ErrModelShapeMismatch, out, size)
	}

	return nil
}

func run(ctx context.Context, model Model, size, length int, cfg *Config, rng *rand.Rand) ([]float64, error) {
	buffer, release := pool.GetFloat64Slice(cfg.windowSize)
	defer release()

	for i := range buffer {
		buffer[i] = rng.Float64()
	}

	cfg.logger.Debug("generation started",
		zap.Int("length", length),
		zap.Int("window_size", cfg.windowSize),
		zap.Stringer("scale", cfg.scale),
	)

	s := newState(buffer, length)
	for s.phase != phaseDone {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation stopped at step %d (%s): %w", s.step, s.phase, err)
		}

		scores, err := model.Predict(ctx, s.buffer)
		if err != nil {
			return nil, fmt.Errorf("model query at step %d (%s): %w", s.step, s.phase, err)
		}
		if len(scores) != size {
			return nil, fmt.Errorf("%w: step %d returned %d scores, codec size %d",
				errs.ErrModelShapeMismatch, s.step, len(scores), size)
		}

		s.advance(cfg.scale.Value(codec.Argmax(scores), size))
	}

	cfg.logger.Debug("generation finished", zap.Int("queries", s.step), zap.Int("values", len(s.result)))

	return s.result, nil
}

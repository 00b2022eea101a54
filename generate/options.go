package generate

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
	"github.com/arloliu/sarada/internal/options"
)

// seedStream is the second PCG word derived from a user seed.
const seedStream = 0x9E3779B97F4A7C15

// Config holds the settings of a generation call.
type Config struct {
	windowSize  int
	scale       format.Scale
	seed        uint64
	seeded      bool
	rng         *rand.Rand
	clamp       bool
	parallelism int
	logger      *zap.Logger
}

// Option configures a generation call.
type Option = options.Option[*Config]

func newConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		scale:       format.ScaleUnified,
		parallelism: 1,
		logger:      zap.NewNop(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size %d must be positive", errs.ErrInvalidConfig, cfg.windowSize)
	}

	return cfg, nil
}

// WithWindowSize sets the window size the model was trained with. Required.
func WithWindowSize(w int) Option {
	return options.New(func(c *Config) error {
		if w <= 0 {
			return fmt.Errorf("%w: window size %d must be positive", errs.ErrInvalidConfig, w)
		}
		c.windowSize = w

		return nil
	})
}

// WithScale selects the id to value conversion applied to every generated id.
//
// The default, format.ScaleUnified, matches Codec.Normalize. format.ScaleLegacy
// (id/size) reproduces models trained against that convention.
func WithScale(scale format.Scale) Option {
	return options.New(func(c *Config) error {
		switch scale {
		case format.ScaleUnified, format.ScaleLegacy:
			c.scale = scale
			return nil
		default:
			return fmt.Errorf("%w: unknown scale %d", errs.ErrInvalidConfig, scale)
		}
	})
}

// WithSeed makes the warm-up buffer deterministic.
func WithSeed(seed uint64) Option {
	return options.NoError(func(c *Config) {
		c.seed = seed
		c.seeded = true
	})
}

// WithRand draws the warm-up buffer from rng. It takes precedence over WithSeed and
// cannot be combined with parallel GenerateMany, since *rand.Rand is not safe for
// concurrent use.
func WithRand(rng *rand.Rand) Option {
	return options.New(func(c *Config) error {
		if rng == nil {
			return fmt.Errorf("%w: nil random source", errs.ErrInvalidConfig)
		}
		c.rng = rng

		return nil
	})
}

// WithClamp makes symbol decoding clamp out-of-range ids instead of failing with ErrDecode.
func WithClamp(clamp bool) Option {
	return options.NoError(func(c *Config) {
		c.clamp = clamp
	})
}

// WithParallelism lets GenerateMany run up to n requests at once.
// The default of 1 runs them sequentially.
func WithParallelism(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("%w: parallelism %d must be at least 1", errs.ErrInvalidConfig, n)
		}
		c.parallelism = n

		return nil
	})
}

// WithLogger sets the logger for generation diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return options.New(func(c *Config) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", errs.ErrInvalidConfig)
		}
		c.logger = logger

		return nil
	})
}

// randFor returns the warm-up source of the index-th request.
func (c *Config) randFor(index int) *rand.Rand {
	switch {
	case c.rng != nil:
		return c.rng
	case c.seeded:
		seed := c.seed + uint64(index) //nolint:gosec
		return rand.New(rand.NewPCG(seed, seed^seedStream))
	default:
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}

package snapshot

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/arloliu/sarada/codec"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
	"github.com/arloliu/sarada/internal/options"
)

// Config holds the settings of Encode and Decode.
type Config struct {
	compression  format.CompressionType
	windowSize   int
	bigEndian    bool
	codecOptions []codec.Option
	logger       *zap.Logger
}

// Option configures Encode or Decode.
type Option = options.Option[*Config]

func newConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		compression: format.CompressionZstd,
		logger:      zap.NewNop(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithCompression sets the payload compression. The default is Zstd. Ignored by Decode,
// which reads the compression from the header.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *Config) error {
		if !ct.IsValid() {
			return fmt.Errorf("%w: unknown compression %d", errs.ErrInvalidConfig, ct)
		}
		c.compression = ct

		return nil
	})
}

// WithWindowSize records the window size a model is trained with.
func WithWindowSize(w int) Option {
	return options.New(func(c *Config) error {
		if w < 0 || uint64(w) > math.MaxUint32 {
			return fmt.Errorf("%w: window size %d out of range", errs.ErrInvalidConfig, w)
		}
		c.windowSize = w

		return nil
	})
}

// WithBigEndian writes header fields big-endian. Rarely needed; Decode handles both.
func WithBigEndian() Option {
	return options.NoError(func(c *Config) {
		c.bigEndian = true
	})
}

// WithCodecOptions passes options to codec.Build when Decode rebuilds the Codec.
// A custom fingerprinter used at encode time must be supplied here again.
func WithCodecOptions(opts ...codec.Option) Option {
	return options.NoError(func(c *Config) {
		c.codecOptions = append(c.codecOptions, opts...)
	})
}

// WithLogger sets the logger for snapshot diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return options.New(func(c *Config) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", errs.ErrInvalidConfig)
		}
		c.logger = logger

		return nil
	})
}

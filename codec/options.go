package codec

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/internal/options"
)

// Config holds the build-time configuration of a Codec.
type Config struct {
	logger        *zap.Logger
	fingerprinter any
}

// Option configures Build.
type Option = options.Option[*Config]

// WithLogger sets the logger used for build and windowing diagnostics.
// The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return options.New(func(c *Config) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", errs.ErrInvalidConfig)
		}
		c.logger = logger

		return nil
	})
}

// WithFingerprinter overrides how a symbol is turned into bytes for the corpus fingerprint.
//
// The function appends the bytes of s to dst and returns the extended slice. Its type
// parameter must match the symbol type passed to Build.
func WithFingerprinter[T comparable](fn func(dst []byte, s T) []byte) Option {
	return options.New(func(c *Config) error {
		if fn == nil {
			return fmt.Errorf("%w: nil fingerprinter", errs.ErrInvalidConfig)
		}
		c.fingerprinter = fn

		return nil
	})
}

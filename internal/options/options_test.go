package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errNegativeWindow = errors.New("window size cannot be negative")

type windowConfig struct {
	size    int
	name    string
	verbose bool
	calls   []string
}

func withSize(size int) Option[*windowConfig] {
	return New(func(c *windowConfig) error {
		if size < 0 {
			return errNegativeWindow
		}
		c.size = size
		c.calls = append(c.calls, "size")

		return nil
	})
}

func withName(name string) Option[*windowConfig] {
	return NoError(func(c *windowConfig) {
		c.name = name
		c.calls = append(c.calls, "name")
	})
}

func withVerbose() Option[*windowConfig] {
	return NoError(func(c *windowConfig) {
		c.verbose = true
		c.calls = append(c.calls, "verbose")
	})
}

func TestApply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		cfg := &windowConfig{}
		err := Apply(cfg, withName("melody"), withSize(40), withVerbose())

		require.NoError(t, err)
		require.Equal(t, 40, cfg.size)
		require.Equal(t, "melody", cfg.name)
		require.True(t, cfg.verbose)
		require.Equal(t, []string{"name", "size", "verbose"}, cfg.calls)
	})

	t.Run("no options leaves target untouched", func(t *testing.T) {
		cfg := &windowConfig{size: 7}
		require.NoError(t, Apply(cfg))
		require.Equal(t, 7, cfg.size)
		require.Empty(t, cfg.calls)
	})

	t.Run("nil options are skipped", func(t *testing.T) {
		cfg := &windowConfig{}
		require.NoError(t, Apply(cfg, nil, withSize(3)))
		require.Equal(t, 3, cfg.size)
	})

	t.Run("stops at first error and keeps it matchable", func(t *testing.T) {
		cfg := &windowConfig{}
		err := Apply(cfg, withName("a"), withSize(-1), withVerbose())

		require.ErrorIs(t, err, errNegativeWindow)
		require.Contains(t, err.Error(), "option 1")
		require.False(t, cfg.verbose)
		require.Equal(t, []string{"name"}, cfg.calls)
	})
}

func TestNoError(t *testing.T) {
	cfg := &windowConfig{}
	opt := NoError(func(c *windowConfig) { c.size = 12 })

	require.NoError(t, opt.apply(cfg))
	require.Equal(t, 12, cfg.size)
}

package project

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
)

// Config is the in-memory representation of a project's config.yaml.
type Config struct {
	// WindowSize is the number of values the model sees per prediction.
	WindowSize int `yaml:"window_size"`
	// Iterations counts the training passes run so far.
	Iterations int `yaml:"iterations"`
	// Compression is used for the corpus snapshot and the model file.
	Compression format.CompressionType `yaml:"compression"`
	// Scale is the id to value convention of the generation loop.
	Scale format.Scale `yaml:"scale"`
	// Fingerprint is the hex corpus fingerprint of the snapshot.
	Fingerprint string `yaml:"fingerprint"`
	// CreatedAt is when the project was prepared.
	CreatedAt time.Time `yaml:"created_at"`
	// FittedAt is when the model was last fitted.
	FittedAt *time.Time `yaml:"fitted_at,omitempty"`
}

// DefaultConfig returns the configuration used by prepare when no flag overrides it.
func DefaultConfig() Config {
	return Config{
		WindowSize:  40,
		Compression: format.CompressionZstd,
		Scale:       format.ScaleUnified,
	}
}

// Validate checks the fields a project cannot work without.
func (c Config) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("%w: window size %d must be positive", errs.ErrInvalidConfig, c.WindowSize)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w: iterations %d must not be negative", errs.ErrInvalidConfig, c.Iterations)
	}
	if !c.Compression.IsValid() {
		return fmt.Errorf("%w: unknown compression %d", errs.ErrInvalidConfig, c.Compression)
	}
	if c.Scale != format.ScaleUnified && c.Scale != format.ScaleLegacy {
		return fmt.Errorf("%w: unknown scale %d", errs.ErrInvalidConfig, c.Scale)
	}

	return nil
}

func readConfig(dir string) (Config, error) {
	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: invalid YAML in %s: %v", errs.ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

func (p *Project) writeConfig(cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return p.writeFile(filepath.Join(p.dir, ConfigFile), data)
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cannot replace %s: %w", path, err)
	}

	return nil
}

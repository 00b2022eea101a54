// Package project manages a model directory: the prepared corpus, its configuration
// and the fitted model.
//
// A project directory holds
//
//	config.yaml   window size, iteration count, compression, scale, corpus fingerprint
//	corpus.snap   the corpus snapshot the Codec is rebuilt from
//	model.bin     the fitted transition model
//	.lock         advisory lock held while any file is being replaced
//
// Init creates the directory once; Open loads it for fitting and generation.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/arloliu/sarada/codec"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/internal/options"
	"github.com/arloliu/sarada/markov"
	"github.com/arloliu/sarada/snapshot"
	"github.com/arloliu/sarada/symbol"
)

// Files of a project directory.
const (
	ConfigFile = "config.yaml"
	CorpusFile = "corpus.snap"
	ModelFile  = "model.bin"
	LockFile   = ".lock"
)

const defaultLockTimeout = 5 * time.Second

// Project is an opened model directory.
type Project struct {
	dir         string
	cfg         Config
	logger      *zap.Logger
	lockTimeout time.Duration
	now         func() time.Time
	writeFile   func(path string, data []byte) error
}

// Option configures Init and Open.
type Option = options.Option[*Project]

// WithLogger sets the logger for lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return options.New(func(p *Project) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", errs.ErrInvalidConfig)
		}
		p.logger = logger

		return nil
	})
}

// WithLockTimeout sets how long mutating calls wait for the directory lock.
func WithLockTimeout(d time.Duration) Option {
	return options.New(func(p *Project) error {
		if d <= 0 {
			return fmt.Errorf("%w: lock timeout %s must be positive", errs.ErrInvalidConfig, d)
		}
		p.lockTimeout = d

		return nil
	})
}

func newProject(dir string, opts ...Option) (*Project, error) {
	p := &Project{
		dir:         dir,
		logger:      zap.NewNop(),
		lockTimeout: defaultLockTimeout,
		now:         time.Now,
		writeFile:   writeFileAtomic,
	}
	if err := options.Apply(p, opts...); err != nil {
		return nil, err
	}

	return p, nil
}

// Init creates a project directory for the corpus of c with an empty model.
//
// Parameters:
//   - dir: Directory to create; it must not exist yet
//   - c: Codec built from the prepared corpus
//   - cfg: Project configuration; Iterations, Fingerprint and FittedAt are reset
//   - opts: Optional logger and lock timeout
//
// Returns:
//   - *Project: The opened project
//   - error: ErrProjectExists, ErrInvalidConfig, or the I/O error
//
// A failed Init removes the directory it created, so it can be retried.
func Init(dir string, c *codec.Codec[symbol.Symbol], cfg Config, opts ...Option) (_ *Project, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrProjectExists, dir)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	p, err := newProject(dir, opts...)
	if err != nil {
		return nil, err
	}

	cfg.Iterations = 0
	cfg.FittedAt = nil
	cfg.Fingerprint = formatFingerprint(c.Fingerprint())
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = p.now().UTC()
	}

	snap, err := snapshot.Encode(c, snapshot.MusicalSymbols{},
		snapshot.WithCompression(cfg.Compression),
		snapshot.WithWindowSize(cfg.WindowSize),
		snapshot.WithLogger(p.logger),
	)
	if err != nil {
		return nil, err
	}

	model, err := markov.New(cfg.WindowSize, c.Size(), cfg.Scale)
	if err != nil {
		return nil, err
	}
	modelData, err := model.Encode(cfg.Compression)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create project directory: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dir)
		}
	}()

	err = p.withLock(func() error {
		if err := p.writeFile(filepath.Join(dir, CorpusFile), snap); err != nil {
			return err
		}
		if err := p.writeFile(filepath.Join(dir, ModelFile), modelData); err != nil {
			return err
		}

		return p.writeConfig(cfg)
	})
	if err != nil {
		return nil, err
	}
	p.cfg = cfg

	p.logger.Info("initialized project",
		zap.String("path", dir),
		zap.Int("symbols", c.Size()),
		zap.Int("window_size", cfg.WindowSize),
	)

	return p, nil
}

// Open loads an existing project directory.
func Open(dir string, opts ...Option) (*Project, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", errs.ErrProjectNotFound, dir)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", errs.ErrProjectNotFound, dir)
	}

	p, err := newProject(dir, opts...)
	if err != nil {
		return nil, err
	}

	cfg, err := readConfig(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s has no %s", errs.ErrProjectNotFound, dir, ConfigFile)
	}
	if err != nil {
		return nil, err
	}
	p.cfg = cfg

	p.logger.Debug("opened project", zap.String("path", dir), zap.Int("iterations", cfg.Iterations))

	return p, nil
}

// Dir returns the project directory.
func (p *Project) Dir() string {
	return p.dir
}

// Config returns the configuration as of the last load or update.
func (p *Project) Config() Config {
	return p.cfg
}

// Codec rebuilds the Codec from the corpus snapshot and checks it against the config.
func (p *Project) Codec() (*codec.Codec[symbol.Symbol], error) {
	data, err := os.ReadFile(filepath.Join(p.dir, CorpusFile))
	if err != nil {
		return nil, fmt.Errorf("cannot read corpus snapshot: %w", err)
	}

	snap, err := snapshot.Decode(data, snapshot.MusicalSymbols{}, snapshot.WithLogger(p.logger))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", CorpusFile, err)
	}

	if got := formatFingerprint(snap.Codec.Fingerprint()); got != p.cfg.Fingerprint {
		return nil, fmt.Errorf("%w: snapshot %s, config %s", errs.ErrFingerprintMismatch, got, p.cfg.Fingerprint)
	}
	if snap.WindowSize() != p.cfg.WindowSize {
		return nil, fmt.Errorf("%w: snapshot window size %d, config %d",
			errs.ErrInvalidConfig, snap.WindowSize(), p.cfg.WindowSize)
	}

	return snap.Codec, nil
}

// LoadModel reads the model file and checks it against the window size and codec size.
func (p *Project) LoadModel(size int) (*markov.Model, error) {
	data, err := os.ReadFile(filepath.Join(p.dir, ModelFile))
	if err != nil {
		return nil, fmt.Errorf("cannot read model: %w", err)
	}

	m, err := markov.Load(data, p.cfg.WindowSize, size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ModelFile, err)
	}

	return m, nil
}

// SaveModel replaces the model file.
func (p *Project) SaveModel(m *markov.Model) error {
	if m.InputLength() != p.cfg.WindowSize {
		return fmt.Errorf("%w: model input length %d, window size %d",
			errs.ErrModelShapeMismatch, m.InputLength(), p.cfg.WindowSize)
	}

	data, err := m.Encode(p.cfg.Compression)
	if err != nil {
		return err
	}

	return p.withLock(func() error {
		return p.writeFile(filepath.Join(p.dir, ModelFile), data)
	})
}

// RecordFit adds epochs to the iteration count and stamps the fit time.
func (p *Project) RecordFit(epochs int) error {
	if epochs < 0 {
		return fmt.Errorf("%w: epochs %d must not be negative", errs.ErrInvalidConfig, epochs)
	}

	return p.withLock(func() error {
		cfg, err := readConfig(p.dir)
		if err != nil {
			return err
		}

		fitted := p.now().UTC()
		cfg.Iterations += epochs
		cfg.FittedAt = &fitted
		if err := p.writeConfig(cfg); err != nil {
			return err
		}
		p.cfg = cfg

		p.logger.Info("recorded fit", zap.Int("epochs", epochs), zap.Int("iterations", cfg.Iterations))

		return nil
	})
}

// withLock runs fn while holding the project lock.
func (p *Project) withLock(fn func() error) error {
	lock := flock.New(filepath.Join(p.dir, LockFile))

	ctx, cancel := context.WithTimeout(context.Background(), p.lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("cannot acquire project lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", errs.ErrProjectLocked, p.dir)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

func formatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

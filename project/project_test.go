package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/sarada/codec"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
	"github.com/arloliu/sarada/internal/options"
	"github.com/arloliu/sarada/symbol"
)

func testCodec(t *testing.T) *codec.Codec[symbol.Symbol] {
	t.Helper()

	seq, err := symbol.ParseSequence("C4:1 E4:1 G4:1 C5:2 G4:1 E4:1 C4:2 rest:1 C4.E4.G4:4")
	require.NoError(t, err)

	c, err := codec.Build([][]symbol.Symbol{seq, seq[2:]})
	require.NoError(t, err)

	return c
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.WindowSize = 3
	cfg.Compression = format.CompressionS2

	return cfg
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "model")
	c := testCodec(t)

	p, err := Init(dir, c, testConfig())
	require.NoError(t, err)
	require.Equal(t, dir, p.Dir())

	for _, name := range []string{ConfigFile, CorpusFile, ModelFile} {
		require.FileExists(t, filepath.Join(dir, name))
	}

	cfg := p.Config()
	require.Equal(t, 3, cfg.WindowSize)
	require.Zero(t, cfg.Iterations)
	require.Equal(t, format.CompressionS2, cfg.Compression)
	require.Equal(t, format.ScaleUnified, cfg.Scale)
	require.Len(t, cfg.Fingerprint, 16)
	require.False(t, cfg.CreatedAt.IsZero())
	require.Nil(t, cfg.FittedAt)

	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	require.NoError(t, err)
	require.Contains(t, string(data), "window_size: 3")
	require.Contains(t, string(data), "compression: s2")
	require.Contains(t, string(data), "scale: unified")
}

func TestInit_Errors(t *testing.T) {
	c := testCodec(t)

	existing := t.TempDir()
	_, err := Init(existing, c, testConfig())
	require.ErrorIs(t, err, errs.ErrProjectExists)

	cfg := testConfig()
	cfg.WindowSize = 0
	_, err = Init(filepath.Join(t.TempDir(), "model"), c, cfg)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = Init(filepath.Join(t.TempDir(), "model"), c, testConfig(), WithLockTimeout(0))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestInit_CleansUpOnFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "model")
	c := testCodec(t)

	failModel := options.NoError(func(p *Project) {
		p.writeFile = func(path string, data []byte) error {
			if filepath.Base(path) == ModelFile {
				return errors.New("disk full")
			}

			return writeFileAtomic(path, data)
		}
	})

	_, err := Init(dir, c, testConfig(), failModel)
	require.ErrorContains(t, err, "disk full")
	require.NoDirExists(t, dir)

	_, err = Init(dir, c, testConfig())
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, ModelFile))
}

func TestOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "model")
	c := testCodec(t)

	created, err := Init(dir, c, testConfig())
	require.NoError(t, err)

	p, err := Open(dir)
	require.NoError(t, err)
	require.Equal(t, created.Config().WindowSize, p.Config().WindowSize)
	require.Equal(t, created.Config().Fingerprint, p.Config().Fingerprint)
	require.Equal(t, created.Config().Compression, p.Config().Compression)
	require.True(t, created.Config().CreatedAt.Equal(p.Config().CreatedAt))

	rebuilt, err := p.Codec()
	require.NoError(t, err)
	require.Equal(t, c.Symbols(), rebuilt.Symbols())
	require.Equal(t, c.Fingerprint(), rebuilt.Fingerprint())

	m, err := p.LoadModel(rebuilt.Size())
	require.NoError(t, err)
	require.Equal(t, 3, m.InputLength())
	require.Equal(t, c.Size(), m.OutputLength())
	require.Zero(t, m.Windows())
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, errs.ErrProjectNotFound)

	_, err = Open(t.TempDir())
	require.ErrorIs(t, err, errs.ErrProjectNotFound)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("window_size: -2\n"), 0o644))
	_, err = Open(dir)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("window_size: [\n"), 0o644))
	_, err = Open(dir)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestFitCycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "model")
	c := testCodec(t)

	p, err := Init(dir, c, testConfig())
	require.NoError(t, err)

	m, err := p.LoadModel(c.Size())
	require.NoError(t, err)

	windows, err := c.Windows(3)
	require.NoError(t, err)
	n, err := m.Fit(windows)
	require.NoError(t, err)
	require.Positive(t, n)

	require.NoError(t, p.SaveModel(m))
	require.NoError(t, p.RecordFit(100))
	require.NoError(t, p.RecordFit(20))

	reopened, err := Open(dir)
	require.NoError(t, err)
	require.Equal(t, 120, reopened.Config().Iterations)
	require.NotNil(t, reopened.Config().FittedAt)

	loaded, err := reopened.LoadModel(c.Size())
	require.NoError(t, err)
	require.Equal(t, uint64(n), loaded.Windows()) //nolint:gosec

	require.ErrorIs(t, p.RecordFit(-1), errs.ErrInvalidConfig)
}

func TestLoadModel_ShapeMismatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "model")
	c := testCodec(t)

	p, err := Init(dir, c, testConfig())
	require.NoError(t, err)

	_, err = p.LoadModel(c.Size() + 1)
	require.ErrorIs(t, err, errs.ErrModelShapeMismatch)
}

func TestCodec_FingerprintMismatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "model")

	p, err := Init(dir, testCodec(t), testConfig())
	require.NoError(t, err)

	p.cfg.Fingerprint = "0000000000000000"
	_, err = p.Codec()
	require.ErrorIs(t, err, errs.ErrFingerprintMismatch)
}

func TestSaveModel_Locked(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "model")
	c := testCodec(t)

	p, err := Init(dir, c, testConfig(), WithLockTimeout(100*time.Millisecond))
	require.NoError(t, err)
	m, err := p.LoadModel(c.Size())
	require.NoError(t, err)

	holder := flock.New(filepath.Join(dir, LockFile))
	locked, err := holder.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = holder.Unlock() }()

	require.ErrorIs(t, p.SaveModel(m), errs.ErrProjectLocked)
}

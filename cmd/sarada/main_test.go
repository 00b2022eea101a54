package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arloliu/sarada/corpus"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
	"github.com/arloliu/sarada/project"
	"github.com/arloliu/sarada/symbol"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&app{logger: zap.NewNop()})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func musicDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "etude.txt"),
		[]byte("C4:1 D4:1 E4:1 C4:1 D4:1 E4:1 C4:1 D4:1\n# comment\nE4:1 G4:2 C4:1 D4:1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a score\n"), 0o644))

	return dir
}

func prepared(t *testing.T, args ...string) string {
	t.Helper()

	modelDir := filepath.Join(t.TempDir(), "model")
	_, err := execute(t, append([]string{"prepare", musicDir(t), modelDir, "--window-size", "2"}, args...)...)
	require.NoError(t, err)

	return modelDir
}

func TestPrepare(t *testing.T) {
	modelDir := filepath.Join(t.TempDir(), "model")

	out, err := execute(t, "prepare", musicDir(t), modelDir, "--window-size", "2", "--compression", "s2", "--scale", "legacy")
	require.NoError(t, err)
	require.Contains(t, out, "4 symbols, 2 sequences, 8 windows")

	p, err := project.Open(modelDir)
	require.NoError(t, err)
	cfg := p.Config()
	require.Equal(t, 2, cfg.WindowSize)
	require.Equal(t, 0, cfg.Iterations)
	require.Equal(t, format.CompressionS2, cfg.Compression)
	require.Equal(t, format.ScaleLegacy, cfg.Scale)

	_, err = execute(t, "prepare", musicDir(t), modelDir)
	require.ErrorIs(t, err, errs.ErrProjectExists)
}

func TestPrepare_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    func(t *testing.T) []string
		wantErr error
	}{
		{
			name: "empty music dir",
			args: func(t *testing.T) []string {
				return []string{"prepare", t.TempDir(), filepath.Join(t.TempDir(), "m")}
			},
			wantErr: errs.ErrEmptyDataset,
		},
		{
			name: "bad window size",
			args: func(t *testing.T) []string {
				return []string{"prepare", musicDir(t), filepath.Join(t.TempDir(), "m"), "--window-size", "0"}
			},
			wantErr: errs.ErrInvalidConfig,
		},
		{
			name: "bad compression",
			args: func(t *testing.T) []string {
				return []string{"prepare", musicDir(t), filepath.Join(t.TempDir(), "m"), "--compression", "brotli"}
			},
			wantErr: errs.ErrInvalidConfig,
		},
		{
			name: "bad scale",
			args: func(t *testing.T) []string {
				return []string{"prepare", musicDir(t), filepath.Join(t.TempDir(), "m"), "--scale", "log"}
			},
			wantErr: errs.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args(t)...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFit(t *testing.T) {
	modelDir := prepared(t)

	out, err := execute(t, "fit", modelDir, "--epochs", "3")
	require.NoError(t, err)
	require.Contains(t, out, "3 epochs, 24 windows, 3 iterations in total")

	_, err = execute(t, "fit", modelDir, "--epochs", "2")
	require.NoError(t, err)

	p, err := project.Open(modelDir)
	require.NoError(t, err)
	require.Equal(t, 5, p.Config().Iterations)
	require.NotNil(t, p.Config().FittedAt)

	c, err := p.Codec()
	require.NoError(t, err)
	m, err := p.LoadModel(c.Size())
	require.NoError(t, err)
	require.Equal(t, uint64(40), m.Windows())

	_, err = execute(t, "fit", modelDir, "--epochs", "0")
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = execute(t, "fit", filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, errs.ErrProjectNotFound)
}

func TestGenerate(t *testing.T) {
	modelDir := prepared(t)

	_, err := execute(t, "generate", modelDir)
	require.ErrorIs(t, err, errs.ErrModelNotFitted)

	_, err = execute(t, "fit", modelDir, "--epochs", "1")
	require.NoError(t, err)

	vocabulary := map[symbol.Symbol]bool{
		symbol.Note("C4", 1): true,
		symbol.Note("D4", 1): true,
		symbol.Note("E4", 1): true,
		symbol.Note("G4", 2): true,
	}

	out, err := execute(t, "generate", modelDir, "--length", "6", "--count", "3", "--parallel", "2", "--seed", "7")
	require.NoError(t, err)

	seqs, err := corpus.Parse(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, seqs, 3)
	for _, seq := range seqs {
		require.Len(t, seq, 6)
		for _, s := range seq {
			require.True(t, vocabulary[s], "unexpected symbol %v", s)
		}
	}

	again, err := execute(t, "generate", modelDir, "--length", "6", "--count", "3", "--parallel", "2", "--seed", "7")
	require.NoError(t, err)
	require.Equal(t, out, again)

	output := filepath.Join(t.TempDir(), "out.txt")
	_, err = execute(t, "generate", modelDir, "--length", "4", "--output", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	seqs, err = corpus.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, seqs, 1)
	require.Len(t, seqs[0], 4)
}

func TestInspect(t *testing.T) {
	modelDir := prepared(t)

	_, err := execute(t, "fit", modelDir, "--epochs", "1")
	require.NoError(t, err)

	out, err := execute(t, "inspect", modelDir)
	require.NoError(t, err)
	require.Contains(t, out, "window size")
	require.Contains(t, out, "fitted windows")
	require.Contains(t, out, project.CorpusFile)
	for _, name := range []string{"None", "Zstd", "S2", "LZ4"} {
		require.Contains(t, out, name)
	}
}

func TestModelDir(t *testing.T) {
	require.Equal(t, defaultModelDir, modelDir(nil, 0))
	require.Equal(t, defaultModelDir, modelDir([]string{"music"}, 1))
	require.Equal(t, "out", modelDir([]string{"music", "out"}, 1))
}

package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/internal/options"
	"github.com/arloliu/sarada/symbol"
)

// DefaultExtensions are the file extensions ReadDir parses unless told otherwise.
var DefaultExtensions = []string{".txt", ".sym"}

// Reader loads a corpus from a directory of text files.
type Reader struct {
	recursive  bool
	extensions map[string]struct{}
	logger     *zap.Logger
}

// Option configures a Reader.
type Option = options.Option[*Reader]

// NewReader creates a Reader. By default it reads the top-level files with
// DefaultExtensions and logs nothing.
func NewReader(opts ...Option) (*Reader, error) {
	r := &Reader{logger: zap.NewNop()}
	r.setExtensions(DefaultExtensions)

	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// WithRecursive makes ReadDir descend into subdirectories.
func WithRecursive(recursive bool) Option {
	return options.NoError(func(r *Reader) {
		r.recursive = recursive
	})
}

// WithExtensions replaces the set of parsed extensions. Matching is case-insensitive and
// the leading dot is optional.
func WithExtensions(exts ...string) Option {
	return options.New(func(r *Reader) error {
		if len(exts) == 0 {
			return fmt.Errorf("%w: no corpus extensions", errs.ErrInvalidConfig)
		}
		r.setExtensions(exts)

		return nil
	})
}

// WithLogger sets the logger used to report skipped files.
func WithLogger(logger *zap.Logger) Option {
	return options.New(func(r *Reader) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", errs.ErrInvalidConfig)
		}
		r.logger = logger

		return nil
	})
}

func (r *Reader) setExtensions(exts []string) {
	r.extensions = make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.extensions[ext] = struct{}{}
	}
}

// ReadDir parses every supported file under dir in lexical path order.
//
// A file holding a token that is not a valid symbol is skipped as a whole with a
// warning, so one bad score does not poison the corpus. I/O errors abort.
//
// Returns:
//   - [][]symbol.Symbol: The sequences of all accepted files, file by file
//   - error: ErrInvalidConfig when dir is not a directory, or the I/O error
func (r *Reader) ReadDir(dir string) ([][]symbol.Symbol, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("corpus directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", errs.ErrInvalidConfig, dir)
	}

	var sequences [][]symbol.Symbol
	files := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != dir && !r.recursive {
				return filepath.SkipDir
			}

			return nil
		}

		if _, ok := r.extensions[strings.ToLower(filepath.Ext(path))]; !ok {
			r.logger.Debug("unsupported file skipped", zap.String("path", path))
			return nil
		}

		seqs, err := readFile(path)
		if errors.Is(err, errs.ErrInvalidSymbol) {
			r.logger.Warn("ignoring file because of unsupported symbol", zap.String("path", path), zap.Error(err))
			return nil
		}
		if err != nil {
			return err
		}

		files++
		sequences = append(sequences, seqs...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("corpus loaded",
		zap.String("dir", dir),
		zap.Int("files", files),
		zap.Int("sequences", len(sequences)),
	)

	return sequences, nil
}

func readFile(path string) ([][]symbol.Symbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seqs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return seqs, nil
}

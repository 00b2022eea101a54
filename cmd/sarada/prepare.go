package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/sarada/codec"
	"github.com/arloliu/sarada/corpus"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/format"
	"github.com/arloliu/sarada/project"
)

type prepareOptions struct {
	windowSize  int
	recursive   bool
	compression string
	scale       string
	extensions  []string
}

func newPrepareCmd(a *app) *cobra.Command {
	opts := prepareOptions{}
	defaults := project.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "prepare <music_dir> [model_dir]",
		Short: "Initialize a model directory from a directory of scores",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrepare(cmd, a, opts, args[0], modelDir(args, 1))
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.windowSize, "window-size", defaults.WindowSize, "number of symbols the model sees per prediction")
	f.BoolVarP(&opts.recursive, "recursive", "r", false, "search the music directory recursively")
	f.StringVar(&opts.compression, "compression", "zstd", "payload compression: none, zstd, s2, lz4")
	f.StringVar(&opts.scale, "scale", "unified", "id to value convention of the generation loop: unified, legacy")
	f.StringSliceVar(&opts.extensions, "ext", slices.Clone(corpus.DefaultExtensions), "score file extensions to read")

	return cmd
}

func runPrepare(cmd *cobra.Command, a *app, opts prepareOptions, musicDir, dir string) error {
	cfg := project.DefaultConfig()
	cfg.WindowSize = opts.windowSize

	var err error
	if cfg.Compression, err = format.ParseCompressionType(opts.compression); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidConfig, err)
	}
	if cfg.Scale, err = format.ParseScale(opts.scale); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	reader, err := corpus.NewReader(
		corpus.WithRecursive(opts.recursive),
		corpus.WithExtensions(opts.extensions...),
		corpus.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	sequences, err := reader.ReadDir(musicDir)
	if err != nil {
		return err
	}

	a.logger.Info("processing datasets", zap.Int("sequences", len(sequences)))

	c, err := codec.Build(sequences, codec.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("no data was found in %s: %w", musicDir, err)
	}

	windows, err := c.CountWindows(cfg.WindowSize)
	if err != nil {
		return err
	}
	if windows == 0 {
		a.logger.Warn("no sequence is longer than the window size, fitting will learn nothing",
			zap.Int("window_size", cfg.WindowSize))
	}

	p, err := project.Init(dir, c, cfg, project.WithLogger(a.logger))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "prepared %s: %d symbols, %d sequences, %d windows\n",
		p.Dir(), c.Size(), len(sequences), windows)

	return nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/arloliu/sarada/codec"
	"github.com/arloliu/sarada/corpus"
	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/generate"
	"github.com/arloliu/sarada/project"
	"github.com/arloliu/sarada/symbol"
)

type generateOptions struct {
	length      int
	count       int
	parallelism int
	seed        uint64
	clamp       bool
	output      string
}

func newGenerateCmd(a *app) *cobra.Command {
	opts := generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [model_dir]",
		Short: "Generate new sequences from a fitted model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, opts, modelDir(args, 0))
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.length, "length", 100, "number of symbols per sequence")
	f.IntVar(&opts.count, "count", 1, "number of sequences to generate")
	f.IntVar(&opts.parallelism, "parallel", 1, "number of sequences generated at once")
	f.Uint64Var(&opts.seed, "seed", 0, "seed for the warm-up buffer (random when unset)")
	f.BoolVar(&opts.clamp, "clamp", false, "clamp out-of-range values instead of failing")
	f.StringVarP(&opts.output, "output", "o", "", "file to write the sequences to (stdout when empty)")

	return cmd
}

func runGenerate(cmd *cobra.Command, a *app, opts generateOptions, dir string) error {
	if opts.count <= 0 {
		return fmt.Errorf("%w: count %d must be positive", errs.ErrInvalidConfig, opts.count)
	}

	p, err := project.Open(dir, project.WithLogger(a.logger))
	if err != nil {
		return err
	}
	cfg := p.Config()
	if cfg.Iterations == 0 {
		return fmt.Errorf("%w: run fit on %s first", errs.ErrModelNotFitted, dir)
	}

	c, err := p.Codec()
	if err != nil {
		return err
	}
	model, err := p.LoadModel(c.Size())
	if err != nil {
		return err
	}

	genOpts := []generate.Option{
		generate.WithWindowSize(cfg.WindowSize),
		generate.WithScale(cfg.Scale),
		generate.WithClamp(opts.clamp),
		generate.WithParallelism(opts.parallelism),
		generate.WithLogger(a.logger),
	}
	if cmd.Flags().Changed("seed") {
		genOpts = append(genOpts, generate.WithSeed(opts.seed))
	}

	results, err := generate.GenerateMany(cmd.Context(), model, c, slices.Repeat([]int{opts.length}, opts.count), genOpts...)
	if err != nil {
		return err
	}

	if opts.output == "" {
		return writeSequences(cmd.OutOrStdout(), c, results, genOpts)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("cannot create output: %w", err)
	}
	if err := writeSequences(f, c, results, genOpts); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func writeSequences(w io.Writer, c *codec.Codec[symbol.Symbol], results [][]float64, opts []generate.Option) error {
	for i, values := range results {
		seq, err := generate.Decode(c, values, opts...)
		if err != nil {
			return fmt.Errorf("sequence %d: %w", i, err)
		}
		if err := corpus.Write(w, seq); err != nil {
			return err
		}
	}

	return nil
}

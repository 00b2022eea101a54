package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arloliu/sarada/compress"
	"github.com/arloliu/sarada/format"
	"github.com/arloliu/sarada/project"
	"github.com/arloliu/sarada/snapshot"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [model_dir]",
		Short: "Show the configuration, corpus and model of a model directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, a, modelDir(args, 0))
		},
	}
}

func runInspect(cmd *cobra.Command, a *app, dir string) error {
	p, err := project.Open(dir, project.WithLogger(a.logger))
	if err != nil {
		return err
	}
	cfg := p.Config()

	c, err := p.Codec()
	if err != nil {
		return err
	}
	model, err := p.LoadModel(c.Size())
	if err != nil {
		return err
	}
	windows, err := c.CountWindows(cfg.WindowSize)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "path\t%s\n", p.Dir())
	fmt.Fprintf(w, "window size\t%d\n", cfg.WindowSize)
	fmt.Fprintf(w, "iterations\t%d\n", cfg.Iterations)
	fmt.Fprintf(w, "scale\t%s\n", cfg.Scale)
	fmt.Fprintf(w, "fingerprint\t%s\n", cfg.Fingerprint)
	fmt.Fprintf(w, "created\t%s\n", cfg.CreatedAt.Format("2006-01-02 15:04:05Z07:00"))
	if cfg.FittedAt != nil {
		fmt.Fprintf(w, "fitted\t%s\n", cfg.FittedAt.Format("2006-01-02 15:04:05Z07:00"))
	}
	fmt.Fprintf(w, "symbols\t%d\n", c.Size())
	fmt.Fprintf(w, "sequences\t%d\n", len(c.Corpus()))
	fmt.Fprintf(w, "windows\t%d\n", windows)
	fmt.Fprintf(w, "fitted windows\t%d\n", model.Windows())
	for _, name := range []string{project.CorpusFile, project.ModelFile} {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil {
			fmt.Fprintf(w, "%s\t%d bytes (%s)\n", name, info.Size(), cfg.Compression)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	// Compare every algorithm on the uncompressed snapshot payload.
	raw, err := snapshot.Encode(c, snapshot.MusicalSymbols{}, snapshot.WithCompression(format.CompressionNone))
	if err != nil {
		return err
	}
	payload := raw[snapshot.HeaderSize:]

	fmt.Fprintln(cmd.OutOrStdout())
	w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "compression\tbytes\tratio\tsavings")
	for _, ct := range []format.CompressionType{format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		stats, err := compress.Measure(ct, payload)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%.3f\t%.1f%%\n", ct, stats.CompressedSize, stats.CompressionRatio(), stats.SpaceSavings())
	}

	return w.Flush()
}

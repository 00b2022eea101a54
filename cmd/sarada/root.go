package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultModelDir = "model"

// app carries state shared by every command.
type app struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "sarada",
		Short:         "Learn symbol sequences from scores and generate new ones",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if a.logger != nil {
				return nil
			}

			logger, err := newLogger(a.verbose)
			if err != nil {
				return err
			}
			a.logger = logger

			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newPrepareCmd(a),
		newFitCmd(a),
		newGenerateCmd(a),
		newInspectCmd(a),
	)

	return root
}

// newLogger builds a human-readable logger on stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true
	cfg.Sampling = nil
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	return cfg.Build()
}

// modelDir returns the optional model directory argument at index i.
func modelDir(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}

	return defaultModelDir
}

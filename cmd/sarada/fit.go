package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/sarada/errs"
	"github.com/arloliu/sarada/project"
)

func newFitCmd(a *app) *cobra.Command {
	var epochs int

	cmd := &cobra.Command{
		Use:   "fit [model_dir]",
		Short: "Fit the model of a prepared directory",
		Long: `Fit the model of a prepared directory.

Every epoch adds each training window to the transition counts once more, and
counts keep growing across fit runs. More epochs therefore weigh observed
transitions more heavily against the add-one smoothing of unseen ones.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(cmd, a, modelDir(args, 0), epochs)
		},
	}

	cmd.Flags().IntVar(&epochs, "epochs", 100, "number of passes over the training windows; each pass adds its counts again")

	return cmd
}

func runFit(cmd *cobra.Command, a *app, dir string, epochs int) error {
	if epochs <= 0 {
		return fmt.Errorf("%w: epochs %d must be positive", errs.ErrInvalidConfig, epochs)
	}

	p, err := project.Open(dir, project.WithLogger(a.logger))
	if err != nil {
		return err
	}

	c, err := p.Codec()
	if err != nil {
		return err
	}
	model, err := p.LoadModel(c.Size())
	if err != nil {
		return err
	}

	windows, err := c.Windows(p.Config().WindowSize)
	if err != nil {
		return err
	}

	seen := 0
	for epoch := range epochs {
		n, err := model.Fit(windows)
		if err != nil {
			return fmt.Errorf("epoch %d: %w", epoch+1, err)
		}
		seen += n
		a.logger.Debug("epoch finished", zap.Int("epoch", epoch+1), zap.Int("windows", n))
	}

	if err := p.SaveModel(model); err != nil {
		return err
	}
	if err := p.RecordFit(epochs); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "fitted %s: %d epochs, %d windows, %d iterations in total\n",
		p.Dir(), epochs, seen, p.Config().Iterations)

	return nil
}

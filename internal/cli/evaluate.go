package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/parallign"
	"github.com/happyhackingspace/parallign/internal/storage"
)

func (c *CLI) newEvaluateCommand() *cobra.Command {
	var data string
	var cvFolds int
	var opts trainOptions

	cmd := &cobra.Command{
		Use:     "evaluate",
		Short:   "Measure alignment coverage via grouped cross-validation",
		Example: `  parallign evaluate --data pairs.tsv --cv 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			tc, err := opts.trainConfig(cmd, cfg, c.verbose)
			if err != nil {
				return err
			}
			pairs, err := storage.Load(cmd.Context(), data, storage.DefaultIterOptions())
			if err != nil {
				return err
			}

			slog.Info("Evaluating", "folds", cvFolds, "data", data, "pairs", len(pairs))
			start := time.Now()
			result, err := parallign.Evaluate(pairs, &parallign.EvalConfig{
				Folds: cvFolds,
				Train: tc,
			})
			if err != nil {
				return err
			}
			slog.Debug("Evaluation completed", "duration", time.Since(start))

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Folds: %d  Pairs: %d\n", result.Folds, result.Pairs)
			_, _ = fmt.Fprintf(out, "Mean score: %.2f\n", result.MeanScore)
			_, _ = fmt.Fprintf(out, "Corresponding segments: %.1f%% (%d/%d)\n",
				result.CorrespondingRatio*100, result.Corresponding, result.Segments)
			_, _ = fmt.Fprintf(out, "Token coverage: %.1f%% (%d/%d tokens)\n",
				result.Coverage*100, result.CoveredTokens, result.TotalTokens)
			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "data", "Pair file, folder of pair files, or URL")
	cmd.Flags().IntVar(&cvFolds, "cv", 10, "Number of cross-validation folds")
	opts.register(cmd)
	return cmd
}

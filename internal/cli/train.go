package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/parallign"
	"github.com/happyhackingspace/parallign/internal/modelstore"
	"github.com/happyhackingspace/parallign/internal/storage"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	var data string
	var dedupe, strict bool
	var opts trainOptions
	var so storeOptions

	cmd := &cobra.Command{
		Use:   "train <modelfile>",
		Short: "Train a correspondence model on parallel string pairs",
		Args:  cobra.ExactArgs(1),
		Example: `  parallign train model.json --data pairs.tsv
  parallign train model.json --data data/ --repeat 2 --normalize nfc,lower
  parallign train model.json --data https://example.org/table.html
  parallign train model.json --data pairs.tsv --store redis --name ru -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			modelPath := args[0]
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			tc, err := opts.trainConfig(cmd, cfg, c.verbose)
			if err != nil {
				return err
			}

			pairs, err := storage.Load(cmd.Context(), data, storage.IterOptions{
				DropDuplicates: dedupe,
				SkipMalformed:  !strict,
				Verbose:        c.verbose,
			})
			if err != nil {
				return err
			}

			slog.Info("Training model", "data", data, "pairs", len(pairs), "output", modelPath)
			start := time.Now()
			model, err := parallign.Train(pairs, tc)
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "correspondences", model.Len(), "duration", time.Since(start))

			if err := parallign.Save(model, modelPath); err != nil {
				return err
			}
			slog.Info("Model saved", "path", modelPath)

			store, err := so.open(cmd, cfg)
			if err != nil {
				return err
			}
			if store != nil {
				name := so.name
				if name == "" {
					name = storage.ModelName(data)
				}
				if err := modelstore.SaveModel(cmd.Context(), store, name, model); err != nil {
					return err
				}
				slog.Info("Model stored", "store", so.kind, "name", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "data", "Pair file, folder of pair files, or URL")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "Drop repeated (source, target) pairs")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on malformed records instead of skipping them")
	opts.register(cmd)
	so.register(cmd)
	return cmd
}

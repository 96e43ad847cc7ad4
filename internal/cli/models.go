package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) newModelsCommand() *cobra.Command {
	var so storeOptions

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models in a model store",
		Example: `  parallign models --store file --store-location models
  parallign models --store redis`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := so.open(cmd, cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("--store is required")
			}
			names, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), joinModels(names))
			return nil
		},
	}

	so.register(cmd)
	return cmd
}

func joinModels(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, "\n")
}

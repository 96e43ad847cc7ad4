package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/parallign"
	"github.com/happyhackingspace/parallign/align"
)

func (c *CLI) newInspectCommand() *cobra.Command {
	var top int
	var opts textOptions
	var so storeOptions

	cmd := &cobra.Command{
		Use:   "inspect <modelfile> [source]",
		Short: "List learned correspondences, optionally for one source fragment",
		Args:  cobra.RangeArgs(1, 2),
		Example: `  parallign inspect model.json
  parallign inspect model.json ph --top 5
  parallign inspect - sh --store redis --name en`,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := c.loadModel(cmd.Context(), cmd, &so, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				entries := byWeight(model)
				if top > 0 && len(entries) > top {
					entries = entries[:top]
				}
				_, _ = fmt.Fprintf(out, "%d correspondences\n", model.Len())
				for _, e := range entries {
					src, _ := e.Key.Source()
					tgt, _ := e.Key.Target()
					_, _ = fmt.Fprintf(out, "%s\t%s\t%d\n", sideText(src), sideText(tgt), e.Count)
				}
				return nil
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ac, err := opts.alignConfig(cmd, cfg)
			if err != nil {
				return err
			}
			source, err := parallign.Preprocess(ac.Tokenizer, ac.Normalizer, args[1])
			if err != nil {
				return err
			}
			corrs := model.Correspondences(source)
			if top > 0 && len(corrs) > top {
				corrs = corrs[:top]
			}
			if len(corrs) == 0 {
				_, _ = fmt.Fprintf(out, "No correspondences for %q\n", args[1])
				return nil
			}
			for _, cr := range corrs {
				_, _ = fmt.Fprintf(out, "%s\t%s\t%d\n", sideText(source), sideText(cr.Target), cr.Count)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "Show at most this many entries (0 for all)")
	opts.register(cmd)
	so.register(cmd)
	return cmd
}

// byWeight orders entries by descending weight, then by key order.
func byWeight(model *parallign.Model) []align.Entry {
	entries := model.Entries()
	weight := func(e align.Entry) float64 {
		src, _ := e.Key.Source()
		tgt, _ := e.Key.Target()
		return model.Weight(src, tgt)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return weight(entries[i]) > weight(entries[j])
	})
	return entries
}

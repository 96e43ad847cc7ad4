package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/parallign"
	"github.com/happyhackingspace/parallign/align"
	"github.com/happyhackingspace/parallign/internal/storage"
)

// alignOutput is one line of align output.
type alignOutput struct {
	Source    string          `json:"source"`
	Target    string          `json:"target"`
	Alignment align.Alignment `json:"alignment"`
	Score     float64         `json:"score"`
}

func (c *CLI) newAlignCommand() *cobra.Command {
	var modelPath string
	var text bool
	var opts textOptions
	var so storeOptions

	cmd := &cobra.Command{
		Use:   "align [source target]",
		Short: "Align a string pair, or tab-separated pairs from stdin",
		Args:  cobra.RangeArgs(0, 2),
		Example: `  # Align one pair
  parallign align phone fon --model model.json

  # Align tab-separated pairs from stdin, one JSON object per line
  cat pairs.tsv | parallign align --model model.json

  # Human readable output
  parallign align phone fon --model model.json --text

  # Use a model from Redis
  parallign align phone fon --store redis --name en`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return fmt.Errorf("align needs both a source and a target")
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ac, err := opts.alignConfig(cmd, cfg)
			if err != nil {
				return err
			}

			var pairs []parallign.Pair
			if len(args) == 2 {
				pairs = []parallign.Pair{{Source: args[0], Target: args[1]}}
			} else {
				in := cmd.InOrStdin()
				if f, ok := in.(*os.File); ok && isTerminal(f) {
					return cmd.Help()
				}
				pairs, err = storage.Decode(in, storage.FormatTSV, "stdin", storage.DefaultIterOptions())
				if err != nil {
					return err
				}
			}

			start := time.Now()
			model, err := c.loadModel(cmd.Context(), cmd, &so, modelPath)
			if err != nil {
				return err
			}
			slog.Debug("Model loaded", "correspondences", model.Len(), "duration", time.Since(start))

			start = time.Now()
			results, err := parallign.AlignAll(pairs, model, ac)
			if err != nil {
				return err
			}
			slog.Debug("Alignment completed", "pairs", len(pairs), "duration", time.Since(start))

			out := cmd.OutOrStdout()
			for i, r := range results {
				if text {
					writeText(out, r)
					continue
				}
				line, err := json.Marshal(alignOutput{
					Source:    pairs[i].Source,
					Target:    pairs[i].Target,
					Alignment: r.Alignment,
					Score:     r.Score,
				})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, string(line))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "Path to model file")
	cmd.Flags().BoolVar(&text, "text", false, "Print source|target segments instead of JSON")
	opts.register(cmd)
	so.register(cmd)
	return cmd
}

// writeText prints segments as source|target separated by spaces, with
// "-" standing for an absent side, followed by the score.
func writeText(w io.Writer, r parallign.Result) {
	segments := make([]string, len(r.Alignment))
	for i, p := range r.Alignment {
		segments[i] = sideText(p.Source) + "|" + sideText(p.Target)
	}
	_, _ = fmt.Fprintf(w, "%s\t%g\n", strings.Join(segments, " "), r.Score)
}

func sideText(f align.Fragment) string {
	if len(f) == 0 {
		return "-"
	}
	return f.String()
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

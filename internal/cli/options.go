package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/parallign"
	"github.com/happyhackingspace/parallign/internal/modelstore"
)

// textOptions selects how raw strings become tokens. A model must be used
// with the same options it was trained with.
type textOptions struct {
	tokenizer string
	normalize []string
	workers   int
}

func (o *textOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.tokenizer, "tokenizer", "chars", "Tokenizer: chars, words or whitespace")
	f.StringSliceVar(&o.normalize, "normalize", nil, "Token normalizers applied in order: identity, lower, nfc, nfkc, trim")
	f.IntVar(&o.workers, "workers", 0, "Parallel workers (default: number of CPUs)")
}

func (o *textOptions) alignConfig(cmd *cobra.Command, cfg *fileConfig) (*parallign.AlignConfig, error) {
	name := o.tokenizer
	if !cmd.Flags().Changed("tokenizer") && cfg.Tokenizer != "" {
		name = cfg.Tokenizer
	}
	norms := o.normalize
	if !cmd.Flags().Changed("normalize") && len(cfg.Normalize) > 0 {
		norms = cfg.Normalize
	}
	workers := o.workers
	if !cmd.Flags().Changed("workers") && cfg.Workers > 0 {
		workers = cfg.Workers
	}

	tok, err := parallign.TokenizerByName(name)
	if err != nil {
		return nil, err
	}
	norm, err := parallign.NormalizerByNames(norms...)
	if err != nil {
		return nil, err
	}
	ac := parallign.DefaultAlignConfig()
	ac.Tokenizer = tok
	ac.Normalizer = norm
	if workers > 0 {
		ac.Workers = workers
	}
	return &ac, nil
}

// trainOptions adds the trainer parameters to textOptions.
type trainOptions struct {
	textOptions
	repeat       int
	significance float64
}

func (o *trainOptions) register(cmd *cobra.Command) {
	o.textOptions.register(cmd)
	d := parallign.DefaultTrainConfig()
	cmd.Flags().IntVar(&o.repeat, "repeat", d.RepeatIterations, "Re-estimation rounds after the initial model")
	cmd.Flags().Float64Var(&o.significance, "significance", d.SignificanceLevel, "Significance level for accepting a correspondence")
}

func (o *trainOptions) trainConfig(cmd *cobra.Command, cfg *fileConfig, verbose bool) (*parallign.TrainConfig, error) {
	ac, err := o.alignConfig(cmd, cfg)
	if err != nil {
		return nil, err
	}
	tc := parallign.DefaultTrainConfig()
	tc.Tokenizer = ac.Tokenizer
	tc.Normalizer = ac.Normalizer
	tc.Workers = ac.Workers
	tc.Verbose = verbose

	tc.RepeatIterations = o.repeat
	if !cmd.Flags().Changed("repeat") && cfg.Repeat != nil {
		tc.RepeatIterations = *cfg.Repeat
	}
	tc.SignificanceLevel = o.significance
	if !cmd.Flags().Changed("significance") && cfg.Significance != nil {
		tc.SignificanceLevel = *cfg.Significance
	}
	return &tc, nil
}

// storeOptions addresses a model inside a model store.
type storeOptions struct {
	kind     string
	location string
	name     string
}

func (o *storeOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.kind, "store", "", "Model store: file or redis")
	f.StringVar(&o.location, "store-location", "", "Store directory (file) or address (redis, default from PARALLIGN_REDIS_ADDR)")
	f.StringVar(&o.name, "name", "", "Model name inside the store")
}

// open returns nil when no store is configured.
func (o *storeOptions) open(cmd *cobra.Command, cfg *fileConfig) (modelstore.Store, error) {
	kind := o.kind
	if !cmd.Flags().Changed("store") && cfg.Store != "" {
		kind = cfg.Store
	}
	if kind == "" {
		return nil, nil
	}
	location := o.location
	if !cmd.Flags().Changed("store-location") && cfg.StoreLocation != "" {
		location = cfg.StoreLocation
	}
	return modelstore.Open(kind, location)
}

// loadModel reads the model from the store when one is configured and from
// path otherwise.
func (c *CLI) loadModel(ctx context.Context, cmd *cobra.Command, so *storeOptions, path string) (*parallign.Model, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := so.open(cmd, cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		if path == "" {
			return nil, fmt.Errorf("no model given: pass --model or --store with --name")
		}
		slog.Debug("Loading model", "path", path)
		return parallign.Load(path)
	}
	if so.name == "" {
		return nil, fmt.Errorf("--name is required with --store")
	}
	slog.Debug("Loading model from store", "store", so.kind, "name", so.name)
	return modelstore.LoadModel(ctx, store, so.name)
}

package align

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/happyhackingspace/parallign/internal/parallel"
)

// TrainerConfig holds model training parameters.
type TrainerConfig struct {
	RepeatIterations  int     // re-alignment rounds after the initial count
	SignificanceLevel float64 // must lie in (0, 1)
	Workers           int     // concurrent counting shards; 1 runs sequentially
	Verbose           bool
}

// DefaultTrainerConfig returns the default training config.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		RepeatIterations:  0,
		SignificanceLevel: 0.05,
		Workers:           runtime.NumCPU(),
	}
}

// Validate fails with ErrConfiguration on out-of-range parameters.
func (c TrainerConfig) Validate() error {
	if c.RepeatIterations < 0 {
		return configError("repeat iterations must not be negative, got %d", c.RepeatIterations)
	}
	if !(c.SignificanceLevel > 0 && c.SignificanceLevel < 1) {
		return configError("significance level must lie in (0, 1), got %v", c.SignificanceLevel)
	}
	return nil
}

// Train builds a model from tokenized pairs: an initial count over raw pairs,
// then RepeatIterations rounds of align-and-recount against the previous model.
func Train(pairs []Pair, config TrainerConfig) (*Model, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	for _, p := range pairs {
		if err := ValidateTokens(p.Source); err != nil {
			return nil, err
		}
		if err := ValidateTokens(p.Target); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	model := initialModel(pairs, config)
	if config.Verbose {
		slog.Debug("Initial model built", "pairs", len(pairs), "correspondences", model.Len(), "duration", time.Since(start))
	}
	for round := 1; round <= config.RepeatIterations; round++ {
		start = time.Now()
		next, err := refineModel(model, pairs, config)
		if err != nil {
			return nil, err
		}
		model = next
		if config.Verbose {
			slog.Debug("Training round completed", "round", round, "correspondences", model.Len(), "duration", time.Since(start))
		}
	}
	return model, nil
}

// shardCount runs count over each shard of pairs into its own table and
// merges the tables in shard order.
func shardCount(pairs []Pair, workers int, count func(p Pair, t *Table) (int, error)) (*Table, int, error) {
	shards := parallel.Shards(len(pairs), workers)
	tables := make([]*Table, len(shards))
	samples := make([]int, len(shards))
	errs := make([]error, len(shards))
	parallel.ForEach(len(shards), workers, func(s int) {
		t := NewTable()
		for _, p := range pairs[shards[s][0]:shards[s][1]] {
			n, err := count(p, t)
			if err != nil {
				errs[s] = err
				return
			}
			samples[s] += n
		}
		tables[s] = t
	})

	merged := NewTable()
	total := 0
	for s := range shards {
		if errs[s] != nil {
			return nil, 0, errs[s]
		}
		merged.Merge(tables[s])
		total += samples[s]
	}
	return merged, total, nil
}

func initialModel(pairs []Pair, config TrainerConfig) *Model {
	raw, _, _ := shardCount(pairs, config.Workers, func(p Pair, t *Table) (int, error) {
		CountSimple(p.Source, p.Target, t)
		return 1, nil
	})
	return NewModel(FilterSignificant(raw, len(pairs), config.SignificanceLevel))
}

func refineModel(model *Model, pairs []Pair, config TrainerConfig) (*Model, error) {
	raw, sampleSize, err := shardCount(pairs, config.Workers, func(p Pair, t *Table) (int, error) {
		alignment, _, err := Align(p.Source, p.Target, model)
		if err != nil {
			return 0, err
		}
		CountAligned(alignment, t)
		return alignment.CorrespondingCount(), nil
	})
	if err != nil {
		return nil, err
	}
	if config.Verbose {
		slog.Debug("Recounted aligned pairs", "sample_size", sampleSize, "raw_entries", raw.Len())
	}
	return NewModel(FilterSignificant(raw, sampleSize, config.SignificanceLevel)), nil
}

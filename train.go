package parallign

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/happyhackingspace/parallign/align"
	"github.com/happyhackingspace/parallign/internal/textutil"
)

// TrainConfig holds configuration for training.
type TrainConfig struct {
	Tokenizer         Tokenizer
	Normalizer        Normalizer
	RepeatIterations  int
	SignificanceLevel float64
	Workers           int
	Verbose           bool
}

// DefaultTrainConfig returns the default training config.
func DefaultTrainConfig() TrainConfig {
	tc := align.DefaultTrainerConfig()
	return TrainConfig{
		Tokenizer:         textutil.Chars,
		Normalizer:        textutil.Identity,
		RepeatIterations:  tc.RepeatIterations,
		SignificanceLevel: tc.SignificanceLevel,
		Workers:           tc.Workers,
	}
}

func (c TrainConfig) trainerConfig() align.TrainerConfig {
	return align.TrainerConfig{
		RepeatIterations:  c.RepeatIterations,
		SignificanceLevel: c.SignificanceLevel,
		Workers:           c.Workers,
		Verbose:           c.Verbose,
	}
}

func (c TrainConfig) alignConfig() AlignConfig {
	return AlignConfig{Tokenizer: c.Tokenizer, Normalizer: c.Normalizer, Workers: c.Workers}
}

// EvalConfig holds configuration for evaluation.
type EvalConfig struct {
	Folds int
	Train *TrainConfig
}

// EvalResult holds cross-validation evaluation results.
type EvalResult struct {
	Folds              int
	Pairs              int
	MeanScore          float64
	CorrespondingRatio float64 // corresponding fragment pairs / all fragment pairs
	Coverage           float64 // tokens inside corresponding pairs / all tokens
	Segments           int
	Corresponding      int
	CoveredTokens      int
	TotalTokens        int
}

// Train learns a model from raw string pairs. A nil config uses defaults.
func Train(pairs []Pair, config *TrainConfig) (*Model, error) {
	c := DefaultTrainConfig()
	if config != nil {
		c = *config
		if c.Tokenizer == nil {
			c.Tokenizer = textutil.Chars
		}
		if c.Normalizer == nil {
			c.Normalizer = textutil.Identity
		}
	}
	tc := c.trainerConfig()
	if err := tc.Validate(); err != nil {
		return nil, fmt.Errorf("parallign: %w", err)
	}

	tokenized, err := tokenizePairs(pairs, c.Tokenizer, c.Normalizer)
	if err != nil {
		return nil, fmt.Errorf("parallign: %w", err)
	}

	start := time.Now()
	model, err := align.Train(tokenized, tc)
	if err != nil {
		return nil, fmt.Errorf("parallign: %w", err)
	}
	if c.Verbose {
		slog.Debug("Model trained", "pairs", len(pairs), "rounds", c.RepeatIterations, "correspondences", model.Len(), "duration", time.Since(start))
	}
	return model, nil
}

func tokenizePairs(pairs []Pair, tokenizer Tokenizer, normalizer Normalizer) ([]align.Pair, error) {
	out := make([]align.Pair, len(pairs))
	for i, p := range pairs {
		src, err := Preprocess(tokenizer, normalizer, p.Source)
		if err != nil {
			return nil, fmt.Errorf("pair %d source: %w", i, err)
		}
		tgt, err := Preprocess(tokenizer, normalizer, p.Target)
		if err != nil {
			return nil, fmt.Errorf("pair %d target: %w", i, err)
		}
		out[i] = align.Pair{Source: src, Target: tgt}
	}
	return out, nil
}

// Evaluate runs grouped k-fold cross-validation: each fold is aligned with a
// model trained on the remaining folds. Pairs sharing a source string always
// land in the same fold.
func Evaluate(pairs []Pair, config *EvalConfig) (*EvalResult, error) {
	nFolds := 10
	tc := DefaultTrainConfig()
	if config != nil {
		if config.Folds > 0 {
			nFolds = config.Folds
		}
		if config.Train != nil {
			tc = *config.Train
		}
	}

	groups := sourceGroups(pairs)
	folds := groupKFold(groups, nFolds)
	if len(folds) < 2 {
		return nil, fmt.Errorf("parallign: need at least 2 distinct sources for cross-validation, got %d", len(folds))
	}

	result := &EvalResult{Folds: len(folds)}
	totalScore := 0.0
	for f, testIdx := range folds {
		testSet := makeTestSet(len(pairs), testIdx)
		trainPairs, testPairs := splitByIndex(pairs, testSet)

		model, err := Train(trainPairs, &tc)
		if err != nil {
			return nil, err
		}
		results, err := AlignAll(testPairs, model, &AlignConfig{
			Tokenizer:  tc.Tokenizer,
			Normalizer: tc.Normalizer,
			Workers:    tc.Workers,
		})
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			totalScore += r.Score
			result.Pairs++
			for _, p := range r.Alignment {
				n := len(p.Source) + len(p.Target)
				result.Segments++
				result.TotalTokens += n
				if p.Corresponding() {
					result.Corresponding++
					result.CoveredTokens += n
				}
			}
		}
		if tc.Verbose {
			slog.Debug("Fold evaluated", "fold", f+1, "train", len(trainPairs), "test", len(testPairs), "correspondences", model.Len())
		}
	}

	if result.Pairs > 0 {
		result.MeanScore = totalScore / float64(result.Pairs)
	}
	if result.Segments > 0 {
		result.CorrespondingRatio = float64(result.Corresponding) / float64(result.Segments)
	}
	if result.TotalTokens > 0 {
		result.Coverage = float64(result.CoveredTokens) / float64(result.TotalTokens)
	}
	return result, nil
}

// groupKFold assigns whole groups to folds round-robin in order of first appearance.
func groupKFold(groups []int, nFolds int) [][]int {
	var ordered []int
	seen := make(map[int]bool)
	for _, g := range groups {
		if !seen[g] {
			seen[g] = true
			ordered = append(ordered, g)
		}
	}

	if nFolds > len(ordered) {
		nFolds = len(ordered)
	}
	if nFolds == 0 {
		return nil
	}

	groupToFold := make(map[int]int, len(ordered))
	for i, g := range ordered {
		groupToFold[g] = i % nFolds
	}

	folds := make([][]int, nFolds)
	for i, g := range groups {
		fold := groupToFold[g]
		folds[fold] = append(folds[fold], i)
	}
	return folds
}

func sourceGroups(pairs []Pair) []int {
	groups := make([]int, len(pairs))
	ids := make(map[string]int)
	for i, p := range pairs {
		if _, ok := ids[p.Source]; !ok {
			ids[p.Source] = len(ids)
		}
		groups[i] = ids[p.Source]
	}
	return groups
}

func makeTestSet(n int, testIdx []int) []bool {
	set := make([]bool, n)
	for _, i := range testIdx {
		set[i] = true
	}
	return set
}

func splitByIndex(pairs []Pair, testSet []bool) (train, test []Pair) {
	for i, p := range pairs {
		if testSet[i] {
			test = append(test, p)
		} else {
			train = append(train, p)
		}
	}
	return train, test
}

// Package parallign learns sub-unit correspondences between parallel
// strings (a word and its transliteration, a spelling and its pronunciation)
// and aligns new pairs against the learned model.
//
//	model, _ := parallign.Train(pairs, nil)
//	res, _ := parallign.Align("phone", "fon", model, nil)
//	for _, p := range res.Alignment {
//	    fmt.Println(p.Source, p.Target) // [p h] [f], [o] [o], ...
//	}
package parallign

import (
	"fmt"
	"runtime"

	"github.com/happyhackingspace/parallign/align"
	"github.com/happyhackingspace/parallign/internal/parallel"
	"github.com/happyhackingspace/parallign/internal/textutil"
)

// Tokenizer splits a raw string into tokens.
type Tokenizer = textutil.Tokenizer

// Normalizer maps a token to its normalized form.
type Normalizer = textutil.Normalizer

// Model is a trained, immutable correspondence model.
type Model = align.Model

// Pair is a raw source/target training example.
type Pair struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Result holds the alignment of one pair and its score.
type Result struct {
	Alignment align.Alignment `json:"alignment"`
	Score     float64         `json:"score"`
}

// AlignConfig holds preprocessing options for alignment.
// Nil functions fall back to character tokenization and identity normalization.
type AlignConfig struct {
	Tokenizer  Tokenizer
	Normalizer Normalizer
	Workers    int // used by AlignAll
}

// DefaultAlignConfig returns the default alignment config.
func DefaultAlignConfig() AlignConfig {
	return AlignConfig{
		Tokenizer:  textutil.Chars,
		Normalizer: textutil.Identity,
		Workers:    runtime.NumCPU(),
	}
}

// TokenizerByName returns a built-in tokenizer: chars, words or whitespace.
func TokenizerByName(name string) (Tokenizer, error) {
	t, err := textutil.TokenizerByName(name)
	if err != nil {
		return nil, fmt.Errorf("parallign: %w: %v", align.ErrConfiguration, err)
	}
	return t, nil
}

// NormalizerByNames chains built-in normalizers: identity, lower, nfc, nfkc, trim.
func NormalizerByNames(names ...string) (Normalizer, error) {
	n, err := textutil.NormalizerByNames(names)
	if err != nil {
		return nil, fmt.Errorf("parallign: %w: %v", align.ErrConfiguration, err)
	}
	return n, nil
}

// Preprocess tokenizes and normalizes s. It fails with align.ErrConfiguration
// if a token contains the reserved separator.
func Preprocess(tokenizer Tokenizer, normalizer Normalizer, s string) (align.Fragment, error) {
	if tokenizer == nil {
		tokenizer = textutil.Chars
	}
	if normalizer == nil {
		normalizer = textutil.Identity
	}
	raw := tokenizer(s)
	tokens := make(align.Fragment, len(raw))
	for i, tok := range raw {
		tokens[i] = normalizer(tok)
	}
	if err := align.ValidateTokens(tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func alignConfigOrDefault(config *AlignConfig) AlignConfig {
	c := DefaultAlignConfig()
	if config == nil {
		return c
	}
	if config.Tokenizer != nil {
		c.Tokenizer = config.Tokenizer
	}
	if config.Normalizer != nil {
		c.Normalizer = config.Normalizer
	}
	if config.Workers > 0 {
		c.Workers = config.Workers
	}
	return c
}

// Align computes the best alignment of source and target under model.
func Align(source, target string, model *Model, config *AlignConfig) (*Result, error) {
	if model == nil {
		return nil, fmt.Errorf("parallign: model not initialized")
	}
	c := alignConfigOrDefault(config)
	res, err := alignOne(source, target, model, c)
	if err != nil {
		return nil, fmt.Errorf("parallign: %w", err)
	}
	return res, nil
}

func alignOne(source, target string, model *Model, c AlignConfig) (*Result, error) {
	src, err := Preprocess(c.Tokenizer, c.Normalizer, source)
	if err != nil {
		return nil, err
	}
	tgt, err := Preprocess(c.Tokenizer, c.Normalizer, target)
	if err != nil {
		return nil, err
	}
	alignment, score, err := align.Align(src, tgt, model)
	if err != nil {
		return nil, err
	}
	return &Result{Alignment: alignment, Score: score}, nil
}

// AlignAll aligns every pair concurrently and returns results in input order.
func AlignAll(pairs []Pair, model *Model, config *AlignConfig) ([]Result, error) {
	if model == nil {
		return nil, fmt.Errorf("parallign: model not initialized")
	}
	c := alignConfigOrDefault(config)
	results := make([]Result, len(pairs))
	errs := make([]error, len(pairs))
	parallel.ForEach(len(pairs), c.Workers, func(i int) {
		res, err := alignOne(pairs[i].Source, pairs[i].Target, model, c)
		if err != nil {
			errs[i] = err
			return
		}
		results[i] = *res
	})
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("parallign: pair %d: %w", i, err)
		}
	}
	return results, nil
}

// Load reads a model file written by Save.
func Load(path string) (*Model, error) {
	m, err := align.LoadModel(path)
	if err != nil {
		return nil, fmt.Errorf("parallign: %w", err)
	}
	return m, nil
}

// Save writes model to path.
func Save(model *Model, path string) error {
	if model == nil {
		return fmt.Errorf("parallign: model not initialized")
	}
	if err := align.SaveModel(model, path); err != nil {
		return fmt.Errorf("parallign: %w", err)
	}
	return nil
}

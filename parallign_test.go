package parallign

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/happyhackingspace/parallign/align"
)

func translitPairs() []Pair {
	var pairs []Pair
	words := [][2]string{
		{"ab", "xy"}, {"cd", "zw"}, {"ac", "xz"}, {"bd", "yw"}, {"a", "x"},
		{"b", "y"}, {"c", "z"}, {"d", "w"}, {"da", "wx"}, {"bc", "yz"},
	}
	for range 3 {
		for _, w := range words {
			pairs = append(pairs, Pair{Source: w[0], Target: w[1]})
		}
	}
	return pairs
}

func sequential() *TrainConfig {
	c := DefaultTrainConfig()
	c.Workers = 1
	return &c
}

func TestTrainAndAlign(t *testing.T) {
	model, err := Train(translitPairs(), sequential())
	if err != nil {
		t.Fatal(err)
	}
	if model.Count(align.Fragment{"a"}, align.Fragment{"x"}) == 0 {
		t.Fatalf("a/x not learned: %v", model.Entries())
	}

	res, err := Align("abba", "xyyx", model, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Score <= 0 {
		t.Errorf("score = %v, want positive", res.Score)
	}
	if got := res.Alignment.Sources().String(); got != "abba" {
		t.Errorf("sources = %q, want abba", got)
	}
	if got := res.Alignment.Targets().String(); got != "xyyx" {
		t.Errorf("targets = %q, want xyyx", got)
	}
	for _, p := range res.Alignment {
		if !p.Corresponding() {
			t.Errorf("unexpected gap %v in %v", p, res.Alignment)
		}
	}
}

func TestAlignEmptyModel(t *testing.T) {
	res, err := Align("ab", "xy", align.NewModel(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 0 {
		t.Errorf("score = %v, want 0", res.Score)
	}
	if res.Alignment.CorrespondingCount() != 0 {
		t.Errorf("alignment %v should only contain insertions and deletions", res.Alignment)
	}
}

func TestTrainConfigurationErrors(t *testing.T) {
	bad := DefaultTrainConfig()
	bad.SignificanceLevel = 1.5
	if _, err := Train(translitPairs(), &bad); !errors.Is(err, align.ErrConfiguration) {
		t.Errorf("significance 1.5: err = %v, want ErrConfiguration", err)
	}

	bad = DefaultTrainConfig()
	bad.RepeatIterations = -2
	if _, err := Train(translitPairs(), &bad); !errors.Is(err, align.ErrConfiguration) {
		t.Errorf("negative iterations: err = %v, want ErrConfiguration", err)
	}

	bad = DefaultTrainConfig()
	bad.Tokenizer = func(s string) []string { return []string{s + "\x00"} }
	if _, err := Train(translitPairs(), &bad); !errors.Is(err, align.ErrConfiguration) {
		t.Errorf("separator token: err = %v, want ErrConfiguration", err)
	}
}

func TestAlignRejectsSeparator(t *testing.T) {
	_, err := Align("a\x00", "x", align.NewModel(nil), nil)
	if !errors.Is(err, align.ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
}

func TestAlignNilModel(t *testing.T) {
	if _, err := Align("a", "x", nil, nil); err == nil {
		t.Error("expected error for nil model")
	}
}

func TestTrainDeterministic(t *testing.T) {
	c := DefaultTrainConfig()
	c.RepeatIterations = 2
	var outputs [][]byte
	for range 3 {
		model, err := Train(translitPairs(), &c)
		if err != nil {
			t.Fatal(err)
		}
		data, err := model.Serialize()
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, data)
	}
	for i := 1; i < len(outputs); i++ {
		if !bytes.Equal(outputs[0], outputs[i]) {
			t.Errorf("run %d produced a different model", i)
		}
	}
}

func TestCustomTokenizerAndNormalizer(t *testing.T) {
	tok, err := TokenizerByName("whitespace")
	if err != nil {
		t.Fatal(err)
	}
	norm, err := NormalizerByNames("lower")
	if err != nil {
		t.Fatal(err)
	}
	c := DefaultTrainConfig()
	c.Tokenizer = tok
	c.Normalizer = norm
	c.Workers = 1
	var pairs []Pair
	for range 5 {
		pairs = append(pairs, Pair{"SH IP", "ʃ ɪ p"}, Pair{"sh e", "ʃ ə"}, Pair{"i t", "ɪ t"})
	}
	model, err := Train(pairs, &c)
	if err != nil {
		t.Fatal(err)
	}
	if model.Count(align.Fragment{"sh"}, align.Fragment{"ʃ"}) == 0 {
		t.Errorf("sh/ʃ not learned: %v", model.Entries())
	}

	res, err := Align("Sh IT", "ʃ ɪ t", model, &AlignConfig{Tokenizer: tok, Normalizer: norm})
	if err != nil {
		t.Fatal(err)
	}
	want := align.Fragment{"sh", "it"}
	if !reflect.DeepEqual(res.Alignment.Sources(), want) {
		t.Errorf("sources = %v, want %v", res.Alignment.Sources(), want)
	}
}

func TestAlignAllPreservesOrder(t *testing.T) {
	model, err := Train(translitPairs(), sequential())
	if err != nil {
		t.Fatal(err)
	}
	pairs := []Pair{{"ab", "xy"}, {"bbb", "yyy"}, {"", "x"}, {"a", ""}}
	results, err := AlignAll(pairs, model, &AlignConfig{Workers: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(pairs) {
		t.Fatalf("got %d results, want %d", len(results), len(pairs))
	}
	for i, p := range pairs {
		single, err := Align(p.Source, p.Target, model, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(results[i], *single) {
			t.Errorf("pair %d: AlignAll = %v, Align = %v", i, results[i], *single)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	model, err := Train(translitPairs(), sequential())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := Save(model, path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Equal(model) {
		t.Error("loaded model differs from saved model")
	}
}

func TestLoadNonExistent(t *testing.T) {
	_, err := Load("nonexistent.json")
	if err == nil {
		t.Error("expected error for nonexistent model")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"version":1,"entries":[{"count":1}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, align.ErrFormat) {
		t.Errorf("err = %v, want ErrFormat", err)
	}
	if !strings.HasPrefix(err.Error(), "parallign: ") {
		t.Errorf("error %q lacks package prefix", err)
	}
}

func TestEvaluate(t *testing.T) {
	c := sequential()
	result, err := Evaluate(translitPairs(), &EvalConfig{Folds: 5, Train: c})
	if err != nil {
		t.Fatal(err)
	}
	if result.Folds != 5 {
		t.Errorf("Folds = %d, want 5", result.Folds)
	}
	if result.Pairs != len(translitPairs()) {
		t.Errorf("Pairs = %d, want %d", result.Pairs, len(translitPairs()))
	}
	if result.Coverage <= 0 || result.Coverage > 1 {
		t.Errorf("Coverage = %v, want in (0, 1]", result.Coverage)
	}
	if result.CorrespondingRatio <= 0 || result.CorrespondingRatio > 1 {
		t.Errorf("CorrespondingRatio = %v, want in (0, 1]", result.CorrespondingRatio)
	}
}

func TestEvaluateNeedsTwoGroups(t *testing.T) {
	pairs := []Pair{{"a", "x"}, {"a", "x"}}
	if _, err := Evaluate(pairs, nil); err == nil {
		t.Error("expected error with a single source group")
	}
}

func TestGroupKFold(t *testing.T) {
	groups := []int{0, 1, 0, 2, 3, 1}
	got := groupKFold(groups, 2)
	want := [][]int{{0, 2, 3}, {1, 4, 5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("groupKFold = %v, want %v", got, want)
	}
	if got := groupKFold(groups, 10); len(got) != 4 {
		t.Errorf("folds capped at group count: got %d, want 4", len(got))
	}
}

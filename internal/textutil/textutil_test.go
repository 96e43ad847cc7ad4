package textutil

import (
	"reflect"
	"testing"
)

func TestChars(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"abc", []string{"a", "b", "c"}},
		{"", []string{}},
		{"añb", []string{"a", "ñ", "b"}},
		{"a b", []string{"a", " ", "b"}},
	}
	for _, tt := range tests {
		got := Chars(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Chars(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWords(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"hello world", []string{"hello", "world"}},
		{"user_name", []string{"user_name"}},
		{"", nil},
		{"café résumé", []string{"café", "résumé"}},
		{"hello-world", []string{"hello", "world"}},
	}
	for _, tt := range tests {
		got := Words(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Words(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWhitespace(t *testing.T) {
	got := Whitespace("  k a  t ")
	want := []string{"k", "a", "t"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Whitespace = %v, want %v", got, want)
	}
}

func TestNormalizers(t *testing.T) {
	tests := []struct {
		name string
		n    Normalizer
		in   string
		want string
	}{
		{"lower", Lower, "ÄB", "äb"},
		{"nfc", NFC, "e\u0301", "\u00e9"},
		{"nfkc", NFKC, "ﬁ", "fi"},
		{"trim", Trim, " a\t", "a"},
		{"identity", Identity, "Ab", "Ab"},
	}
	for _, tt := range tests {
		if got := tt.n(tt.in); got != tt.want {
			t.Errorf("%s(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestChain(t *testing.T) {
	n := Chain(Trim, Lower)
	if got := n(" AB "); got != "ab" {
		t.Errorf("Chain(Trim, Lower)(%q) = %q, want %q", " AB ", got, "ab")
	}
	if got := Chain()("X"); got != "X" {
		t.Errorf("empty chain changed token to %q", got)
	}
}

func TestByName(t *testing.T) {
	tok, err := TokenizerByName("")
	if err != nil {
		t.Fatal(err)
	}
	if got := tok("ab"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("default tokenizer = %v", got)
	}
	if _, err := TokenizerByName("bogus"); err == nil {
		t.Error("expected error for unknown tokenizer")
	}

	n, err := NormalizerByNames([]string{"NFC", " lower "})
	if err != nil {
		t.Fatal(err)
	}
	if got := n("E\u0301"); got != "\u00e9" {
		t.Errorf("nfc+lower = %q", got)
	}
	if _, err := NormalizerByNames([]string{"upper"}); err == nil {
		t.Error("expected error for unknown normalizer")
	}
}

func TestNormalizeWhitespaces(t *testing.T) {
	if got := NormalizeWhitespaces("line\nbreak  here"); got != "line break here" {
		t.Errorf("NormalizeWhitespaces = %q", got)
	}
}

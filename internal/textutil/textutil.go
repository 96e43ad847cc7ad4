// Package textutil provides tokenizers and token normalizers for parallel strings.
package textutil

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Tokenizer splits a string into ordered tokens.
type Tokenizer func(string) []string

// Normalizer maps a single token to its normalized form.
type Normalizer func(string) string

// Chars splits text into individual characters (Unicode code points).
func Chars(text string) []string {
	out := make([]string, 0, len(text))
	for _, r := range text {
		out = append(out, string(r))
	}
	return out
}

var tokenizeRe = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]+`)

// Words extracts Unicode word tokens, dropping punctuation and spaces.
func Words(text string) []string {
	return tokenizeRe.FindAllString(text, -1)
}

// Whitespace splits text on runs of white space.
func Whitespace(text string) []string {
	return strings.Fields(text)
}

// Identity returns the token unchanged.
func Identity(token string) string {
	return token
}

var lowerCaser = cases.Lower(language.Und)

// Lower applies Unicode full case folding to lower case.
func Lower(token string) string {
	return lowerCaser.String(token)
}

// NFC converts the token to Unicode canonical composition.
func NFC(token string) string {
	return norm.NFC.String(token)
}

// NFKC converts the token to Unicode compatibility composition.
func NFKC(token string) string {
	return norm.NFKC.String(token)
}

// Trim removes leading and trailing white space.
func Trim(token string) string {
	return strings.TrimSpace(token)
}

// Chain applies normalizers left to right.
func Chain(normalizers ...Normalizer) Normalizer {
	if len(normalizers) == 0 {
		return Identity
	}
	if len(normalizers) == 1 {
		return normalizers[0]
	}
	return func(token string) string {
		for _, n := range normalizers {
			token = n(token)
		}
		return token
	}
}

var tokenizers = map[string]Tokenizer{
	"chars":      Chars,
	"words":      Words,
	"whitespace": Whitespace,
}

var normalizers = map[string]Normalizer{
	"identity": Identity,
	"lower":    Lower,
	"nfc":      NFC,
	"nfkc":     NFKC,
	"trim":     Trim,
}

// TokenizerByName looks up a built-in tokenizer. The empty name selects Chars.
func TokenizerByName(name string) (Tokenizer, error) {
	if name == "" {
		return Chars, nil
	}
	if t, ok := tokenizers[strings.ToLower(name)]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown tokenizer %q (available: %s)", name, strings.Join(names(tokenizers), ", "))
}

// NormalizerByNames chains the named built-in normalizers in order.
func NormalizerByNames(list []string) (Normalizer, error) {
	chain := make([]Normalizer, 0, len(list))
	for _, name := range list {
		n, ok := normalizers[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown normalizer %q (available: %s)", name, strings.Join(names(normalizers), ", "))
		}
		chain = append(chain, n)
	}
	return Chain(chain...), nil
}

func names[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var (
	newlineRe    = regexp.MustCompile(`[\n\r]`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// NormalizeWhitespaces replaces newlines and multiple whitespace with a single space.
func NormalizeWhitespaces(text string) string {
	text = newlineRe.ReplaceAllString(text, " ")
	return multiSpaceRe.ReplaceAllString(text, " ")
}

// Package align learns fragment correspondences between parallel token
// sequences and computes maximum-weight monotonic alignments.
package align

import "strings"

// Separator is reserved for key encoding and must not appear inside a token.
const Separator = "\x00"

// Token is an atomic unit produced by preprocessing.
type Token = string

// Fragment is an ordered sequence of zero or more tokens.
type Fragment []Token

// String joins the fragment tokens without a delimiter.
func (f Fragment) String() string {
	return strings.Join(f, "")
}

// Equal reports whether two fragments hold the same tokens.
func (f Fragment) Equal(other Fragment) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if f[i] != other[i] {
			return false
		}
	}
	return true
}

// Pair is a tokenized training example.
type Pair struct {
	Source Fragment
	Target Fragment
}

// FragmentPair is one step of an alignment. At most one side is empty.
type FragmentPair struct {
	Source Fragment `json:"source"`
	Target Fragment `json:"target"`
}

// Corresponding reports whether both sides are non-empty.
func (p FragmentPair) Corresponding() bool {
	return len(p.Source) > 0 && len(p.Target) > 0
}

// Alignment is an ordered sequence of fragment pairs covering both sequences.
type Alignment []FragmentPair

// Sources returns the concatenation of all source fragments.
func (a Alignment) Sources() Fragment {
	out := Fragment{}
	for _, p := range a {
		out = append(out, p.Source...)
	}
	return out
}

// Targets returns the concatenation of all target fragments.
func (a Alignment) Targets() Fragment {
	out := Fragment{}
	for _, p := range a {
		out = append(out, p.Target...)
	}
	return out
}

// CorrespondingCount returns the number of pairs with both sides non-empty.
func (a Alignment) CorrespondingCount() int {
	n := 0
	for _, p := range a {
		if p.Corresponding() {
			n++
		}
	}
	return n
}

// ValidateTokens fails with ErrConfiguration if a token contains Separator.
func ValidateTokens(tokens Fragment) error {
	for _, tok := range tokens {
		if strings.Contains(tok, Separator) {
			return configError("token %q contains reserved character with code 0", tok)
		}
	}
	return nil
}

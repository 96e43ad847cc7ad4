package align

import "math"

// relativeEntropy is the binomial Kullback-Leibler divergence D(x || p).
func relativeEntropy(x, p float64) float64 {
	return x*math.Log(x/p) + (1-x)*math.Log((1-x)/(1-p))
}

// ChernoffBound estimates the probability of at least m failures in n trials
// with failure probability p.
func ChernoffBound(m, n int, p float64) float64 {
	if m <= 0 || p >= 1 {
		return 0
	}
	if m >= n || p <= 0 {
		return 1
	}
	return math.Exp(-float64(n) * relativeEntropy(float64(m)/float64(n), p))
}

// IsSignificant decides whether coOccurrences of a fragment pair with the
// given marginals is unlikely under independence at significance level alpha.
// sampleSize is the number of corresponding fragment pairs observed.
func IsSignificant(sourceOccurrences, targetOccurrences, coOccurrences, sampleSize int, alpha float64) bool {
	a := min(sourceOccurrences, sampleSize)
	b := min(targetOccurrences, sampleSize)
	k := min(coOccurrences, a, b)
	// A single co-occurrence is never generalized.
	if k <= 1 {
		return false
	}
	if float64(k) <= float64(a)*float64(b)/float64(sampleSize) {
		return false
	}
	return ChernoffBound(a-k, a, 1-float64(b)/float64(sampleSize)) < alpha
}

// FilterSignificant returns a fresh table holding only the joint entries of
// raw that pass IsSignificant. Marginal entries are never copied.
func FilterSignificant(raw *Table, sampleSize int, alpha float64) *Table {
	out := NewTable()
	for k, count := range raw.counts {
		if !k.IsJoint() {
			continue
		}
		srcOcc := raw.Get(Key{src: k.src, hasSrc: true})
		tgtOcc := raw.Get(Key{tgt: k.tgt, hasTgt: true})
		if IsSignificant(srcOcc, tgtOcc, count, sampleSize, alpha) {
			out.Add(k, count)
		}
	}
	return out
}

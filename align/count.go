package align

// Counted is a distinct fragment with its number of occurrences.
type Counted struct {
	Fragment Fragment
	Count    int
}

// CountSubsequences counts every contiguous non-empty slice of tokens.
// Repeated fragments accumulate; results keep first-occurrence order.
func CountSubsequences(tokens Fragment) []Counted {
	index := make(map[string]int)
	var out []Counted
	for start := range len(tokens) {
		for end := start + 1; end <= len(tokens); end++ {
			frag := tokens[start:end]
			enc := encodeFragment(frag)
			if i, ok := index[enc]; ok {
				out[i].Count++
				continue
			}
			index[enc] = len(out)
			out = append(out, Counted{Fragment: frag, Count: 1})
		}
	}
	return out
}

// CountSimple records marginal counts for every sub-sequence of source and
// target, and a joint count of min(sourceCount, targetCount) for every pair.
func CountSimple(source, target Fragment, t *Table) {
	srcCounted := CountSubsequences(source)
	tgtCounted := CountSubsequences(target)
	for _, s := range srcCounted {
		t.Add(SourceOnly(s.Fragment), s.Count)
	}
	for _, c := range tgtCounted {
		t.Add(TargetOnly(c.Fragment), c.Count)
	}
	for _, s := range srcCounted {
		for _, c := range tgtCounted {
			t.Add(Joint(s.Fragment, c.Fragment), min(s.Count, c.Count))
		}
	}
}

// CountAligned pools runs of one-sided pairs, isolates corresponding pairs,
// and applies CountSimple to each resulting group.
func CountAligned(a Alignment, t *Table) {
	for _, p := range mergeUnaligned(a) {
		CountSimple(p.Source, p.Target, t)
	}
}

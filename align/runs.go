package align

// SplitRuns partitions items into consecutive runs. An item for which
// isolate returns true forms a singleton run, and the item after it always
// starts a new run. All other adjacent items share a run.
func SplitRuns[T any](items []T, isolate func(T) bool) [][]T {
	var runs [][]T
	splitNext := true
	for _, item := range items {
		split := isolate(item)
		if split || splitNext {
			runs = append(runs, []T{item})
		} else {
			runs[len(runs)-1] = append(runs[len(runs)-1], item)
		}
		splitNext = split
	}
	return runs
}

// mergeUnaligned groups an alignment so that each corresponding pair stands
// alone and each maximal run of one-sided pairs is concatenated into one pair.
func mergeUnaligned(a Alignment) []Pair {
	runs := SplitRuns(a, FragmentPair.Corresponding)
	out := make([]Pair, len(runs))
	for i, run := range runs {
		p := Pair{Source: Fragment{}, Target: Fragment{}}
		for _, fp := range run {
			p.Source = append(p.Source, fp.Source...)
			p.Target = append(p.Target, fp.Target...)
		}
		out[i] = p
	}
	return out
}

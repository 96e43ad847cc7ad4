package align

// step is the number of source and target tokens consumed by one move.
type step struct {
	src, tgt int
}

func (s step) corresponding() bool {
	return s.src > 0 && s.tgt > 0
}

// grid holds the dynamic programming tables as flat (m+1)x(n+1) arrays.
type grid struct {
	cols  int
	gains []float64
	steps []step
}

func (g *grid) at(i, j int) int {
	return i*g.cols + j
}

// sliceKeys precomputes the key encoding of every contiguous slice.
// keys[start][end-start-1] encodes tokens[start:end].
func sliceKeys(tokens Fragment) [][]string {
	keys := make([][]string, len(tokens))
	for start := range tokens {
		keys[start] = make([]string, len(tokens)-start)
		for end := start + 1; end <= len(tokens); end++ {
			keys[start][end-start-1] = encodeFragment(tokens[start:end])
		}
	}
	return keys
}

// computeSteps fills the gain and step tables. A cell first takes the better
// of a one-token deletion or insertion (deletion only when strictly better),
// then any fragment pair ending at the cell that strictly improves on it.
func computeSteps(source, target Fragment, model *Model) *grid {
	rows, cols := len(source)+1, len(target)+1
	g := &grid{
		cols:  cols,
		gains: make([]float64, rows*cols),
		steps: make([]step, rows*cols),
	}
	srcKeys := sliceKeys(source)
	tgtKeys := sliceKeys(target)
	empty := model.Len() == 0

	for i := range rows {
		for j := range cols {
			idx := g.at(i, j)
			if i == 0 || j == 0 {
				g.steps[idx] = step{i, j}
				continue
			}
			noSource := g.gains[g.at(i-1, j)]
			noTarget := g.gains[g.at(i, j-1)]
			best, bestStep := noTarget, step{0, 1}
			if noSource > noTarget {
				best, bestStep = noSource, step{1, 0}
			}
			if !empty {
				for srcLen := 1; srcLen <= i; srcLen++ {
					srcKey := srcKeys[i-srcLen][srcLen-1]
					for tgtLen := 1; tgtLen <= j; tgtLen++ {
						count := model.table.Get(Key{src: srcKey, tgt: tgtKeys[j-tgtLen][tgtLen-1], hasSrc: true, hasTgt: true})
						gain := float64(srcLen+tgtLen)*float64(count) + g.gains[g.at(i-srcLen, j-tgtLen)]
						if gain > best {
							best, bestStep = gain, step{srcLen, tgtLen}
						}
					}
				}
			}
			g.gains[idx] = best
			g.steps[idx] = bestStep
		}
	}
	return g
}

// preRoute walks the recorded steps back from (m, n) to the origin.
func (g *grid) preRoute(m, n int) []step {
	var route []step
	i, j := m, n
	for i > 0 || j > 0 {
		s := g.steps[g.at(i, j)]
		route = append(route, s)
		i -= s.src
		j -= s.tgt
	}
	for l, r := 0, len(route)-1; l < r; l, r = l+1, r-1 {
		route[l], route[r] = route[r], route[l]
	}
	return route
}

// coalesce keeps corresponding steps and collapses each run of one-sided
// steps into one deletion block followed by one insertion block.
func coalesce(preRoute []step) []step {
	var route []step
	for _, run := range SplitRuns(preRoute, step.corresponding) {
		if len(run) == 1 && run[0].corresponding() {
			route = append(route, run[0])
			continue
		}
		var total step
		for _, s := range run {
			total.src += s.src
			total.tgt += s.tgt
		}
		if total.src > 0 {
			route = append(route, step{total.src, 0})
		}
		if total.tgt > 0 {
			route = append(route, step{0, total.tgt})
		}
	}
	return route
}

// restore slices source and target along route.
func restore(source, target Fragment, route []step) (Alignment, error) {
	out := make(Alignment, 0, len(route))
	si, ti := 0, 0
	for _, s := range route {
		if s.src == 0 && s.tgt == 0 {
			return nil, invariantError("empty step in route")
		}
		if si+s.src > len(source) || ti+s.tgt > len(target) {
			return nil, invariantError("route overruns sequences (%d/%d source, %d/%d target)",
				si+s.src, len(source), ti+s.tgt, len(target))
		}
		out = append(out, FragmentPair{
			Source: append(Fragment{}, source[si:si+s.src]...),
			Target: append(Fragment{}, target[ti:ti+s.tgt]...),
		})
		si += s.src
		ti += s.tgt
	}
	if si != len(source) || ti != len(target) {
		return nil, invariantError("route covers %d/%d source and %d/%d target tokens",
			si, len(source), ti, len(target))
	}
	return out, nil
}

// Align computes the maximum-weight monotonic alignment of source and target
// under model, and returns it with its score.
func Align(source, target Fragment, model *Model) (Alignment, float64, error) {
	g := computeSteps(source, target, model)
	route := coalesce(g.preRoute(len(source), len(target)))
	alignment, err := restore(source, target, route)
	if err != nil {
		return nil, 0, err
	}
	return alignment, g.gains[g.at(len(source), len(target))], nil
}

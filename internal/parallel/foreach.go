// Package parallel contains bounded concurrency helpers.
package parallel

import "sync"

// ForEach calls body for every i in [0, length) using at most limit
// concurrent goroutines. It returns once all calls have finished.
func ForEach(length, limit int, body func(i int)) {
	if limit <= 0 {
		limit = 1
	}
	if length <= 0 {
		return
	}
	if limit == 1 {
		for i := range length {
			body(i)
		}
		return
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	wg.Add(length)
	for i := range length {
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			body(i)
		}()
	}
	wg.Wait()
}

// Shards splits [0, length) into at most n contiguous half-open ranges of
// near-equal size, in order.
func Shards(length, n int) [][2]int {
	if length <= 0 {
		return nil
	}
	if n <= 0 {
		n = 1
	}
	if n > length {
		n = length
	}
	out := make([][2]int, n)
	size, rem := length/n, length%n
	start := 0
	for i := range n {
		end := start + size
		if i < rem {
			end++
		}
		out[i] = [2]int{start, end}
		start = end
	}
	return out
}

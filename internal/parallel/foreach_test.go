package parallel

import (
	"reflect"
	"sync/atomic"
	"testing"
)

func TestForEachVisitsAll(t *testing.T) {
	for _, limit := range []int{0, 1, 3, 16} {
		var sum atomic.Int64
		seen := make([]int32, 50)
		ForEach(50, limit, func(i int) {
			atomic.AddInt32(&seen[i], 1)
			sum.Add(int64(i))
		})
		if sum.Load() != 49*50/2 {
			t.Errorf("limit=%d: sum = %d, want %d", limit, sum.Load(), 49*50/2)
		}
		for i, n := range seen {
			if n != 1 {
				t.Errorf("limit=%d: index %d visited %d times", limit, i, n)
			}
		}
	}
}

func TestForEachEmpty(t *testing.T) {
	called := false
	ForEach(0, 4, func(int) { called = true })
	if called {
		t.Error("body called for zero length")
	}
}

func TestShards(t *testing.T) {
	tests := []struct {
		length, n int
		want      [][2]int
	}{
		{10, 3, [][2]int{{0, 4}, {4, 7}, {7, 10}}},
		{2, 5, [][2]int{{0, 1}, {1, 2}}},
		{4, 0, [][2]int{{0, 4}}},
		{0, 3, nil},
	}
	for _, tt := range tests {
		got := Shards(tt.length, tt.n)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Shards(%d, %d) = %v, want %v", tt.length, tt.n, got, tt.want)
		}
	}
}

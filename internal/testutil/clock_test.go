package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_Next(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())

	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
	assert.Equal(t, int64(2), clock.Current())
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock()
	clock.Next()
	clock.Next()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
}

func TestDeterministicClock_ConcurrentNextIsUnique(t *testing.T) {
	clock := NewDeterministicClock()
	const workers, calls = 50, 40

	results := make([][]int64, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := range results {
		results[i] = make([]int64, calls)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				results[idx][j] = clock.Next()
			}
		}(i)
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, row := range results {
		for _, v := range row {
			require.False(t, seen[v], "duplicate seq %d", v)
			seen[v] = true
		}
	}
	assert.Equal(t, int64(workers*calls), clock.Current())
}

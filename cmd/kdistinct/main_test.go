package main

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tednaleid/streamcount/distinct"
)

func TestKeyCounterObserve(t *testing.T) {
	estimator, err := distinct.New[uint64](1000)
	require.NoError(t, err)
	counter := &keyCounter{estimator: estimator}

	for i := 0; i < 10; i++ {
		require.NoError(t, counter.observe([]byte(fmt.Sprintf("key-%d", i%5))))
	}

	estimate, processed, retention := counter.snapshot()
	assert.Equal(t, 5.0, estimate)
	assert.Equal(t, uint64(10), processed)
	assert.Equal(t, 1.0, retention)
}

func TestKeyCounterSerializesConcurrentObservers(t *testing.T) {
	estimator, err := distinct.New[uint64](10_000)
	require.NoError(t, err)
	counter := &keyCounter{estimator: estimator}

	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				_ = counter.observe([]byte(fmt.Sprintf("p%d-key-%d", p, i)))
			}
		}(p)
	}
	wg.Wait()

	estimate, processed, _ := counter.snapshot()
	assert.Equal(t, uint64(4000), processed)
	assert.Equal(t, 4000.0, estimate)
}

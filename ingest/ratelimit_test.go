package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterPoolAllowsWithinBudget(t *testing.T) {
	pool := newLimiterPool(10, time.Second)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, pool.wait(context.Background(), "alpha"))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "burst within budget should not block")
}

func TestLimiterPoolIsPerKey(t *testing.T) {
	pool := newLimiterPool(1, time.Hour)

	// Exhaust alpha's budget
	require.NoError(t, pool.wait(context.Background(), "alpha"))

	// beta has its own bucket and proceeds immediately
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pool.wait(context.Background(), "beta")
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("beta should not be throttled by alpha's budget")
	}
}

func TestLimiterPoolHonorsCancellation(t *testing.T) {
	pool := newLimiterPool(1, time.Hour)
	require.NoError(t, pool.wait(context.Background(), "alpha"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := pool.wait(ctx, "alpha")
	assert.Error(t, err, "a blocked wait must return once the context expires")
}

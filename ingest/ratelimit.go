package ingest

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterPool hands out one token-bucket limiter per source key so a slow
// or strict upstream only throttles its own adapter.
type limiterPool struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// newLimiterPool creates a pool allowing requests per window for each key.
func newLimiterPool(requests int, window time.Duration) *limiterPool {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &limiterPool{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    requests,
	}
}

// wait blocks until the limiter for key allows another request or the
// context is cancelled.
func (p *limiterPool) wait(ctx context.Context, key string) error {
	p.mu.Lock()
	limiter, ok := p.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(p.limit, p.burst)
		p.limiters[key] = limiter
	}
	p.mu.Unlock()

	return limiter.Wait(ctx)
}

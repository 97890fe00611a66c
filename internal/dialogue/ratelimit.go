package dialogue

import (
	"context"
	"sync"
	"time"
)

// tokenBucket throttles outbound calls to the chat-completion endpoint with
// continuous refill, so a burst of concurrent negotiation sessions cannot
// hammer the model provider past its own rate limit.
type tokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // tokens refilled per second
	lastTime time.Time
}

// newTokenBucket creates a rate limiter with the given burst capacity and
// refill rate.
func newTokenBucket(capacity, ratePerSecond float64) *tokenBucket {
	return &tokenBucket{
		tokens:   capacity,
		capacity: capacity,
		rate:     ratePerSecond,
		lastTime: time.Now(),
	}
}

// wait blocks until a token is available or ctx is cancelled.
func (tb *tokenBucket) wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(tb.lastTime).Seconds()
		tb.tokens += elapsed * tb.rate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastTime = now

		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}

		wait := time.Duration((1 - tb.tokens) / tb.rate * float64(time.Second))
		tb.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

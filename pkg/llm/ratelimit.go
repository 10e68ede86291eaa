package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a process-wide minimum spacing between outbound
// chat-completion requests (§4.3 "Rate limit", §5 "Shared rate limiter"). A
// single instance is shared by every Client in the process; acquisitions are
// globally ordered so successive grants are at least interval apart.
type RateLimiter struct {
	mu            sync.Mutex
	interval      time.Duration
	nextAllowedAt time.Time
}

// DefaultInterval is the production minimum spacing between successive
// rate-limiter grants, per §4.3.
const DefaultInterval = 3 * time.Second

// NewRateLimiter returns a ready-to-use limiter with no initial wait,
// spacing successive grants at least interval apart. Callers needing the
// production spacing pass DefaultInterval; tests pass whatever interval
// keeps a scripted run inside its deadline, the way searchctl.TimeControl is
// passed in rather than hard-coded.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{interval: interval}
}

// Acquire blocks until the caller is clear to issue its request, advancing
// the shared next-allowed-at timestamp as it grants. Concurrent callers
// serialize on mu so the ordered sequence of grants is monotonically spaced.
func (rl *RateLimiter) Acquire(ctx context.Context) error {
	for {
		rl.mu.Lock()
		now := time.Now()
		if !now.Before(rl.nextAllowedAt) {
			rl.nextAllowedAt = now.Add(rl.interval)
			rl.mu.Unlock()
			return nil
		}
		wait := rl.nextAllowedAt.Sub(now)
		rl.nextAllowedAt = rl.nextAllowedAt.Add(rl.interval)
		rl.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

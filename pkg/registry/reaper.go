package registry

import (
	"context"
	"time"

	"github.com/seekerror/logw"
)

// ReapInterval is how often the idle reaper sweeps (§4.5 "Idle reaper").
const ReapInterval = 5 * time.Minute

// FinishedThreshold is how long a Game may linger, finished, before the
// reaper removes its token entirely.
const FinishedThreshold = time.Hour

// RunReaper sweeps every ReapInterval until ctx is done, removing any token
// whose Game finished more than FinishedThreshold ago. It is intended to
// run as a background task for the life of the process, in the same
// "long-lived task owns a loop" style the turn loop itself uses.
func (r *Registry) RunReaper(ctx context.Context) {
	ticker := time.NewTicker(ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.reapOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Registry) reapOnce(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for token, g := range r.games {
		finishedAt, ok := g.FinishedAt()
		if !ok || now.Sub(finishedAt) <= FinishedThreshold {
			continue
		}

		delete(r.games, token)
		delete(r.subscribers, token)
		delete(r.cooldowns, token)
		logw.Infof(ctx, "registry: reaped idle token (finished %v ago)", now.Sub(finishedAt))
	}
}

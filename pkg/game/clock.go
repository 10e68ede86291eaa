package game

import "time"

// ClockConfig describes a Game's time control. BaseTime zero means
// unlimited — no clock events are ever emitted and no side can lose on time.
type ClockConfig struct {
	BaseTime  time.Duration
	Increment time.Duration
}

// Unlimited reports whether this configuration carries no time control.
func (c ClockConfig) Unlimited() bool {
	return c.BaseTime <= 0
}

// clockState is the mutable per-game clock bookkeeping (§3 "Game" clock
// fields). All fields are guarded by the owning Game's mutex.
type clockState struct {
	whiteMS       int64
	blackMS       int64
	incrementMS   int64
	unlimited     bool
	turnStartedAt time.Time
	running       bool
}

func newClockState(cfg ClockConfig) clockState {
	return clockState{
		whiteMS:     cfg.BaseTime.Milliseconds(),
		blackMS:     cfg.BaseTime.Milliseconds(),
		incrementMS: cfg.Increment.Milliseconds(),
		unlimited:   cfg.Unlimited(),
	}
}

func (c *clockState) remaining(color int) int64 {
	if color == whiteIdx {
		return c.whiteMS
	}
	return c.blackMS
}

func (c *clockState) setRemaining(color int, ms int64) {
	if color == whiteIdx {
		c.whiteMS = ms
	} else {
		c.blackMS = ms
	}
}

// liveRemaining computes the live countdown for the side currently on the
// clock, without mutating stored state — used by the one-second tick.
func (c *clockState) liveRemaining(color int, now time.Time) int64 {
	if !c.running {
		return c.remaining(color)
	}
	elapsed := now.Sub(c.turnStartedAt).Milliseconds()
	return c.remaining(color) - elapsed
}

const (
	whiteIdx = 0
	blackIdx = 1
)

func colorIdx(white bool) int {
	if white {
		return whiteIdx
	}
	return blackIdx
}

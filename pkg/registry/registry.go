// Package registry implements the session registry and broadcast fabric:
// token→Game, token→subscriber-set, and token→cooldown-timestamp maps, plus
// the idle reaper and model-list cache that sit alongside them.
package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/PurinNyova/LLM-Chess-Arena/pkg/game"
)

// ErrGameInProgress is returned by Put when a token already owns a
// non-terminal Game.
var ErrGameInProgress = errors.New("registry: a game is already in progress for this token")

// Registry owns the three token-keyed maps described in §3 "Session
// registry": token→Game, token→subscriber-set, token→cooldown timestamp.
// All structural mutation is serialized by mu; Game mutation itself is not
// — that remains the Game's own single-writer concern.
type Registry struct {
	mu sync.Mutex

	games       map[string]*game.Game
	subscribers map[string]map[*Subscriber]struct{}
	cooldowns   map[string]time.Time
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		games:       make(map[string]*game.Game),
		subscribers: make(map[string]map[*Subscriber]struct{}),
		cooldowns:   make(map[string]time.Time),
	}
}

// Emitter returns the Emit closure a Game started for token should be
// configured with: every event the Game emits is fanned out to token's
// current subscribers.
func (r *Registry) Emitter(token string) game.Emit {
	return func(e game.Event) { r.broadcast(token, e) }
}

// Put registers g as token's live Game. It fails with ErrGameInProgress if
// token already owns a Game that has not reached a terminal state.
func (r *Registry) Put(token string, g *game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.games[token]; ok && !existing.Terminal() {
		return ErrGameInProgress
	}
	r.games[token] = g
	return nil
}

// Game returns token's live Game, if any.
func (r *Registry) Game(token string) (*game.Game, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[token]
	return g, ok
}

// Delete removes token's Game entry (used by reset). It does not touch
// subscribers or the cooldown timestamp.
func (r *Registry) Delete(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, token)
}

// broadcast writes e to every current subscriber of token, pruning any
// subscriber whose channel could not accept it. Per design note §9
// "Fanout to subscribers," a slow or closed subscriber is dropped rather
// than allowed to stall the emitting Game.
func (r *Registry) broadcast(token string, e game.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.subscribers[token]
	if !ok {
		return
	}
	for sub := range set {
		if !sub.send(e) {
			delete(set, sub)
		}
	}
	if len(set) == 0 {
		delete(r.subscribers, token)
	}
}

package registry

import (
	"github.com/PurinNyova/LLM-Chess-Arena/pkg/game"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// subscriberBuffer bounds how many unconsumed events a subscriber may have
// queued before it is treated as too slow and dropped (§9 "Fanout to
// subscribers": bounded capacity, drop rather than block).
const subscriberBuffer = 64

// Subscriber is one SSE client's event channel. It embeds iox.AsyncCloser
// in the same style as herohde-morlock's console.Driver, so the HTTP
// handler serving the SSE response can select on Closed() to notice the
// request context ending without a bespoke done-channel.
type Subscriber struct {
	iox.AsyncCloser
	ch chan game.Event
}

func newSubscriber() *Subscriber {
	return &Subscriber{
		AsyncCloser: iox.NewAsyncCloser(),
		ch:          make(chan game.Event, subscriberBuffer),
	}
}

// Events returns the channel the HTTP handler should range/select over to
// write SSE frames.
func (s *Subscriber) Events() <-chan game.Event {
	return s.ch
}

// send delivers e without blocking. It reports false if the subscriber is
// closed or its buffer is full, signaling the caller to drop it.
func (s *Subscriber) send(e game.Event) bool {
	if s.IsClosed() {
		return false
	}
	select {
	case s.ch <- e:
		return true
	default:
		return false
	}
}

// Subscribe registers a new Subscriber for token and returns it. The caller
// must call Unsubscribe when the SSE connection ends.
func (r *Registry) Subscribe(token string) *Subscriber {
	sub := newSubscriber()

	r.mu.Lock()
	set, ok := r.subscribers[token]
	if !ok {
		set = make(map[*Subscriber]struct{})
		r.subscribers[token] = set
	}
	set[sub] = struct{}{}
	r.mu.Unlock()

	return sub
}

// Unsubscribe removes sub from token's subscriber set and closes it. An
// empty resulting set removes the token's subscriber-map entry entirely,
// per §4.5 "Per-token broadcast."
func (r *Registry) Unsubscribe(token string, sub *Subscriber) {
	r.mu.Lock()
	if set, ok := r.subscribers[token]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(r.subscribers, token)
		}
	}
	r.mu.Unlock()

	sub.Close()
}

// SubscriberCount reports how many subscribers token currently has; used by
// tests and diagnostics.
func (r *Registry) SubscriberCount(token string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscribers[token])
}

package registry

import (
	"context"
	"testing"
	"time"

	"github.com/PurinNyova/LLM-Chess-Arena/pkg/game"
	"github.com/PurinNyova/LLM-Chess-Arena/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(r *Registry, token string) *game.Game {
	g := game.New(game.Config{
		WhiteModel: "w",
		BlackModel: "b",
		HumanSide:  game.HumanWhite,
		MaxRetries: 1,
		Emit:       r.Emitter(token),
	})
	return g
}

func TestPutRejectsConcurrentNonTerminalGame(t *testing.T) {
	r := New()
	g1 := newTestGame(r, "tok")
	require.NoError(t, r.Put("tok", g1))

	g2 := newTestGame(r, "tok")
	assert.ErrorIs(t, r.Put("tok", g2), ErrGameInProgress)
}

func TestPutAllowsReplacingTerminalGame(t *testing.T) {
	r := New()
	g1 := newTestGame(r, "tok")
	require.NoError(t, r.Put("tok", g1))
	g1.Stop()

	g2 := newTestGame(r, "tok")
	assert.NoError(t, r.Put("tok", g2))

	got, ok := r.Game("tok")
	require.True(t, ok)
	assert.Same(t, g2, got)
}

func TestBroadcastDeliversToAllSubscribers(t *testing.T) {
	r := New()
	sub1 := r.Subscribe("tok")
	sub2 := r.Subscribe("tok")
	defer r.Unsubscribe("tok", sub1)
	defer r.Unsubscribe("tok", sub2)

	r.Emitter("tok")(game.Event{Kind: game.EventStatus, Payload: game.StatusPayload{Message: "hi"}})

	for _, sub := range []*Subscriber{sub1, sub2} {
		select {
		case e := <-sub.Events():
			assert.Equal(t, game.EventStatus, e.Kind)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive broadcast event")
		}
	}
}

func TestUnsubscribeRemovesEmptySet(t *testing.T) {
	r := New()
	sub := r.Subscribe("tok")
	assert.Equal(t, 1, r.SubscriberCount("tok"))

	r.Unsubscribe("tok", sub)
	assert.Equal(t, 0, r.SubscriberCount("tok"))
	assert.True(t, sub.IsClosed())
}

func TestBroadcastDropsFullSubscriberWithoutBlocking(t *testing.T) {
	r := New()
	sub := r.Subscribe("tok")

	emit := r.Emitter("tok")
	for i := 0; i < subscriberBuffer+10; i++ {
		emit(game.Event{Kind: game.EventStatus, Payload: game.StatusPayload{Message: "flood"}})
	}

	assert.Equal(t, 0, r.SubscriberCount("tok"), "overflowing subscriber is pruned from the set")
}

func TestCheckCooldownRejectsWithinWindow(t *testing.T) {
	r := New()

	remaining, blocked := r.CheckCooldown("tok", true, false)
	assert.False(t, blocked)
	assert.Zero(t, remaining)

	remaining, blocked = r.CheckCooldown("tok", true, false)
	assert.True(t, blocked)
	assert.Greater(t, remaining, time.Duration(0))
	assert.LessOrEqual(t, remaining, CooldownWindow)
}

func TestCheckCooldownBypassNeverBlocksOrRecords(t *testing.T) {
	r := New()

	_, blocked := r.CheckCooldown("tok", true, true)
	assert.False(t, blocked)

	// Bypass must not have recorded a timestamp: a subsequent genuine
	// shared-credential start is still the "first" one and is allowed.
	_, blocked = r.CheckCooldown("tok", true, false)
	assert.False(t, blocked)
}

func TestCheckCooldownIgnoresNonSharedStarts(t *testing.T) {
	r := New()
	_, blocked := r.CheckCooldown("tok", false, false)
	assert.False(t, blocked)
	_, blocked = r.CheckCooldown("tok", false, false)
	assert.False(t, blocked)
}

func TestModelCacheReturnsCachedResultWithinTTL(t *testing.T) {
	c := NewModelCache()
	calls := 0
	fetch := func(ctx context.Context) ([]llm.Model, error) {
		calls++
		return []llm.Model{{ID: "gpt-test"}}, nil
	}

	models, err := c.Get(context.Background(), "http://x", "key", fetch)
	require.NoError(t, err)
	assert.Equal(t, "gpt-test", models[0].ID)
	assert.Equal(t, 1, calls)

	_, err = c.Get(context.Background(), "http://x", "key", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second call within TTL must not re-fetch")

	_, err = c.Get(context.Background(), "http://other", "key", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "a different cache key must fetch independently")
}

func TestDeleteRemovesGameOnly(t *testing.T) {
	r := New()
	g := newTestGame(r, "tok")
	require.NoError(t, r.Put("tok", g))
	sub := r.Subscribe("tok")

	r.Delete("tok")

	_, ok := r.Game("tok")
	assert.False(t, ok)
	assert.Equal(t, 1, r.SubscriberCount("tok"), "Delete must not touch subscribers")
	r.Unsubscribe("tok", sub)
}

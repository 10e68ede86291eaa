package game

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/PurinNyova/LLM-Chess-Arena/pkg/board"
	"github.com/PurinNyova/LLM-Chess-Arena/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedServer replies to successive chat-completion requests with the
// moves in sequence, one per call, as an OpenAI-compatible SSE stream.
func scriptedServer(t *testing.T, moves []string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	i := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		move := moves[i%len(moves)]
		i++
		mu.Unlock()

		fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n", move)
		fmt.Fprint(w, "data: [DONE]\n")
	}))
}

func collectEvents(t *testing.T) (Emit, func() []Event) {
	t.Helper()
	var mu sync.Mutex
	var events []Event
	emit := func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}
	return emit, func() []Event {
		mu.Lock()
		defer mu.Unlock()
		out := make([]Event, len(events))
		copy(out, events)
		return out
	}
}

func waitForGameOver(t *testing.T, get func() []Event) GameOverPayload {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		events := get()
		if len(events) > 0 && events[len(events)-1].Kind == EventGameOver {
			return events[len(events)-1].Payload.(GameOverPayload)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for gameOver event")
	return GameOverPayload{}
}

func TestFoolsMateEndToEnd(t *testing.T) {
	srv := scriptedServer(t, []string{"f3", "e5", "g4", "Qh4"})
	defer srv.Close()

	// A near-zero interval keeps four scripted moves well inside the
	// deadline below; production wiring uses llm.DefaultInterval.
	client := llm.NewClient(srv.URL, "", llm.NewRateLimiter(time.Millisecond), nil)
	emit, get := collectEvents(t)

	g := New(Config{
		WhiteModel:  "test-white",
		BlackModel:  "test-black",
		WhiteClient: client,
		BlackClient: client,
		HumanSide:   HumanNone,
		MaxRetries:  2,
		Clock:       ClockConfig{},
		Emit:        emit,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	g.Run(ctx)

	over := waitForGameOver(t, get)
	assert.Equal(t, "Black wins by checkmate!", over.Result)
	assert.Equal(t, "1. f3 e5 2. g4 Qh4", over.PGN)
}

func TestForfeitAfterRetriesEndToEnd(t *testing.T) {
	srv := scriptedServer(t, []string{"Z9"})
	defer srv.Close()

	client := llm.NewClient(srv.URL, "", llm.NewRateLimiter(time.Millisecond), nil)
	emit, get := collectEvents(t)

	g := New(Config{
		WhiteModel:  "test-white",
		BlackModel:  "test-black",
		WhiteClient: client,
		BlackClient: client,
		HumanSide:   HumanNone,
		MaxRetries:  2,
		Emit:        emit,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	g.Run(ctx)

	over := waitForGameOver(t, get)
	assert.Equal(t, "Black wins by forfeit (White failed to make a legal move)", over.Result)

	var chatCount, errorCount int
	for _, e := range get() {
		switch e.Kind {
		case EventChat:
			chatCount++
		case EventError:
			errorCount++
		}
	}
	assert.Equal(t, 2, chatCount)
	assert.Equal(t, 2, errorCount)
}

func TestTimeLossEndToEnd(t *testing.T) {
	// The server stalls past the clock's remaining time before answering.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(4 * time.Second)
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"e4\"}}]}\n")
		fmt.Fprint(w, "data: [DONE]\n")
	}))
	defer srv.Close()

	client := llm.NewClient(srv.URL, "", llm.NewRateLimiter(time.Millisecond), nil)
	emit, get := collectEvents(t)

	g := New(Config{
		WhiteModel:  "test-white",
		BlackModel:  "test-black",
		WhiteClient: client,
		BlackClient: client,
		HumanSide:   HumanNone,
		MaxRetries:  1,
		Clock:       ClockConfig{BaseTime: 3 * time.Second},
		Emit:        emit,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	g.Run(ctx)

	over := waitForGameOver(t, get)
	assert.Equal(t, "Black wins on time", over.Result)
}

func TestStalemateEndToEnd(t *testing.T) {
	emit, get := collectEvents(t)

	g := New(Config{
		WhiteModel: "none",
		BlackModel: "none",
		HumanSide:  HumanWhite, // overridden below; the loop is never run
		MaxRetries: 1,
		Emit:       emit,
	})

	// Force the exact stalemate position from §8 scenario 2: White king h1,
	// Black king f2, Black queen g3, White to move with no legal move.
	g.board = board.NewEmptyBoard()
	g.board.Place(board.NewSquare(7, 0), board.Piece{Type: board.King, Color: board.White})
	g.board.Place(board.NewSquare(5, 1), board.Piece{Type: board.King, Color: board.Black})
	g.board.Place(board.NewSquare(6, 2), board.Piece{Type: board.Queen, Color: board.Black})
	g.turn = board.White
	g.cfg.HumanSide = HumanNone
	g.cfg.WhiteClient = llm.NewClient("unused", "", llm.NewRateLimiter(time.Millisecond), nil)
	g.cfg.BlackClient = g.cfg.WhiteClient

	// White has no legal move, but the loop reaches checkTerminal only after
	// a move is made: its first act on White's turn is acquireMove. Instead
	// assert the rules-engine fact the loop relies on, exercise checkTerminal
	// as if Black had just moved, and finish the game the way Run does.
	assert.True(t, g.board.IsStalemate(board.White))
	assert.True(t, g.checkTerminal(board.Black))
	g.finish()

	over := waitForGameOver(t, get)
	assert.Equal(t, "Draw by stalemate", over.Result)
}

func TestSubmitHumanMoveAdvancesLoop(t *testing.T) {
	emit, get := collectEvents(t)

	g := New(Config{
		WhiteModel: "human",
		BlackModel: "human",
		HumanSide:  HumanWhite,
		MaxRetries: 1,
		Emit:       emit,
	})
	g.cfg.BlackClient = llm.NewClient("http://unused.invalid", "", llm.NewRateLimiter(time.Millisecond), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go g.Run(ctx)

	require.Eventually(t, func() bool {
		return g.awaitingHuman.Load()
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return g.SubmitHumanMove(board.White, "e4") == nil
	}, time.Second, 5*time.Millisecond, "rendezvous send may race the receiver's select entry")

	require.Eventually(t, func() bool {
		for _, e := range get() {
			if e.Kind == EventMove {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	g.Stop()
}

func TestStopAbortsGame(t *testing.T) {
	emit, get := collectEvents(t)

	g := New(Config{
		WhiteModel: "human",
		BlackModel: "human",
		HumanSide:  HumanWhite,
		MaxRetries: 1,
		Emit:       emit,
	})
	g.cfg.BlackClient = llm.NewClient("http://unused.invalid", "", llm.NewRateLimiter(time.Millisecond), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go g.Run(ctx)

	require.Eventually(t, func() bool { return g.awaitingHuman.Load() }, time.Second, 5*time.Millisecond)

	g.Stop()

	over := waitForGameOver(t, get)
	assert.Equal(t, "Game stopped by user", over.Result)
}

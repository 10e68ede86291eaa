// Package game implements the per-session turn loop that alternates between
// LLM and human moves, enforces clocks and retry/forfeit policy, and emits a
// typed event stream for subscribers.
package game

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PurinNyova/LLM-Chess-Arena/pkg/board"
	"github.com/PurinNyova/LLM-Chess-Arena/pkg/llm"
	"github.com/seekerror/stdlib/pkg/lang"
	"go.uber.org/atomic"
)

// HumanSide names which side, if any, is driven by a human through the
// move-submission endpoint rather than an LLM.
type HumanSide int

const (
	HumanNone HumanSide = iota
	HumanWhite
	HumanBlack
)

func (h HumanSide) String() string {
	switch h {
	case HumanWhite:
		return "WHITE"
	case HumanBlack:
		return "BLACK"
	default:
		return "none"
	}
}

// maxPlies bounds a Game's length (§4.4 step 5): 300 plies (150 full moves)
// triggers a length draw.
const maxPlies = 300

// networkRefundMS is credited back to the mover's clock when an LLM call
// fails with a network-class error (§4.4 step 2, §7).
const networkRefundMS = 120_000

// Config is the immutable configuration a Game is started with. The caller
// (the HTTP surface, by way of the registry) is responsible for resolving
// per-side credentials into llm.Client handles before constructing a Game.
type Config struct {
	WhiteModel  string
	BlackModel  string
	WhiteClient *llm.Client // nil iff HumanSide == HumanWhite
	BlackClient *llm.Client // nil iff HumanSide == HumanBlack
	HumanSide   HumanSide
	MaxRetries  int
	Clock       ClockConfig
	Emit        Emit
}

// humanMoveMsg is sent over the single-slot rendezvous channel from the
// move-submission endpoint into the waiting turn loop.
type humanMoveMsg struct {
	san string
}

// Game owns one Board and one History for the life of a session (§3
// "Game"). All mutation happens on the single goroutine running Run; other
// goroutines only read through the mutex-guarded accessor methods or push
// into the rendezvous/abort channels.
type Game struct {
	mu sync.Mutex

	board   *board.Board
	history *board.History
	turn    board.Color

	cfg   Config
	clock clockState

	result     lang.Optional[string]
	finishedAt lang.Optional[time.Time]
	lastMove   *MoveInfo

	aborted       atomic.Bool
	awaitingHuman atomic.Bool
	humanMoveCh   chan humanMoveMsg
	abortCh       chan struct{}

	started atomic.Bool
	done    chan struct{}
}

// New constructs a Game ready to Run. The caller must arrange for exactly
// one of cfg.WhiteClient/cfg.BlackClient to be nil per HumanSide.
func New(cfg Config) *Game {
	return &Game{
		board:       board.NewBoard(),
		history:     board.NewHistory(),
		turn:        board.White,
		cfg:         cfg,
		clock:       newClockState(cfg.Clock),
		humanMoveCh: make(chan humanMoveMsg),
		abortCh:     make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Stop aborts the Game: sets the aborted flag, defaults the result if unset,
// and unblocks any pending human-move rendezvous with the abort sentinel.
// Safe to call more than once and from any goroutine.
func (g *Game) Stop() {
	if !g.aborted.CompareAndSwap(false, true) {
		return
	}

	g.mu.Lock()
	if _, ok := g.result.V(); !ok {
		g.result = lang.Some("Game stopped by user")
	}
	g.mu.Unlock()

	close(g.abortCh)
}

// Aborted reports whether Stop has been called.
func (g *Game) Aborted() bool {
	return g.aborted.Load()
}

// SubmitHumanMove validates and hands a human SAN string to the waiting
// turn loop. It fails if it is not currently that side's turn, if no human
// move is being awaited, or if the move is not legal in the current
// position.
func (g *Game) SubmitHumanMove(color board.Color, san string) error {
	g.mu.Lock()
	if g.cfg.HumanSide == HumanNone {
		g.mu.Unlock()
		return fmt.Errorf("game: no human side configured")
	}
	expected := board.White
	if g.cfg.HumanSide == HumanBlack {
		expected = board.Black
	}
	if expected != color || g.turn != color {
		g.mu.Unlock()
		return fmt.Errorf("game: not %v's turn", color)
	}
	if !g.awaitingHuman.Load() {
		g.mu.Unlock()
		return fmt.Errorf("game: no pending move to submit")
	}

	probe := g.board.Clone()
	if _, err := probe.ApplySAN(color, san); err != nil {
		g.mu.Unlock()
		return fmt.Errorf("game: illegal move %q: %w", san, err)
	}
	g.mu.Unlock()

	select {
	case g.humanMoveCh <- humanMoveMsg{san: san}:
		return nil
	default:
		return fmt.Errorf("game: no pending move to submit")
	}
}

// LegalMoves enumerates legal destinations from sq in the current position.
func (g *Game) LegalMoves(sq board.Square) []board.Square {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.LegalDestinations(sq)
}

// StateSnapshot is the full-state payload used both by the SSE "state" frame
// on subscribe and by the GET state endpoint.
type StateSnapshot struct {
	Squares   board.Snapshot `json:"squares"`
	Turn      string         `json:"turn"`
	PGN       string         `json:"pgn"`
	MoveCount int            `json:"moveCount"`
	Result    string         `json:"result"`
	Models    ModelsInfo     `json:"models"`
	Captured  CapturedLists  `json:"captured"`
	Clock     *ClockPayload  `json:"clock,omitempty"`
	HumanSide string         `json:"humanSide"`
}

// ModelsInfo names the model label in effect for each side.
type ModelsInfo struct {
	White string `json:"white"`
	Black string `json:"black"`
}

// Snapshot returns the current full state. Safe for concurrent callers.
func (g *Game) Snapshot() StateSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	result, _ := g.result.V()

	snap := StateSnapshot{
		Squares:   g.board.ToSnapshot(),
		Turn:      g.turn.JSON(),
		PGN:       g.history.PGN(),
		MoveCount: g.history.Len(),
		Result:    result,
		Models:    ModelsInfo{White: g.cfg.WhiteModel, Black: g.cfg.BlackModel},
		Captured:  capturedLists(g.board),
		HumanSide: g.cfg.HumanSide.String(),
	}
	if !g.clock.unlimited {
		snap.Clock = &ClockPayload{WhiteTime: g.clock.whiteMS, BlackTime: g.clock.blackMS}
	}
	return snap
}

func capturedLists(b *board.Board) CapturedLists {
	white := make([]string, 0, len(b.CapturedByWhite))
	for _, t := range b.CapturedByWhite {
		white = append(white, t.String())
	}
	black := make([]string, 0, len(b.CapturedByBlack))
	for _, t := range b.CapturedByBlack {
		black = append(black, t.String())
	}
	return CapturedLists{ByWhite: white, ByBlack: black}
}

// emit wraps kind and payload into an Event and hands it to the configured
// Emit sink; it is a no-op if no sink was configured.
func (g *Game) emit(kind EventKind, payload any) {
	if g.cfg.Emit != nil {
		g.cfg.Emit(Event{Kind: kind, Payload: payload})
	}
}

func isNetworkClassError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"fetch", "econnrefused", "network", "enotfound", "timeout"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

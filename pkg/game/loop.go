package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PurinNyova/LLM-Chess-Arena/pkg/board"
	"github.com/PurinNyova/LLM-Chess-Arena/pkg/llm"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Run drives the turn loop to completion (§4.4). The caller runs it as a
// background task: `go g.Run(ctx)`. It returns once a terminal result is
// reached or the Game is stopped; it always ends by emitting gameOver.
func (g *Game) Run(ctx context.Context) {
	if !g.started.CompareAndSwap(false, true) {
		return
	}
	defer g.finish()

	if !g.clock.unlimited {
		go g.runClockTicker(ctx)
	}

	g.emit(EventBoard, g.boardPayload(nil))

	for !g.aborted.Load() {
		color := g.turn
		moveNumber := g.history.Len()/2 + 1

		g.statusf("%v's turn", titleCase(color))
		g.startTurnClock()

		move, san, dialogue, ok := g.acquireMove(ctx, color, moveNumber)
		if !ok || g.aborted.Load() {
			break
		}

		if !g.debitClock(color) {
			break
		}

		g.commitMove(color, move, san, dialogue, moveNumber)

		if g.checkTerminal(color) {
			break
		}

		g.mu.Lock()
		g.turn = color.Opponent()
		g.mu.Unlock()
	}
}

// acquireMove resolves the move for color, either from the human rendezvous
// or from up to MaxRetries LLM attempts. The bool return is false iff the
// loop should stop (abort, context done, a human move rejected on apply, or
// retries exhausted into a forfeit).
func (g *Game) acquireMove(ctx context.Context, color board.Color, moveNumber int) (board.Move, string, *string, bool) {
	humanTurn := (g.cfg.HumanSide == HumanWhite && color == board.White) ||
		(g.cfg.HumanSide == HumanBlack && color == board.Black)

	if humanTurn {
		return g.acquireHumanMove(ctx, color)
	}
	return g.acquireLLMMove(ctx, color, moveNumber)
}

func (g *Game) acquireHumanMove(ctx context.Context, color board.Color) (board.Move, string, *string, bool) {
	g.awaitingHuman.Store(true)
	defer g.awaitingHuman.Store(false)

	select {
	case msg := <-g.humanMoveCh:
		g.mu.Lock()
		move, err := g.board.ApplySAN(color, msg.san)
		g.mu.Unlock()
		if err != nil {
			// Single-writer model: the move was validated against this same
			// position moments ago by SubmitHumanMove, so this should not
			// happen. Treat it as an abort rather than corrupt the loop.
			logw.Errorf(ctx, "game: validated human move %q rejected on apply: %v", msg.san, err)
			return board.Move{}, "", nil, false
		}
		return move, msg.san, nil, true

	case <-g.abortCh:
		return board.Move{}, "", nil, false

	case <-ctx.Done():
		return board.Move{}, "", nil, false
	}
}

func (g *Game) acquireLLMMove(ctx context.Context, color board.Color, moveNumber int) (board.Move, string, *string, bool) {
	client := g.cfg.WhiteClient
	model := g.cfg.WhiteModel
	if color == board.Black {
		client = g.cfg.BlackClient
		model = g.cfg.BlackModel
	}

	lastIllegal := ""
	for attempt := 1; attempt <= g.cfg.MaxRetries; attempt++ {
		if g.aborted.Load() {
			return board.Move{}, "", nil, false
		}

		g.mu.Lock()
		pgn := g.history.PGN()
		g.mu.Unlock()

		req := llm.NewRequest(model, BuildSystemPrompt(color.JSON()), BuildUserMessage(pgn, lastIllegal))

		var accumulated strings.Builder
		result, err := client.Complete(ctx, req, func(d llm.Delta) {
			if d.Reasoning == "" {
				return
			}
			accumulated.WriteString(d.Reasoning)
			g.emit(EventThinking, ThinkingPayload{
				Color:       color.JSON(),
				Model:       model,
				Text:        d.Reasoning,
				Accumulated: accumulated.String(),
			})
		})
		if err != nil {
			g.emit(EventError, ErrorPayload{
				Color: color.JSON(), Model: model, Message: err.Error(),
				Attempt: attempt, MaxRetries: g.cfg.MaxRetries,
			})
			if isNetworkClassError(err) {
				g.refundClock(color, networkRefundMS)
			}
			continue
		}

		parsed := ParseResponse(result.Content)

		g.emit(EventChat, ChatPayload{
			Color: color.JSON(), Model: model, Raw: result.Content, Move: parsed.SAN,
			Dialogue: parsed.Dialogue, Thinking: result.Reasoning,
			Attempt: attempt, MoveNumber: moveNumber,
		})

		g.mu.Lock()
		move, applyErr := g.board.ApplySAN(color, parsed.SAN)
		g.mu.Unlock()

		if applyErr == nil {
			return move, parsed.SAN, parsed.Dialogue, true
		}

		lastIllegal = parsed.SAN
		g.emit(EventError, ErrorPayload{
			Color: color.JSON(), Model: model, Message: fmt.Sprintf("illegal move %q: %v", parsed.SAN, applyErr),
			Attempt: attempt, MaxRetries: g.cfg.MaxRetries,
		})
	}

	g.setResult(fmt.Sprintf("%v wins by forfeit (%v failed to make a legal move)", titleCase(color.Opponent()), titleCase(color)))
	return board.Move{}, "", nil, false
}

func (g *Game) commitMove(color board.Color, move board.Move, san string, dialogue *string, moveNumber int) {
	g.mu.Lock()
	g.history.Append(san)
	info := &MoveInfo{From: move.From.String(), To: move.To.String(), SAN: san}
	g.lastMove = info
	model := g.cfg.WhiteModel
	if color == board.Black {
		model = g.cfg.BlackModel
	}
	g.mu.Unlock()

	g.emit(EventMove, MovePayload{
		Color: color.JSON(), Model: model, Notation: san,
		From: move.From.String(), To: move.To.String(),
		MoveNumber: moveNumber, Dialogue: dialogue,
	})
	g.emit(EventBoard, g.boardPayload(info))
}

// checkTerminal applies the step-5 ordered terminal checks for the side
// that just moved (color); opp is the side to check for mate/stalemate.
func (g *Game) checkTerminal(color board.Color) bool {
	opp := color.Opponent()

	g.mu.Lock()
	checkmate := g.board.IsCheckmate(opp)
	stalemate := !checkmate && g.board.IsStalemate(opp)
	fiftyMove := !checkmate && !stalemate && g.board.IsFiftyMoveDraw()
	inCheck := !checkmate && !stalemate && !fiftyMove && g.board.InCheck(opp)
	tooLong := g.history.Len() >= maxPlies
	g.mu.Unlock()

	switch {
	case checkmate:
		g.setResult(fmt.Sprintf("%v wins by checkmate!", titleCase(color)))
		return true
	case stalemate:
		g.setResult("Draw by stalemate")
		return true
	case fiftyMove:
		g.setResult("Draw by 50-move rule")
		return true
	}

	if inCheck {
		g.statusf("%v is in check", titleCase(opp))
	}

	if tooLong {
		g.setResult("Draw by excessive length (150+ moves)")
		return true
	}
	return false
}

func (g *Game) startTurnClock() {
	if g.clock.unlimited {
		return
	}
	g.mu.Lock()
	g.clock.turnStartedAt = time.Now()
	g.clock.running = true
	g.mu.Unlock()
}

// debitClock deducts elapsed time from the mover's clock (§4.4 step 3). It
// returns false and sets a terminal time-loss result if the mover's clock
// has expired.
func (g *Game) debitClock(color board.Color) bool {
	if g.clock.unlimited {
		return true
	}

	g.mu.Lock()
	idx := colorIdx(color == board.White)
	elapsed := time.Since(g.clock.turnStartedAt).Milliseconds()
	remaining := g.clock.remaining(idx) - elapsed
	g.clock.running = false

	if remaining <= 0 {
		g.clock.setRemaining(idx, 0)
		payload := ClockPayload{WhiteTime: g.clock.whiteMS, BlackTime: g.clock.blackMS}
		g.result = lang.Some(fmt.Sprintf("%v wins on time", titleCase(color.Opponent())))
		g.mu.Unlock()

		g.emit(EventClock, payload)
		return false
	}

	remaining += g.clock.incrementMS
	g.clock.setRemaining(idx, remaining)
	payload := ClockPayload{WhiteTime: g.clock.whiteMS, BlackTime: g.clock.blackMS}
	g.mu.Unlock()

	g.emit(EventClock, payload)
	return true
}

// refundClock credits ms back to color's clock after a network-class LLM
// failure (§4.4 step 2, §7).
func (g *Game) refundClock(color board.Color, ms int64) {
	if g.clock.unlimited {
		return
	}
	g.mu.Lock()
	idx := colorIdx(color == board.White)
	g.clock.setRemaining(idx, g.clock.remaining(idx)+ms)
	payload := ClockPayload{WhiteTime: g.clock.whiteMS, BlackTime: g.clock.blackMS}
	g.mu.Unlock()

	g.emit(EventClock, payload)
	g.statusf("%v's connection failed; 120s credited back to the clock", titleCase(color))
}

// runClockTicker re-emits a clock event once per second while a turn clock
// is running, so a display can count down without waiting for the next move.
func (g *Game) runClockTicker(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.mu.Lock()
			if !g.clock.running {
				g.mu.Unlock()
				continue
			}
			now := time.Now()
			white := g.clock.whiteMS
			black := g.clock.blackMS
			if g.turn == board.White {
				white = g.clock.liveRemaining(whiteIdx, now)
			} else {
				black = g.clock.liveRemaining(blackIdx, now)
			}
			g.mu.Unlock()

			g.emit(EventClock, ClockPayload{WhiteTime: white, BlackTime: black})

		case <-g.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (g *Game) boardPayload(lastMove *MoveInfo) BoardPayload {
	g.mu.Lock()
	defer g.mu.Unlock()
	return BoardPayload{
		Squares:  g.board.ToSnapshot(),
		Turn:     g.turn.JSON(),
		LastMove: lastMove,
		Captured: capturedLists(g.board),
	}
}

func (g *Game) statusf(format string, args ...any) {
	g.emit(EventStatus, StatusPayload{Message: fmt.Sprintf(format, args...)})
}

func (g *Game) setResult(result string) {
	g.mu.Lock()
	g.result = lang.Some(result)
	g.mu.Unlock()
}

// finish marks the Game terminal and emits the closing gameOver event. It
// runs exactly once, regardless of why the loop exited.
func (g *Game) finish() {
	g.mu.Lock()
	if _, ok := g.result.V(); !ok {
		g.result = lang.Some("Game stopped by user")
	}
	result, _ := g.result.V()
	pgn := g.history.PGN()
	g.finishedAt = lang.Some(time.Now())
	g.mu.Unlock()

	close(g.done)
	g.emit(EventGameOver, GameOverPayload{Result: result, PGN: pgn})
}

// FinishedAt reports when the Game reached a terminal state, if it has.
func (g *Game) FinishedAt() (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.finishedAt.V()
}

// Terminal reports whether the Game has reached a result (win/draw/forfeit)
// or been aborted.
func (g *Game) Terminal() bool {
	g.mu.Lock()
	_, ok := g.result.V()
	g.mu.Unlock()
	return ok || g.aborted.Load()
}

func titleCase(c board.Color) string {
	s := c.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

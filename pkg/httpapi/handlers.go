package httpapi

import (
	"net/http"
	"strconv"

	"github.com/PurinNyova/LLM-Chess-Arena/pkg/board"
	"github.com/PurinNyova/LLM-Chess-Arena/pkg/game"
	"github.com/google/uuid"
)

// handleToken issues a fresh opaque session token. Clients may also
// self-generate and persist their own; the registry treats any non-empty
// string as a valid key on first use, so this endpoint is a convenience,
// not an authority.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tokenResponse{Token: uuid.NewString()})
}

// handleStream serves the per-token SSE event stream. On subscribe, if a
// Game already exists for token, it writes one "state" frame with a full
// snapshot before switching to forwarding broadcast events as they arrive.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	token := tokenFromQuery(r)
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := s.reg.Subscribe(token)
	defer s.reg.Unsubscribe(token, sub)

	if g, ok := s.reg.Game(token); ok {
		if err := writeSSE(w, "state", g.Snapshot()); err != nil {
			return
		}
		flusher.Flush()
	}

	ctx := r.Context()
	for {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := writeSSE(w, string(e.Kind), e.Payload); err != nil {
				return
			}
			flusher.Flush()
		case <-sub.Closed():
			return
		case <-ctx.Done():
			return
		}
	}
}

// handleState returns token's current snapshot, or the snapshot of a fresh,
// unstarted Game if token owns none yet — the "default empty board" of
// §4.6, rendered as the standard starting position so the UI has something
// sensible to draw before a game is started.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	token := tokenFromQuery(r)
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}

	if g, ok := s.reg.Game(token); ok {
		writeJSON(w, http.StatusOK, g.Snapshot())
		return
	}
	writeJSON(w, http.StatusOK, game.New(game.Config{}).Snapshot())
}

// handleMove delegates a human move to the Game's rendezvous channel.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	token := tokenFromQuery(r)
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}

	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, ok := s.reg.Game(token)
	if !ok {
		writeError(w, http.StatusBadRequest, "no game in progress for this token")
		return
	}

	var color board.Color
	switch g.Snapshot().HumanSide {
	case "WHITE":
		color = board.White
	case "BLACK":
		color = board.Black
	default:
		writeError(w, http.StatusBadRequest, "no human side configured for this game")
		return
	}

	if err := g.SubmitHumanMove(color, req.Move); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "move accepted"})
}

// handleLegalMoves enumerates legal destinations from a single square.
func (s *Server) handleLegalMoves(w http.ResponseWriter, r *http.Request) {
	token := tokenFromQuery(r)
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}

	file, err1 := strconv.Atoi(r.URL.Query().Get("file"))
	rank, err2 := strconv.Atoi(r.URL.Query().Get("rank"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "file and rank query parameters must be integers")
		return
	}

	g, ok := s.reg.Game(token)
	if !ok {
		writeJSON(w, http.StatusOK, legalMovesResponse{Moves: []squareDTO{}})
		return
	}

	sq := board.NewSquare(board.File(file), board.Rank(rank))
	dests := g.LegalMoves(sq)
	moves := make([]squareDTO, len(dests))
	for i, d := range dests {
		moves[i] = squareDTO{File: int(d.File), Rank: int(d.Rank)}
	}
	writeJSON(w, http.StatusOK, legalMovesResponse{Moves: moves})
}

// handleStop aborts token's Game in place.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	token := tokenFromQuery(r)
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}

	g, ok := s.reg.Game(token)
	if !ok {
		writeError(w, http.StatusBadRequest, "no active game for this token")
		return
	}
	g.Stop()
	writeJSON(w, http.StatusOK, messageResponse{Message: "game stopped"})
}

// handleReset stops (if needed) and discards token's Game, then broadcasts a
// reset status and an empty board to whatever subscribers remain.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	token := tokenFromQuery(r)
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}

	if g, ok := s.reg.Game(token); ok {
		g.Stop()
	}
	s.reg.Delete(token)

	emit := s.reg.Emitter(token)
	emit(game.Event{Kind: game.EventStatus, Payload: game.StatusPayload{Message: "Game reset"}})
	emit(game.Event{
		Kind: game.EventBoard,
		Payload: game.BoardPayload{
			Squares:  board.NewEmptyBoard().ToSnapshot(),
			Turn:     board.White.JSON(),
			Captured: game.CapturedLists{ByWhite: []string{}, ByBlack: []string{}},
		},
	})

	writeJSON(w, http.StatusOK, messageResponse{Message: "game reset"})
}

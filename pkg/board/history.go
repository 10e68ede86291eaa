package board

import (
	"strconv"
	"strings"
)

// History is the ordered, append-only list of SAN strings played in a game.
// Its count is the ply count. It holds no Board reference of its own —
// it is a passive ledger the Game orchestrator appends to after each
// accepted move.
type History struct {
	moves []string
}

// NewHistory returns an empty move history.
func NewHistory() *History {
	return &History{}
}

// Append records san as the next ply.
func (h *History) Append(san string) {
	h.moves = append(h.moves, san)
}

// Len returns the ply count.
func (h *History) Len() int {
	return len(h.moves)
}

// Moves returns the recorded SAN strings in order. The returned slice is a
// copy; callers may not mutate the history through it.
func (h *History) Moves() []string {
	return append([]string(nil), h.moves...)
}

// PGN renders the move list as "1. e4 e5 2. Nf3 …". No headers are produced;
// the client synthesizes those from the gameOver payload.
func (h *History) PGN() string {
	if len(h.moves) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, san := range h.moves {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i%2 == 0 {
			sb.WriteString(strconv.Itoa(i/2 + 1))
			sb.WriteString(". ")
		}
		sb.WriteString(san)
	}
	return sb.String()
}

package board

import "fmt"

// Move is a move record: the result of resolving a SAN string against a Board.
// Castling records PieceType=King with From/To set to the king's squares.
type Move struct {
	From, To  Square
	PieceType PieceType
	Promotion PieceType // NoPieceType if the move is not a promotion.
	Capture   bool
	CastleKS  bool
	CastleQS  bool
	Notation  string // the SAN string this move was parsed from.
}

func (m Move) String() string {
	if m.Notation != "" {
		return m.Notation
	}
	return fmt.Sprintf("%v%v", m.From, m.To)
}

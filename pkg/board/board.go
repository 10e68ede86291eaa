// Package board implements the chess rules engine: board representation,
// SAN parsing and legality, and terminal-condition detection. It is pure —
// no I/O, no clock, no network — and deterministic.
package board

import "fmt"

// Board owns the 8x8 grid, castling rights, en-passant target, half-move
// clock and captured-piece lists described in the data model. It is not
// safe for concurrent use; callers (the Game orchestrator) serialize access.
type Board struct {
	grid [NumRanks][NumFiles]*Piece // grid[rank][file]; rank 0 = rank 1.

	Castling  CastlingRights
	EnPassant *Square // nil if no en-passant target is live.

	HalfmoveClock int

	CapturedByWhite []PieceType
	CapturedByBlack []PieceType
}

// NewBoard returns a Board set up in the standard initial position.
func NewBoard() *Board {
	b := &Board{Castling: FullCastlingRights}

	back := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for f := File(0); f < NumFiles; f++ {
		b.setPiece(NewSquare(f, 0), &Piece{Type: back[f], Color: White})
		b.setPiece(NewSquare(f, 1), &Piece{Type: Pawn, Color: White})
		b.setPiece(NewSquare(f, 6), &Piece{Type: Pawn, Color: Black})
		b.setPiece(NewSquare(f, 7), &Piece{Type: back[f], Color: Black})
	}
	return b
}

// NewEmptyBoard returns a Board with no pieces and full castling rights
// cleared, useful for constructing test and puzzle positions.
func NewEmptyBoard() *Board {
	return &Board{}
}

// Place sets the piece at sq, overwriting whatever was there. It performs
// no legality checks and does not touch castling rights or the en-passant
// target; callers building a custom position are responsible for those.
func (b *Board) Place(sq Square, p Piece) {
	b.setPiece(sq, &p)
}

// Remove clears sq.
func (b *Board) Remove(sq Square) {
	b.clearPiece(sq)
}

// Clone returns a deep-enough copy to run an exploratory move without
// disturbing the original: grid cells, castling flags, the en-passant
// target and the capture lists are all independently replaceable.
func (b *Board) Clone() *Board {
	clone := &Board{
		Castling:      b.Castling,
		HalfmoveClock: b.HalfmoveClock,
	}
	clone.grid = b.grid // array of pointers; pointers are never mutated in place.

	if b.EnPassant != nil {
		ep := *b.EnPassant
		clone.EnPassant = &ep
	}
	clone.CapturedByWhite = append([]PieceType(nil), b.CapturedByWhite...)
	clone.CapturedByBlack = append([]PieceType(nil), b.CapturedByBlack...)
	return clone
}

// PieceAt returns the piece occupying sq, or nil if empty.
func (b *Board) PieceAt(sq Square) *Piece {
	if !sq.IsValid() {
		return nil
	}
	return b.grid[sq.Rank][sq.File]
}

func (b *Board) setPiece(sq Square, p *Piece) {
	b.grid[sq.Rank][sq.File] = p
}

func (b *Board) clearPiece(sq Square) {
	b.grid[sq.Rank][sq.File] = nil
}

// KingSquare returns the square of color's king. Invariant I1 guarantees
// exactly one exists at the start of any turn; callers mid-exploration
// (a hypothetical capture of the king) must not rely on this.
func (b *Board) KingSquare(c Color) (Square, bool) {
	for r := Rank(0); r < NumRanks; r++ {
		for f := File(0); f < NumFiles; f++ {
			sq := NewSquare(f, r)
			if p := b.PieceAt(sq); p != nil && p.Type == King && p.Color == c {
				return sq, true
			}
		}
	}
	return Square{}, false
}

// ForEachPiece calls fn for every occupied square on the board.
func (b *Board) ForEachPiece(fn func(sq Square, p Piece)) {
	for r := Rank(0); r < NumRanks; r++ {
		for f := File(0); f < NumFiles; f++ {
			sq := NewSquare(f, r)
			if p := b.PieceAt(sq); p != nil {
				fn(sq, *p)
			}
		}
	}
}

// Snapshot is the wire representation of a board: row 0 is rank 8, row 7 is
// rank 1; columns 0..7 are files a..h. Cells are nil for empty squares.
type Snapshot [NumRanks][NumFiles]*SnapshotPiece

// SnapshotPiece is the JSON-facing {type, color} cell value.
type SnapshotPiece struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// ToSnapshot renders the board per the §6 snapshot format.
func (b *Board) ToSnapshot() Snapshot {
	var snap Snapshot
	for r := Rank(0); r < NumRanks; r++ {
		row := NumRanks - 1 - int(r) // row 0 <-> rank 8
		for f := File(0); f < NumFiles; f++ {
			if p := b.PieceAt(NewSquare(f, r)); p != nil {
				snap[row][f] = &SnapshotPiece{Type: p.Type.String(), Color: p.Color.JSON()}
			}
		}
	}
	return snap
}

func (b *Board) String() string {
	return fmt.Sprintf("board{castling=%v, ep=%v, halfmove=%v}", b.Castling, b.EnPassant, b.HalfmoveClock)
}

package board

// InCheck reports whether color's king is currently attacked.
func (b *Board) InCheck(color Color) bool {
	king, ok := b.KingSquare(color)
	if !ok {
		return false
	}
	return b.IsAttacked(king, color.Opponent())
}

// HasAnyLegalMove reports whether color has at least one legal move,
// including castling.
func (b *Board) HasAnyLegalMove(color Color) bool {
	found := false
	b.ForEachPiece(func(sq Square, p Piece) {
		if found || p.Color != color {
			return
		}
		for _, to := range b.geometricTargets(sq) {
			if b.wouldBeSafe(sq, to, p, color) {
				found = true
				return
			}
		}
	})
	if found {
		return true
	}
	return b.canCastle(color, true) || b.canCastle(color, false)
}

// wouldBeSafe reports whether moving the piece at from to to would leave
// color's king safe. It is a cheap simulate-on-clone check used by move
// generation and does not itself perform SAN bookkeeping.
func (b *Board) wouldBeSafe(from, to Square, p Piece, color Color) bool {
	trial := b.Clone()
	capture := trial.PieceAt(to) != nil
	enPassant := p.Type == Pawn && !capture && from.File != to.File

	move := Move{From: from, To: to, PieceType: p.Type, Capture: capture || enPassant}
	if p.Type == Pawn && isLastRank(to, color) {
		move.Promotion = Queen
	}
	trial.execute(move, color)

	king, ok := trial.KingSquare(color)
	if !ok {
		return false
	}
	return !trial.IsAttacked(king, color.Opponent())
}

func (b *Board) canCastle(color Color, kingside bool) bool {
	san := "O-O"
	if !kingside {
		san = "O-O-O"
	}
	trial := b.Clone()
	_, err := trial.applyCastle(color, kingside, san)
	return err == nil
}

// IsCheckmate reports whether color is checkmated: in check with no legal move.
func (b *Board) IsCheckmate(color Color) bool {
	return b.InCheck(color) && !b.HasAnyLegalMove(color)
}

// IsStalemate reports whether color is stalemated: not in check, no legal move.
func (b *Board) IsStalemate(color Color) bool {
	return !b.InCheck(color) && !b.HasAnyLegalMove(color)
}

// IsFiftyMoveDraw reports whether the half-move clock has reached 100 plies.
func (b *Board) IsFiftyMoveDraw() bool {
	return b.HalfmoveClock >= 100
}

// LegalDestinations enumerates the legal destination squares for the piece
// at sq, for UI move highlighting. Castling destinations are appended when
// sq holds a king that can castle.
func (b *Board) LegalDestinations(sq Square) []Square {
	p := b.PieceAt(sq)
	if p == nil {
		return nil
	}

	var out []Square
	for _, to := range b.geometricTargets(sq) {
		if b.wouldBeSafe(sq, to, *p, p.Color) {
			out = append(out, to)
		}
	}
	if p.Type == King {
		rank := homeRank(p.Color)
		if sq == NewSquare(4, rank) {
			if b.canCastle(p.Color, true) {
				out = append(out, NewSquare(6, rank))
			}
			if b.canCastle(p.Color, false) {
				out = append(out, NewSquare(2, rank))
			}
		}
	}
	return out
}

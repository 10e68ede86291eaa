package board

import (
	"fmt"
	"regexp"
	"strings"
)

// sanRegexp matches the SAN grammar described in §4.1, after castling
// literals and trailing check/checkmate/annotation suffixes have been
// stripped: (piece)? (disambig file)? (disambig rank)? x? dest (=promo)?
var sanRegexp = regexp.MustCompile(`^([KQRBN])?([a-h])?([1-8])?x?([a-h][1-8])(?:=([KQRBN]))?$`)

// ApplySAN parses san for the given color against b and, if legal, mutates
// b to the resulting position and returns the move record. On any failure
// — unparseable, ambiguous, or leaving the mover in check — b is left
// untouched and an error is returned.
func (b *Board) ApplySAN(color Color, san string) (Move, error) {
	clean := stripAnnotations(san)

	if isCastle(clean, true) {
		return b.applyCastle(color, true, san)
	}
	if isCastle(clean, false) {
		return b.applyCastle(color, false, san)
	}

	m := sanRegexp.FindStringSubmatch(clean)
	if m == nil {
		return Move{}, fmt.Errorf("not a legal move: %q does not parse as SAN", san)
	}

	pieceLetter, fileHint, rankHint, destStr, promoLetter := m[1], m[2], m[3], m[4], m[5]

	pieceType := Pawn
	if pieceLetter != "" {
		pt, ok := ParsePieceLetter(rune(pieceLetter[0]))
		if !ok {
			return Move{}, fmt.Errorf("not a legal move: invalid piece letter in %q", san)
		}
		pieceType = pt
	}

	dest, err := ParseSquare(destStr)
	if err != nil {
		return Move{}, fmt.Errorf("not a legal move: %v", err)
	}

	promotion := NoPieceType
	if promoLetter != "" {
		pt, ok := ParsePieceLetter(rune(promoLetter[0]))
		if !ok {
			return Move{}, fmt.Errorf("not a legal move: invalid promotion letter in %q", san)
		}
		promotion = pt
	}

	// (1) Enumerate own pieces of the declared type that can geometrically
	// reach dest, then filter by every disambiguation hint character.
	var candidates []Square
	b.ForEachPiece(func(sq Square, p Piece) {
		if p.Color != color || p.Type != pieceType {
			return
		}
		if !b.canGeometricallyReach(sq, dest) {
			return
		}
		if fileHint != "" {
			f, _ := ParseFile(rune(fileHint[0]))
			if sq.File != f {
				return
			}
		}
		if rankHint != "" {
			r, _ := ParseRank(rune(rankHint[0]))
			if sq.Rank != r {
				return
			}
		}
		candidates = append(candidates, sq)
	})

	// Ambiguity is resolved strictly before check-safety: a SAN that still
	// names more than one (or zero) candidates after hint filtering is
	// rejected outright, even if check-safety would leave only one legal.
	if len(candidates) != 1 {
		return Move{}, fmt.Errorf("not a legal move: %q is ambiguous or has no source", san)
	}
	from := candidates[0]

	if pieceType == Pawn && isLastRank(dest, color) && promotion == NoPieceType {
		promotion = Queen // SAN dialect: auto-queen when unspecified.
	}

	capture := b.PieceAt(dest) != nil
	enPassant := pieceType == Pawn && !capture && b.EnPassant != nil && *b.EnPassant == dest && dest.File != from.File

	move := Move{
		From:      from,
		To:        dest,
		PieceType: pieceType,
		Promotion: promotion,
		Capture:   capture || enPassant,
		Notation:  san,
	}

	// (2) Check-safety: simulate on a clone; reject if it leaves the mover's
	// own king in check.
	trial := b.Clone()
	trial.execute(move, color)
	if king, ok := trial.KingSquare(color); ok && trial.IsAttacked(king, color.Opponent()) {
		return Move{}, fmt.Errorf("not a legal move: %q leaves %v's king in check", san, color)
	}

	b.execute(move, color)
	return move, nil
}

func isLastRank(sq Square, color Color) bool {
	if color == White {
		return sq.Rank == NumRanks-1
	}
	return sq.Rank == 0
}

// stripAnnotations removes the trailing check/checkmate/annotation suffix
// characters (+, #, !, ?) from a SAN string.
func stripAnnotations(san string) string {
	return strings.TrimRight(strings.TrimSpace(san), "+#!?")
}

func isCastle(clean string, kingside bool) bool {
	normalized := strings.ReplaceAll(clean, "0", "O")
	if kingside {
		return normalized == "O-O"
	}
	return normalized == "O-O-O"
}

// execute performs the post-execution bookkeeping of §4.1: en-passant
// target, half-move clock, castling rights, promotion placement and
// captured-piece tracking. It assumes move has already been validated.
func (b *Board) execute(move Move, mover Color) {
	if move.CastleKS || move.CastleQS {
		b.executeCastle(move, mover)
		return
	}

	isEnPassant := move.PieceType == Pawn && move.From.File != move.To.File && b.PieceAt(move.To) == nil

	if isEnPassant {
		capturedSq := NewSquare(move.To.File, move.From.Rank)
		b.clearPiece(capturedSq)
		b.recordCapture(mover, Pawn)
	} else if move.Capture {
		if captured := b.PieceAt(move.To); captured != nil {
			b.recordCapture(mover, captured.Type)
		}
	}

	b.clearPiece(move.From)
	placed := move.PieceType
	if move.Promotion != NoPieceType {
		placed = move.Promotion
	}
	b.setPiece(move.To, &Piece{Type: placed, Color: mover})

	// (a) en-passant target.
	if move.PieceType == Pawn && absInt(int(move.To.Rank)-int(move.From.Rank)) == 2 {
		mid := Rank((int(move.To.Rank) + int(move.From.Rank)) / 2)
		ep := NewSquare(move.From.File, mid)
		b.EnPassant = &ep
	} else {
		b.EnPassant = nil
	}

	// (b) half-move clock.
	if move.PieceType == Pawn || move.Capture {
		b.HalfmoveClock = 0
	} else {
		b.HalfmoveClock++
	}

	// (c) castling rights: king move clears both; rook leaving or an
	// opposing piece arriving on a rook's original corner clears that right.
	if move.PieceType == King {
		b.clearCastlingRights(mover)
	}
	b.clearCornerRight(move.From)
	b.clearCornerRight(move.To)
}

func (b *Board) recordCapture(mover Color, captured PieceType) {
	if mover == White {
		b.CapturedByWhite = append(b.CapturedByWhite, captured)
	} else {
		b.CapturedByBlack = append(b.CapturedByBlack, captured)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (b *Board) clearCastlingRights(c Color) {
	if c == White {
		b.Castling.WhiteKingSide = false
		b.Castling.WhiteQueenSide = false
	} else {
		b.Castling.BlackKingSide = false
		b.Castling.BlackQueenSide = false
	}
}

func (b *Board) clearCornerRight(sq Square) {
	switch sq {
	case NewSquare(0, 0):
		b.Castling.WhiteQueenSide = false
	case NewSquare(NumFiles-1, 0):
		b.Castling.WhiteKingSide = false
	case NewSquare(0, NumRanks-1):
		b.Castling.BlackQueenSide = false
	case NewSquare(NumFiles-1, NumRanks-1):
		b.Castling.BlackKingSide = false
	}
}

// homeRank returns the back rank for color.
func homeRank(c Color) Rank {
	if c == White {
		return 0
	}
	return NumRanks - 1
}

// applyCastle validates and, if legal, executes a castling move.
func (b *Board) applyCastle(color Color, kingside bool, san string) (Move, error) {
	rank := homeRank(color)
	kingStart := NewSquare(4, rank)

	var rookStart, kingEnd, rookEnd Square
	var right bool
	if kingside {
		rookStart = NewSquare(NumFiles-1, rank)
		kingEnd = NewSquare(6, rank)
		rookEnd = NewSquare(5, rank)
		right = boolOr(color == White, b.Castling.WhiteKingSide, b.Castling.BlackKingSide)
	} else {
		rookStart = NewSquare(0, rank)
		kingEnd = NewSquare(2, rank)
		rookEnd = NewSquare(3, rank)
		right = boolOr(color == White, b.Castling.WhiteQueenSide, b.Castling.BlackQueenSide)
	}

	if !right {
		return Move{}, fmt.Errorf("not a legal move: %v has lost the right to castle %v", color, sideName(kingside))
	}
	if p := b.PieceAt(kingStart); p == nil || p.Type != King || p.Color != color {
		return Move{}, fmt.Errorf("not a legal move: no %v king on its start square", color)
	}
	if p := b.PieceAt(rookStart); p == nil || p.Type != Rook || p.Color != color {
		return Move{}, fmt.Errorf("not a legal move: no %v rook on its castling corner", color)
	}
	if !b.pathClear(kingStart, rookStart) {
		return Move{}, fmt.Errorf("not a legal move: pieces stand between king and rook")
	}
	if b.IsAttacked(kingStart, color.Opponent()) {
		return Move{}, fmt.Errorf("not a legal move: %v is in check", color)
	}
	step := sign(int(kingEnd.File) - int(kingStart.File))
	for sq := kingStart; sq != kingEnd; {
		next, _ := sq.add(step, 0)
		if b.IsAttacked(next, color.Opponent()) {
			return Move{}, fmt.Errorf("not a legal move: king would pass through or land on an attacked square")
		}
		sq = next
	}

	move := Move{
		From:      kingStart,
		To:        kingEnd,
		PieceType: King,
		CastleKS:  kingside,
		CastleQS:  !kingside,
		Notation:  san,
	}
	_ = rookEnd // used inside executeCastle via recomputation
	b.execute(move, color)
	return move, nil
}

func boolOr(isWhite bool, whiteVal, blackVal bool) bool {
	if isWhite {
		return whiteVal
	}
	return blackVal
}

func sideName(kingside bool) string {
	if kingside {
		return "king-side"
	}
	return "queen-side"
}

// executeCastle repositions king and rook atomically and clears both
// castling rights and the en-passant target for the moving side.
func (b *Board) executeCastle(move Move, mover Color) {
	rank := homeRank(mover)

	var rookStart, rookEnd Square
	if move.CastleKS {
		rookStart = NewSquare(NumFiles-1, rank)
		rookEnd = NewSquare(5, rank)
	} else {
		rookStart = NewSquare(0, rank)
		rookEnd = NewSquare(3, rank)
	}

	b.clearPiece(move.From)
	b.clearPiece(rookStart)
	b.setPiece(move.To, &Piece{Type: King, Color: mover})
	b.setPiece(rookEnd, &Piece{Type: Rook, Color: mover})

	b.clearCastlingRights(mover)
	b.EnPassant = nil
	b.HalfmoveClock++
}

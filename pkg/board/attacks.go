package board

// This file implements geometric reachability (§4.1 "Geometric reachability")
// and the attack predicate used for check detection. Both are pure functions
// of the current grid; neither considers whether a move leaves the mover's
// own king in check — that filter lives in san.go.

var knightOffsets = [8][2]int{
	{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

var kingOffsets = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

var bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var rookDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// pathClear reports whether every square strictly between from and to (both
// exclusive) is empty. Callers guarantee from/to lie on a shared rank, file
// or diagonal.
func (b *Board) pathClear(from, to Square) bool {
	df := sign(int(to.File) - int(from.File))
	dr := sign(int(to.Rank) - int(from.Rank))

	cur, ok := from.add(df, dr)
	for ok && cur != to {
		if b.PieceAt(cur) != nil {
			return false
		}
		cur, ok = cur.add(df, dr)
	}
	return true
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// geometricTargets enumerates every square the piece at sq could move to,
// ignoring whether doing so leaves its own king in check. A destination
// occupied by a same-color piece is never included. Castling destinations
// are not included here — they are appended separately by callers that want
// them (§4.1 "Legal-destinations query").
func (b *Board) geometricTargets(sq Square) []Square {
	p := b.PieceAt(sq)
	if p == nil {
		return nil
	}

	var out []Square
	add := func(to Square, ok bool) {
		if ok && (b.PieceAt(to) == nil || b.PieceAt(to).Color != p.Color) {
			out = append(out, to)
		}
	}

	switch p.Type {
	case King:
		for _, d := range kingOffsets {
			to, ok := sq.add(d[0], d[1])
			add(to, ok)
		}
	case Knight:
		for _, d := range knightOffsets {
			to, ok := sq.add(d[0], d[1])
			add(to, ok)
		}
	case Bishop:
		out = append(out, b.slideTargets(sq, p.Color, bishopDirs[:])...)
	case Rook:
		out = append(out, b.slideTargets(sq, p.Color, rookDirs[:])...)
	case Queen:
		out = append(out, b.slideTargets(sq, p.Color, bishopDirs[:])...)
		out = append(out, b.slideTargets(sq, p.Color, rookDirs[:])...)
	case Pawn:
		out = append(out, b.pawnTargets(sq, p.Color)...)
	}
	return out
}

func (b *Board) slideTargets(sq Square, color Color, dirs [][2]int) []Square {
	var out []Square
	for _, d := range dirs {
		cur, ok := sq.add(d[0], d[1])
		for ok {
			occ := b.PieceAt(cur)
			if occ == nil {
				out = append(out, cur)
			} else {
				if occ.Color != color {
					out = append(out, cur)
				}
				break
			}
			cur, ok = cur.add(d[0], d[1])
		}
	}
	return out
}

func (b *Board) pawnTargets(sq Square, color Color) []Square {
	var out []Square
	dir := 1
	startRank := Rank(1)
	if color == Black {
		dir = -1
		startRank = Rank(6)
	}

	// Single step forward to an empty square.
	if one, ok := sq.add(0, dir); ok && b.PieceAt(one) == nil {
		out = append(out, one)

		// Double step from the starting rank with both squares empty.
		if sq.Rank == startRank {
			if two, ok := sq.add(0, 2*dir); ok && b.PieceAt(two) == nil {
				out = append(out, two)
			}
		}
	}

	// Diagonal captures, including en passant.
	for _, df := range []int{-1, 1} {
		to, ok := sq.add(df, dir)
		if !ok {
			continue
		}
		if occ := b.PieceAt(to); occ != nil && occ.Color != color {
			out = append(out, to)
		} else if b.EnPassant != nil && *b.EnPassant == to {
			out = append(out, to)
		}
	}
	return out
}

// canGeometricallyReach reports whether the piece at from can reach to,
// ignoring check-safety.
func (b *Board) canGeometricallyReach(from, to Square) bool {
	for _, t := range b.geometricTargets(from) {
		if t == to {
			return true
		}
	}
	return false
}

// attacksSquare reports whether the piece p sitting at from attacks target.
// Pawns attack diagonally only — never the square directly ahead — unlike
// geometricTargets, which includes the non-capturing forward push.
func attacksSquare(p Piece, from, target Square) bool {
	switch p.Type {
	case Pawn:
		dir := 1
		if p.Color == Black {
			dir = -1
		}
		for _, df := range []int{-1, 1} {
			if to, ok := from.add(df, dir); ok && to == target {
				return true
			}
		}
		return false
	case Knight:
		for _, d := range knightOffsets {
			if to, ok := from.add(d[0], d[1]); ok && to == target {
				return true
			}
		}
		return false
	case King:
		for _, d := range kingOffsets {
			if to, ok := from.add(d[0], d[1]); ok && to == target {
				return true
			}
		}
		return false
	default:
		return false // Bishop/Rook/Queen handled by slidingAttacks below.
	}
}

// IsAttacked reports whether target is attacked by any piece of color by.
func (b *Board) IsAttacked(target Square, by Color) bool {
	attacked := false
	b.ForEachPiece(func(sq Square, p Piece) {
		if attacked || p.Color != by {
			return
		}
		switch p.Type {
		case Bishop:
			attacked = b.slidingAttacks(sq, target, bishopDirs[:])
		case Rook:
			attacked = b.slidingAttacks(sq, target, rookDirs[:])
		case Queen:
			attacked = b.slidingAttacks(sq, target, bishopDirs[:]) || b.slidingAttacks(sq, target, rookDirs[:])
		default:
			attacked = attacksSquare(p, sq, target)
		}
	})
	return attacked
}

func (b *Board) slidingAttacks(from, target Square, dirs [][2]int) bool {
	for _, d := range dirs {
		cur, ok := from.add(d[0], d[1])
		for ok {
			if cur == target {
				return true
			}
			if b.PieceAt(cur) != nil {
				break
			}
			cur, ok = cur.add(d[0], d[1])
		}
	}
	return false
}

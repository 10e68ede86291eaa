package board_test

import (
	"testing"

	"github.com/PurinNyova/LLM-Chess-Arena/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoolsMate(t *testing.T) {
	b := board.NewBoard()

	moves := []struct {
		color board.Color
		san   string
	}{
		{board.White, "f3"},
		{board.Black, "e5"},
		{board.White, "g4"},
		{board.Black, "Qh4"},
	}

	for _, m := range moves {
		_, err := b.ApplySAN(m.color, m.san)
		require.NoError(t, err, "move %v should be legal", m.san)
	}

	assert.True(t, b.IsCheckmate(board.White))
	assert.False(t, b.IsStalemate(board.White))
}

func TestCaptureListsAndHalfmoveClock(t *testing.T) {
	b := board.NewBoard()

	_, err := b.ApplySAN(board.White, "e4")
	require.NoError(t, err)
	assert.Equal(t, 0, b.HalfmoveClock, "pawn move resets the clock")

	_, err = b.ApplySAN(board.Black, "Nf6")
	require.NoError(t, err)
	assert.Equal(t, 1, b.HalfmoveClock, "knight move increments the clock")

	_, err = b.ApplySAN(board.White, "e5")
	require.NoError(t, err)
	_, err = b.ApplySAN(board.Black, "Nd5")
	require.NoError(t, err)

	_, err = b.ApplySAN(board.White, "Nc3")
	require.NoError(t, err)
	_, err = b.ApplySAN(board.Black, "Nxc3")
	require.NoError(t, err)
	assert.Equal(t, 0, b.HalfmoveClock, "capture resets the clock")
	require.Len(t, b.CapturedByBlack, 1)
	assert.Equal(t, board.Knight, b.CapturedByBlack[0])
}

func TestEnPassant(t *testing.T) {
	b := board.NewBoard()

	for _, m := range []struct {
		color board.Color
		san   string
	}{
		{board.White, "e4"},
		{board.Black, "a6"},
		{board.White, "e5"},
		{board.Black, "d5"},
	} {
		_, err := b.ApplySAN(m.color, m.san)
		require.NoError(t, err)
	}

	require.NotNil(t, b.EnPassant)
	assert.Equal(t, board.NewSquare(3, 5), *b.EnPassant) // d6

	move, err := b.ApplySAN(board.White, "exd6")
	require.NoError(t, err)
	assert.True(t, move.Capture)
	assert.Nil(t, b.PieceAt(board.NewSquare(3, 4))) // the captured pawn on d5 is gone
	require.Len(t, b.CapturedByWhite, 1)
	assert.Equal(t, board.Pawn, b.CapturedByWhite[0])
}

func TestCastlingRightsMonotonicallyNonIncreasing(t *testing.T) {
	b := board.NewBoard()

	for _, m := range []struct {
		color board.Color
		san   string
	}{
		{board.White, "Nf3"},
		{board.Black, "Nf6"},
		{board.White, "g3"},
		{board.Black, "g6"},
		{board.White, "Bg2"},
		{board.Black, "Bg7"},
	} {
		_, err := b.ApplySAN(m.color, m.san)
		require.NoError(t, err)
	}

	require.True(t, b.Castling.WhiteKingSide)
	_, err := b.ApplySAN(board.White, "O-O")
	require.NoError(t, err)
	assert.False(t, b.Castling.WhiteKingSide)
	assert.False(t, b.Castling.WhiteQueenSide)

	_, err = b.ApplySAN(board.Black, "O-O")
	require.NoError(t, err)
	assert.False(t, b.Castling.BlackKingSide)
	assert.False(t, b.Castling.BlackQueenSide)
}

func TestCastlingRightLostOnRookCapture(t *testing.T) {
	b := board.NewBoard()

	for _, m := range []struct {
		color board.Color
		san   string
	}{
		{board.White, "g4"},
		{board.Black, "h5"},
		{board.White, "gxh5"},
		{board.Black, "Rxh5"},
		{board.White, "Nf3"},
		{board.Black, "Rh8"}, // rook returns home but right is already gone
	} {
		_, err := b.ApplySAN(m.color, m.san)
		require.NoError(t, err)
	}

	assert.False(t, b.Castling.BlackKingSide, "right is lost the moment the rook leaves its corner")
}

func TestCastlingRightLostWhenRookCapturedOnItsCorner(t *testing.T) {
	b := board.NewEmptyBoard()
	b.Castling = board.FullCastlingRights
	b.Place(board.NewSquare(4, 0), board.Piece{Type: board.King, Color: board.White})
	b.Place(board.NewSquare(4, 7), board.Piece{Type: board.King, Color: board.Black})
	b.Place(board.NewSquare(2, 2), board.Piece{Type: board.Bishop, Color: board.White}) // c3
	b.Place(board.NewSquare(7, 7), board.Piece{Type: board.Rook, Color: board.Black})   // h8

	require.True(t, b.Castling.BlackKingSide)
	_, err := b.ApplySAN(board.White, "Bxh8")
	require.NoError(t, err)
	assert.False(t, b.Castling.BlackKingSide)
}

func TestStalemate(t *testing.T) {
	b := board.NewEmptyBoard()
	b.Place(board.NewSquare(7, 0), board.Piece{Type: board.King, Color: board.White})  // h1
	b.Place(board.NewSquare(5, 1), board.Piece{Type: board.King, Color: board.Black})  // f2
	b.Place(board.NewSquare(6, 2), board.Piece{Type: board.Queen, Color: board.Black}) // g3

	assert.False(t, b.InCheck(board.White))
	assert.True(t, b.IsStalemate(board.White))
}

func TestFiftyMoveDraw(t *testing.T) {
	b := board.NewEmptyBoard()
	b.Place(board.NewSquare(4, 0), board.Piece{Type: board.King, Color: board.White})
	b.Place(board.NewSquare(4, 7), board.Piece{Type: board.King, Color: board.Black})
	b.Place(board.NewSquare(0, 0), board.Piece{Type: board.Rook, Color: board.White})

	turn := board.White
	for i := 0; i < 100; i++ {
		var err error
		if turn == board.White {
			_, err = b.ApplySAN(turn, "Ra1")
			if err != nil {
				_, err = b.ApplySAN(turn, "Rb1")
			}
		} else {
			_, err = b.ApplySAN(turn, "Kd8")
			if err != nil {
				_, err = b.ApplySAN(turn, "Ke8")
			}
		}
		require.NoError(t, err, "ply %d", i)
		turn = turn.Opponent()
	}

	assert.True(t, b.IsFiftyMoveDraw())
}

func TestSnapshotOrientation(t *testing.T) {
	b := board.NewBoard()
	snap := b.ToSnapshot()

	require.NotNil(t, snap[0][0])
	assert.Equal(t, "BLACK", snap[0][0].Color, "row 0 is rank 8: a8 is a black rook")
	assert.Equal(t, "ROOK", snap[0][0].Type)

	require.NotNil(t, snap[7][0])
	assert.Equal(t, "WHITE", snap[7][0].Color, "row 7 is rank 1: a1 is a white rook")
}

func TestAmbiguousSANRejected(t *testing.T) {
	b := board.NewEmptyBoard()
	b.Place(board.NewSquare(4, 0), board.Piece{Type: board.King, Color: board.White})
	b.Place(board.NewSquare(4, 7), board.Piece{Type: board.King, Color: board.Black})
	b.Place(board.NewSquare(2, 2), board.Piece{Type: board.Knight, Color: board.White}) // c3
	b.Place(board.NewSquare(6, 2), board.Piece{Type: board.Knight, Color: board.White}) // g3

	// Both knights can reach e4; an underspecified move naming just the
	// piece and destination must be rejected when more than one candidate
	// survives hint filtering, even though disambiguation would resolve it.
	_, err := b.ApplySAN(board.White, "Ne4")
	require.Error(t, err)

	_, err = b.ApplySAN(board.White, "Nce4")
	require.NoError(t, err)
}

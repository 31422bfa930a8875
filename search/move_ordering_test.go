package search

import (
	"testing"

	"github.com/matryer/is"
	"github.com/notnil/chess"
	"github.com/samber/lo"

	"github.com/alxlyan/alexchess/board"
)

func tokens(moves []*chess.Move) []string {
	return lo.Map(moves, func(m *chess.Move, _ int) string { return board.MoveToken(m) })
}

func TestOrderCapturesMVVLVA(t *testing.T) {
	is := is.New(t)
	// pawn takes queen, pawn takes rook, rook takes rook, queen takes pawn.
	b := mustBoard(is, "4k3/8/7p/R1r1q3/3P4/7Q/8/6K1 w - - 0 1")
	caps := OrderCaptures(b)
	is.Equal(tokens(caps), []string{"d4e5", "d4c5", "a5c5", "h3h6"})

	for i := 1; i < len(caps); i++ {
		is.True(mvvLva(b, caps[i-1]) >= mvvLva(b, caps[i]))
	}
}

func TestOrderCapturesEnPassant(t *testing.T) {
	is := is.New(t)
	b := mustBoard(is, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	caps := OrderCaptures(b)
	is.Equal(tokens(caps), []string{"e5d6"})
	// the victim is not on the target square.
	is.Equal(int(mvvLva(b, caps[0])), 100*100-100)
}

func TestOrderMovesCapturesAndChecksFirst(t *testing.T) {
	is := is.New(t)
	b := mustBoard(is, "4k3/3p4/8/8/8/8/8/3QK3 w - - 0 1")
	moves := OrderMoves(b, 0)
	is.Equal(len(moves), len(b.LegalMoves()))
	is.Equal(board.MoveToken(moves[0]), "d1d7") // capture with check

	key := func(m *chess.Move) int {
		k := 0
		if b.IsCapture(m) {
			k += 2
		}
		if b.GivesCheck(m) {
			k++
		}
		return k
	}
	for i := 1; i < len(moves); i++ {
		is.True(key(moves[i-1]) >= key(moves[i]))
	}
	is.Equal(b.FEN(), "4k3/3p4/8/8/8/8/8/3QK3 w - - 0 1")
}

func TestOrderMovesHintFirst(t *testing.T) {
	is := is.New(t)
	b := board.NewBoard()
	m, err := b.ParseMove("g1f3")
	is.NoErr(err)

	moves := OrderMoves(b, packMove(m))
	is.Equal(len(moves), 20)
	is.Equal(board.MoveToken(moves[0]), "g1f3")
	is.Equal(len(lo.UniqBy(moves, board.MoveToken)), 20)

	// a hint that is not legal here is ignored.
	e7, err := mustBoard(is, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1").ParseMove("e7e5")
	is.NoErr(err)
	moves = OrderMoves(b, packMove(e7))
	is.Equal(len(moves), 20)
	is.Equal(board.MoveToken(moves[0]), board.MoveToken(b.LegalMoves()[0]))
}

package board

import (
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	b := NewBoard()
	assert.Equal(t, StartFEN, b.FEN())
	assert.Len(t, b.LegalMoves(), 20)
	assert.Equal(t, chess.White, b.Turn())
	assert.False(t, b.IsGameOver())
	assert.Equal(t, "*", b.Result())
}

func TestFromFENRejectsGarbage(t *testing.T) {
	for _, fen := range []string{
		"",
		"not a fen",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",
		"4k3/8/8/8/8/8/8/4R3 w - - 0 1",
		"8/8/8/8/8/8/8/4K3 w - - 0 1",
		"4k3/8/8/8/8/8/8/3KK3 w - - 0 1",
		"3kk3/8/8/8/8/8/8/4K3 w - - 0 1",
	} {
		_, err := FromFEN(fen)
		assert.ErrorIs(t, err, ErrBadFEN, fen)
	}
}

func TestPushUndoRestores(t *testing.T) {
	b := NewBoard()
	before := b.FEN()
	fp := b.Fingerprint()

	m, err := b.ParseMove("e2e4")
	require.NoError(t, err)
	undo := b.Push(m)
	assert.Equal(t, 1, b.Ply())
	assert.Equal(t, chess.Black, b.Turn())
	assert.NotEqual(t, fp, b.Fingerprint())

	reply, err := b.ParseMove("e7e5")
	require.NoError(t, err)
	b.Push(reply)
	assert.Equal(t, 2, b.Ply())

	// undoing the outer move also drops everything played on top of it.
	undo()
	assert.Equal(t, before, b.FEN())
	assert.Equal(t, fp, b.Fingerprint())
	assert.Equal(t, 0, b.Ply())

	// and is harmless when called again.
	undo()
	assert.Equal(t, before, b.FEN())
}

func TestPop(t *testing.T) {
	b := NewBoard()
	assert.ErrorIs(t, b.Pop(), ErrNothingToPop)
	require.NoError(t, b.PushToken("g1f3"))
	require.NoError(t, b.Pop())
	assert.Equal(t, StartFEN, b.FEN())
}

func TestParseMoveIllegal(t *testing.T) {
	b := NewBoard()
	_, err := b.ParseMove("e2e5")
	assert.ErrorIs(t, err, ErrIllegalMove)
	_, err = b.ParseMove("zz")
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestMoveTokenRoundTrip(t *testing.T) {
	b, err := FromFEN("8/4P3/8/8/8/8/k7/4K3 w - - 0 1")
	require.NoError(t, err)
	m, err := b.ParseMove("e7e8q")
	require.NoError(t, err)
	assert.Equal(t, "e7e8q", MoveToken(m))
	assert.Equal(t, chess.Queen, m.Promo())
}

func TestCapturesAndChecks(t *testing.T) {
	// white queen on d1 can take the pawn on d7 with check.
	b, err := FromFEN("4k3/3p4/8/8/8/8/8/3QK3 w - - 0 1")
	require.NoError(t, err)

	take, err := b.ParseMove("d1d7")
	require.NoError(t, err)
	quietCheck, err := b.ParseMove("d1h5")
	require.NoError(t, err)
	quiet, err := b.ParseMove("d1d2")
	require.NoError(t, err)

	assert.True(t, b.IsCapture(take))
	assert.False(t, b.IsCapture(quiet))
	assert.True(t, b.GivesCheck(take))
	assert.True(t, b.GivesCheck(quietCheck))
	assert.False(t, b.GivesCheck(quiet))
	// GivesCheck leaves the board as it found it.
	assert.Equal(t, "4k3/3p4/8/8/8/8/8/3QK3 w - - 0 1", b.FEN())
	assert.False(t, b.InCheck())
}

func TestEnPassantIsCapture(t *testing.T) {
	b, err := FromFEN("4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	require.NoError(t, err)
	m, err := b.ParseMove("e5d6")
	require.NoError(t, err)
	assert.True(t, b.IsCapture(m))
}

func TestCheckmateAndStalemate(t *testing.T) {
	mated, err := FromFEN("R5k1/5ppp/8/8/8/8/5PPP/6K1 b - - 1 1")
	require.NoError(t, err)
	assert.True(t, mated.InCheck())
	assert.True(t, mated.IsCheckmate())
	assert.True(t, mated.IsGameOver())
	assert.Equal(t, "1-0", mated.Result())

	stale, err := FromFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)
	assert.True(t, stale.IsStalemate())
	assert.False(t, stale.InCheck())
	assert.Equal(t, "1/2-1/2", stale.Result())
}

func TestInsufficientMaterial(t *testing.T) {
	cases := map[string]bool{
		"4k3/8/8/8/8/8/8/4K3 w - - 0 1":     true,
		"4k3/8/8/8/8/8/8/3NK3 w - - 0 1":    true,
		"4k3/8/8/8/8/8/8/3BK3 w - - 0 1":    true,
		"2b1k3/8/8/8/8/8/8/2B1K3 w - - 0 1": false, // opposite colored bishops
		"3bk3/8/8/8/8/8/8/2B1K3 w - - 0 1":  true, // same colored bishops
		"4k3/8/8/8/8/8/8/2NNK3 w - - 0 1":   false,
		"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1":   false,
		"4k3/8/8/8/8/8/8/3RK3 w - - 0 1":    false,
	}
	for fen, want := range cases {
		b, err := FromFEN(fen)
		require.NoError(t, err)
		assert.Equal(t, want, b.IsInsufficientMaterial(), fen)
	}
}

func TestRepetition(t *testing.T) {
	b := NewBoard()
	assert.False(t, b.IsRepetition(2))

	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for _, tok := range shuffle {
		require.NoError(t, b.PushToken(tok))
	}
	// back at the start: second occurrence.
	assert.True(t, b.IsRepetition(2))
	assert.False(t, b.IsRepetition(3))
	assert.False(t, b.CanClaimDraw())

	for _, tok := range shuffle {
		require.NoError(t, b.PushToken(tok))
	}
	assert.True(t, b.IsRepetition(3))
	assert.True(t, b.CanClaimDraw())
	assert.True(t, b.IsGameOver())
	assert.Equal(t, "1/2-1/2", b.Result())
}

func TestRepetitionIgnoresCounters(t *testing.T) {
	// the fingerprint and the repetition key agree that move counters do
	// not matter, but only the repetition key looks at history.
	b := NewBoard()
	start := b.Fingerprint()
	for _, tok := range []string{"b1c3", "b8c6", "c3b1", "c6b8"} {
		require.NoError(t, b.PushToken(tok))
	}
	assert.Equal(t, start, b.Fingerprint())
	assert.NotEqual(t, StartFEN, b.FEN())
	assert.True(t, b.IsRepetition(2))
}

func TestFiftyMoveClock(t *testing.T) {
	b, err := FromFEN("4k3/8/8/8/8/8/8/R3K3 w - - 99 80")
	require.NoError(t, err)
	assert.False(t, b.CanClaimDraw())
	require.NoError(t, b.PushToken("a1a2"))
	assert.Equal(t, 100, b.HalfMoveClock())
	assert.True(t, b.CanClaimDraw())

	// a pawn move or capture resets the clock.
	p, err := FromFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 40 80")
	require.NoError(t, err)
	require.NoError(t, p.PushToken("e2e4"))
	assert.Equal(t, 0, p.HalfMoveClock())
}

func TestCopyIsIndependent(t *testing.T) {
	b := NewBoard()
	c := b.Copy()
	require.NoError(t, c.PushToken("e2e4"))
	assert.Equal(t, 0, b.Ply())
	assert.Equal(t, 1, c.Ply())
}

func TestInCheckAgreesWithScan(t *testing.T) {
	b := NewBoard()
	for _, tok := range []string{
		"e2e4", "e7e5", "d1h5", "b8c6", "h5f7", "e8f7",
		"f1c4", "d7d5", "c4d5", "f7f6", "d5b3",
	} {
		require.NoError(t, b.PushToken(tok))
		assert.Equal(t, b.setupInCheck(), b.InCheck(), tok)
	}

	// a setup position in check has no move to read it from.
	c, err := FromFEN("4k3/8/8/8/8/8/8/4RK2 b - - 0 1")
	require.NoError(t, err)
	assert.True(t, c.InCheck())
}

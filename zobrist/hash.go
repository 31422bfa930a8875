package zobrist

import (
	"github.com/notnil/chess"
	"lukechampine.com/frand"
)

const bignum = 1<<63 - 2

// fixed so fingerprints are stable from one run to the next.
var seed = []byte("alexchess zobrist key tables v1!")

// generate a zobrist hash for a chess position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	blackToMove uint64

	// indexed by chess.Piece (1-12) then square; row 0 is unused.
	posTable    [13][64]uint64
	castleTable [4]uint64
	epTable     [8]uint64
}

// Default is shared by every board. The tables are read-only once
// initialized.
var Default = New()

func New() *Zobrist {
	z := &Zobrist{}
	z.Initialize()
	return z
}

func (z *Zobrist) Initialize() {
	rng := frand.NewCustom(seed, 1024, 20)
	for p := 1; p < len(z.posTable); p++ {
		for sq := 0; sq < 64; sq++ {
			z.posTable[p][sq] = rng.Uint64n(bignum) + 1
		}
	}
	for i := range z.castleTable {
		z.castleTable[i] = rng.Uint64n(bignum) + 1
	}
	for i := range z.epTable {
		z.epTable[i] = rng.Uint64n(bignum) + 1
	}
	z.blackToMove = rng.Uint64n(bignum) + 1
}

// Hash fingerprints piece placement, side to move, castling rights and the
// en-passant file. Move counters are left out on purpose so that the same
// position reached at different points of a game hashes the same.
func (z *Zobrist) Hash(pos *chess.Position) uint64 {
	key := uint64(0)
	bd := pos.Board()
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := bd.Piece(sq)
		if p == chess.NoPiece {
			continue
		}
		key ^= z.posTable[p][sq]
	}
	cr := pos.CastleRights()
	for i, c := range []struct {
		color chess.Color
		side  chess.Side
	}{
		{chess.White, chess.KingSide},
		{chess.White, chess.QueenSide},
		{chess.Black, chess.KingSide},
		{chess.Black, chess.QueenSide},
	} {
		if cr.CanCastle(c.color, c.side) {
			key ^= z.castleTable[i]
		}
	}
	if ep, ok := CapturableEnPassant(pos); ok {
		key ^= z.epTable[ep.File()]
	}
	if pos.Turn() == chess.Black {
		key ^= z.blackToMove
	}
	return key
}

// CapturableEnPassant returns the en-passant target square only when a pawn
// of the side to move stands next to the pawn that just double-stepped.
// A target that cannot be captured does not change what the position is.
func CapturableEnPassant(pos *chess.Position) (chess.Square, bool) {
	ep := pos.EnPassantSquare()
	if ep == chess.NoSquare {
		return chess.NoSquare, false
	}
	turn := pos.Turn()
	// the capturing pawn sits on the same rank as the pawn that moved,
	// one rank "behind" the target from the mover's point of view.
	rank := int(ep.Rank()) - 1
	ownPawn := chess.WhitePawn
	if turn == chess.Black {
		rank = int(ep.Rank()) + 1
		ownPawn = chess.BlackPawn
	}
	if rank < 0 || rank > 7 {
		return chess.NoSquare, false
	}
	bd := pos.Board()
	for _, df := range []int{-1, 1} {
		f := int(ep.File()) + df
		if f < 0 || f > 7 {
			continue
		}
		if bd.Piece(chess.Square(rank*8+f)) == ownPawn {
			return ep, true
		}
	}
	return chess.NoSquare, false
}

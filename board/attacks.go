package board

import "github.com/notnil/chess"

var (
	knightJumps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookRays    = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopRays  = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func squareAt(file, rank int) (chess.Square, bool) {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return chess.NoSquare, false
	}
	return chess.Square(rank*8 + file), true
}

func findKing(bd *chess.Board, c chess.Color) chess.Square {
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := bd.Piece(sq)
		if p.Type() == chess.King && p.Color() == c {
			return sq
		}
	}
	return chess.NoSquare
}

// attacked reports whether any piece of color by attacks sq.
func attacked(bd *chess.Board, sq chess.Square, by chess.Color) bool {
	f, r := int(sq.File()), int(sq.Rank())

	// a pawn of color by attacks sq from one rank behind it.
	pawnRank := r - 1
	if by == chess.Black {
		pawnRank = r + 1
	}
	for _, df := range []int{-1, 1} {
		if from, ok := squareAt(f+df, pawnRank); ok {
			p := bd.Piece(from)
			if p.Type() == chess.Pawn && p.Color() == by {
				return true
			}
		}
	}

	for _, d := range knightJumps {
		if from, ok := squareAt(f+d[0], r+d[1]); ok {
			p := bd.Piece(from)
			if p.Type() == chess.Knight && p.Color() == by {
				return true
			}
		}
	}
	for _, d := range kingSteps {
		if from, ok := squareAt(f+d[0], r+d[1]); ok {
			p := bd.Piece(from)
			if p.Type() == chess.King && p.Color() == by {
				return true
			}
		}
	}

	slider := func(rays [4][2]int, kind chess.PieceType) bool {
		for _, d := range rays {
			for step := 1; ; step++ {
				from, ok := squareAt(f+d[0]*step, r+d[1]*step)
				if !ok {
					break
				}
				p := bd.Piece(from)
				if p == chess.NoPiece {
					continue
				}
				if p.Color() == by && (p.Type() == kind || p.Type() == chess.Queen) {
					return true
				}
				break
			}
		}
		return false
	}
	return slider(rookRays, chess.Rook) || slider(bishopRays, chess.Bishop)
}

// Package evaluation scores a chess position statically, without search.
package evaluation

import "github.com/notnil/chess"

// Score is in centipawns.
type Score int32

const (
	// MateScore is reported for a checkmated position. Positional scores
	// never come close to it.
	MateScore Score = 10000
	Draw      Score = 0
	// RepetitionPenalty is charged to the side to move when the position
	// has been seen before in the game.
	RepetitionPenalty Score = 30
)

// Position is what the evaluator needs to know about a game. *board.Board
// satisfies it.
type Position interface {
	IsCheckmate() bool
	IsStalemate() bool
	IsInsufficientMaterial() bool
	CanClaimDraw() bool
	IsRepetition(count int) bool
	Turn() chess.Color
	PieceAt(sq chess.Square) chess.Piece
}

var pieceValues = [...]Score{
	chess.NoPieceType: 0,
	chess.King:        0,
	chess.Queen:       900,
	chess.Rook:        500,
	chess.Bishop:      330,
	chess.Knight:      320,
	chess.Pawn:        100,
}

// PieceValue is the material value of a piece type.
func PieceValue(pt chess.PieceType) Score {
	if int(pt) >= len(pieceValues) {
		return 0
	}
	return pieceValues[pt]
}

// Evaluate scores pos from White's point of view.
func Evaluate(pos Position) Score {
	if pos.IsCheckmate() {
		if pos.Turn() == chess.White {
			return -MateScore
		}
		return MateScore
	}
	if pos.IsStalemate() || pos.IsInsufficientMaterial() || pos.CanClaimDraw() {
		return Draw
	}
	if pos.IsRepetition(2) {
		if pos.Turn() == chess.White {
			return -RepetitionPenalty
		}
		return RepetitionPenalty
	}

	var score Score
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := pos.PieceAt(sq)
		if p == chess.NoPiece {
			continue
		}
		pt := p.Type()
		if p.Color() == chess.White {
			score += PieceValue(pt) + squareBonus(pt, sq^56)
		} else {
			score -= PieceValue(pt) + squareBonus(pt, sq)
		}
	}
	return score
}

// EvaluateRelative scores pos for the side to move.
func EvaluateRelative(pos Position) Score {
	s := Evaluate(pos)
	if pos.Turn() == chess.Black {
		return -s
	}
	return s
}

func squareBonus(pt chess.PieceType, idx chess.Square) Score {
	var t *[64]Score
	switch pt {
	case chess.Pawn:
		t = &pawnTable
	case chess.Knight:
		t = &knightTable
	case chess.Bishop:
		t = &bishopTable
	case chess.Rook:
		t = &rookTable
	case chess.Queen:
		t = &queenTable
	case chess.King:
		t = &kingTable
	default:
		return 0
	}
	return t[idx]
}

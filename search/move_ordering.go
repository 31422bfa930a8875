package search

import (
	"sort"

	"github.com/notnil/chess"
	"github.com/samber/lo"

	"github.com/alxlyan/alexchess/board"
	"github.com/alxlyan/alexchess/evaluation"
)

// OrderMoves returns the legal moves of b in the order the search should
// try them: the hinted move first if it is legal, then captures before
// non-captures and checks before non-checks. Ties keep generation order.
func OrderMoves(b *board.Board, hint PackedMove) []*chess.Move {
	moves := append([]*chess.Move(nil), b.LegalMoves()...)
	rest := moves
	if hm := hint.find(moves); hm != nil {
		for i, m := range moves {
			if m == hm {
				copy(moves[1:i+1], moves[:i])
				moves[0] = hm
				break
			}
		}
		rest = moves[1:]
	}

	scored := make([]scoredMove, len(rest))
	for i, m := range rest {
		k := 0
		if b.IsCapture(m) {
			k += 2
		}
		if b.GivesCheck(m) {
			k++
		}
		scored[i] = scoredMove{m, evaluation.Score(k)}
	}
	sortScored(scored)
	for i := range scored {
		rest[i] = scored[i].m
	}
	return moves
}

type scoredMove struct {
	m     *chess.Move
	score evaluation.Score
}

// sortScored sorts best-first, keeping the order of equal scores.
func sortScored(s []scoredMove) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].score > s[j].score
	})
}

// mvvLva is victim value*100 - attacker value.
func mvvLva(b *board.Board, m *chess.Move) evaluation.Score {
	victim := b.PieceAt(m.S2()).Type()
	if m.HasTag(chess.EnPassant) {
		victim = chess.Pawn
	}
	attacker := b.PieceAt(m.S1()).Type()
	return evaluation.PieceValue(victim)*100 - evaluation.PieceValue(attacker)
}

// OrderCaptures returns only the capturing moves of b, most valuable victim
// first and, among equal victims, least valuable attacker first.
func OrderCaptures(b *board.Board) []*chess.Move {
	var scored []scoredMove
	for _, m := range b.LegalMoves() {
		if b.IsCapture(m) {
			scored = append(scored, scoredMove{m, mvvLva(b, m)})
		}
	}
	sortScored(scored)
	return lo.Map(scored, func(s scoredMove, _ int) *chess.Move { return s.m })
}

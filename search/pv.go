package search

import (
	"strings"

	"github.com/notnil/chess"
	"github.com/samber/lo"

	"github.com/alxlyan/alexchess/board"
)

// PrincipalVariation follows the best moves recorded in the transposition
// table, starting with first, for at most maxLen moves. The board is left as
// it was found. The line can be cut short when entries have been
// overwritten.
func (s *Solver) PrincipalVariation(b *board.Board, first *chess.Move, maxLen int) []*chess.Move {
	if first == nil || maxLen < 1 {
		return nil
	}
	pv := []*chess.Move{first}
	// the undo for the first move also takes back everything after it.
	undo := b.Push(first)
	defer undo()
	for len(pv) < maxLen && !b.IsGameOver() {
		entry, ok := s.ttable.lookup(b.Fingerprint())
		if !ok {
			break
		}
		m := entry.play.find(b.LegalMoves())
		if m == nil {
			break
		}
		b.Push(m)
		pv = append(pv, m)
	}
	return pv
}

// PVString renders a line as space-separated move tokens.
func PVString(pv []*chess.Move) string {
	return strings.Join(lo.Map(pv, func(m *chess.Move, _ int) string {
		return board.MoveToken(m)
	}), " ")
}

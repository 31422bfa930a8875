package search

import (
	"github.com/alxlyan/alexchess/board"
	"github.com/alxlyan/alexchess/evaluation"
)

// MaxCaptureDepth bounds how many captures deep quiescence will follow a
// line past the main search horizon.
const MaxCaptureDepth = 8

// quiescence resolves pending captures so that a leaf is never scored in the
// middle of an exchange. It only looks at captures and fails hard.
func (s *Solver) quiescence(b *board.Board, α, β evaluation.Score, captureDepth int) evaluation.Score {
	s.nodes.Add(1)
	standPat := evaluation.EvaluateRelative(b)
	if captureDepth >= MaxCaptureDepth {
		return standPat
	}
	if standPat >= β {
		return β
	}
	α = max(α, standPat)

	for _, m := range OrderCaptures(b) {
		undo := b.Push(m)
		score := -s.quiescence(b, -β, -α, captureDepth+1)
		undo()
		if score >= β {
			return β
		}
		α = max(α, score)
	}
	return α
}

package search

import (
	"context"

	"github.com/notnil/chess"

	"github.com/alxlyan/alexchess/board"
	"github.com/alxlyan/alexchess/evaluation"
)

// Infinity bounds every score the search can produce, mates included.
const Infinity evaluation.Score = 1_000_000

// thanks Wikipedia:
/*
function negamax(node, depth, α, β, color) is
    if depth = 0 or node is a terminal node then
        return color × the heuristic value of node

    childNodes := generateMoves(node)
    childNodes := orderMoves(childNodes)
    value := −∞
    foreach child in childNodes do
        value := max(value, −negamax(child, depth − 1, −β, −α, −color))
        α := max(α, value)
        if α ≥ β then
            break (* cut-off *)
    return value
**/

func (s *Solver) negamax(ctx context.Context, b *board.Board, depth int, α, β evaluation.Score) (evaluation.Score, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	s.nodes.Add(1)

	// the cache knows nothing about the game history, so terminal positions
	// (repetitions included) are recognized before it is consulted.
	if b.IsGameOver() {
		return evaluation.EvaluateRelative(b), nil
	}
	if depth == 0 {
		return s.quiescence(b, α, β, 0), nil
	}

	key := b.Fingerprint()
	alphaOrig, betaOrig := α, β
	var hint PackedMove
	if ttEntry, ok := s.ttable.lookup(key); ok {
		// search hash move first.
		hint = ttEntry.play
		if int(ttEntry.depth) >= depth {
			score := ttEntry.Score()
			switch ttEntry.flag {
			case TTExact:
				return score, nil
			case TTLower:
				α = max(α, score)
			case TTUpper:
				β = min(β, score)
			}
			if α >= β {
				return score, nil
			}
		}
	}

	bestValue := -Infinity
	var bestMove *chess.Move
	for _, child := range OrderMoves(b, hint) {
		undo := b.Push(child)
		value, err := s.negamax(ctx, b, depth-1, -β, -α)
		undo()
		if err != nil {
			return 0, err
		}
		if -value > bestValue {
			bestValue = -value
			bestMove = child
		}
		α = max(α, bestValue)
		if α >= β {
			break // beta cut-off
		}
	}

	var flag uint8
	if bestValue <= alphaOrig {
		flag = TTUpper
	} else if bestValue >= betaOrig {
		flag = TTLower
	} else {
		flag = TTExact
	}
	s.ttable.store(key, TableEntry{
		score: int32(bestValue),
		play:  packMove(bestMove),
		depth: uint8(min(depth, 255)),
		flag:  flag,
	})
	return bestValue, nil
}

// searchRoot searches every move in moves to depth-1 with a full window and
// returns them with their scores, best first. Only the first move is
// guaranteed an exact score; the rest are upper bounds. On cancellation the
// partial result is thrown away.
func (s *Solver) searchRoot(ctx context.Context, b *board.Board, depth int, moves []*chess.Move) ([]scoredMove, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(moves) == 0 {
		return nil, ErrNoLegalMoves
	}
	α, β := -Infinity, Infinity
	scored := make([]scoredMove, 0, len(moves))
	for _, m := range moves {
		undo := b.Push(m)
		value, err := s.negamax(ctx, b, depth-1, -β, -α)
		undo()
		if err != nil {
			return nil, err
		}
		scored = append(scored, scoredMove{m, -value})
		α = max(α, -value)
	}
	sortScored(scored)
	// the root was searched with a full window, so its value is exact.
	s.ttable.store(b.Fingerprint(), TableEntry{
		score: int32(scored[0].score),
		play:  packMove(scored[0].m),
		depth: uint8(min(depth, 255)),
		flag:  TTExact,
	})
	return scored, nil
}

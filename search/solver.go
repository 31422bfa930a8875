// Package search picks moves: an alpha-beta negamax search with quiescence,
// a transposition table and an iterative deepening time controller.
package search

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/alxlyan/alexchess/board"
	"github.com/alxlyan/alexchess/config"
	"github.com/alxlyan/alexchess/evaluation"
)

const (
	DefaultDepth    = 3
	DefaultMaxDepth = 6
	MaxPVLength     = 16
)

var (
	ErrNoLegalMoves = errors.New("no legal moves in position")
)

// Budget limits a search. With a zero Deadline, Depth is searched in a
// single pass. With a Deadline, the search deepens until the deadline
// passes or Depth (if nonzero) is completed.
type Budget struct {
	Depth    int
	Deadline time.Time
}

// Result describes the move a search settled on. Score is from the point of
// view of the side to move. A timed search that could not finish even depth
// 1 returns some legal move with Depth 0.
type Result struct {
	Move    *chess.Move
	Score   evaluation.Score
	Depth   int
	Nodes   uint64
	Elapsed time.Duration
	PV      []*chess.Move
}

// Info is reported after every completed iteration.
type Info struct {
	Depth   int
	Score   evaluation.Score
	Nodes   uint64
	Elapsed time.Duration
	PV      []*chess.Move
}

type InfoFunc func(Info)

// IsMate reports whether a score means a forced mate for either side.
func IsMate(s evaluation.Score) bool {
	return s >= evaluation.MateScore || s <= -evaluation.MateScore
}

type Solver struct {
	ttable *TranspositionTable
	nodes  atomic.Uint64

	defaultDepth int
	maxDepth     int

	info InfoFunc
}

// NewSolver creates a solver with its own transposition table, sized from
// cfg. Two solvers never share a table.
func NewSolver(cfg *config.Config) *Solver {
	s := &Solver{
		ttable:       &TranspositionTable{},
		defaultDepth: cfg.GetInt("depth"),
		maxDepth:     cfg.GetInt("max-depth"),
	}
	if s.defaultDepth < 1 {
		s.defaultDepth = DefaultDepth
	}
	if s.maxDepth < 1 {
		s.maxDepth = DefaultMaxDepth
	}
	s.ttable.Reset(cfg.GetInt("ttable-mb"), cfg.GetFloat64("ttable-memory-fraction"))
	return s
}

// Reset empties the transposition table. Nothing else carries over from one
// search to the next.
func (s *Solver) Reset() {
	s.ttable.Clear()
}

func (s *Solver) TTable() *TranspositionTable {
	return s.ttable
}

func (s *Solver) SetInfoFunc(f InfoFunc) {
	s.info = f
}

func (s *Solver) MaxDepth() int {
	return s.maxDepth
}

func (s *Solver) DefaultDepth() int {
	return s.defaultDepth
}

// Search runs a fixed-depth or a timed search depending on the budget.
func (s *Solver) Search(ctx context.Context, b *board.Board, budget Budget) (Result, error) {
	if budget.Deadline.IsZero() {
		return s.ChooseMove(ctx, b, budget.Depth)
	}
	return s.iterativelyDeepen(ctx, b, budget.Deadline, budget.Depth)
}

// ChooseMove searches b to exactly depth plies (the solver's default depth
// if depth < 1). It returns ErrNoLegalMoves if the side to move has no
// legal move, and ctx's error if ctx ends first.
func (s *Solver) ChooseMove(ctx context.Context, b *board.Board, depth int) (Result, error) {
	if depth < 1 {
		depth = s.defaultDepth
	}
	tstart := time.Now()
	s.nodes.Store(0)
	moves := s.rootMoves(b)
	if len(moves) == 0 {
		return Result{}, ErrNoLegalMoves
	}
	scored, err := s.searchRoot(ctx, b, depth, moves)
	if err != nil {
		return Result{}, err
	}
	res := s.result(b, scored[0], depth, tstart)
	s.report(res)
	s.logReturn(res)
	return res, nil
}

// ChooseMoveTimed deepens iteratively for about budget and returns the best
// move of the last depth it completed.
func (s *Solver) ChooseMoveTimed(ctx context.Context, b *board.Board, budget time.Duration) (Result, error) {
	return s.iterativelyDeepen(ctx, b, time.Now().Add(budget), 0)
}

func (s *Solver) iterativelyDeepen(ctx context.Context, b *board.Board, deadline time.Time, depthCeiling int) (Result, error) {
	maxDepth := s.maxDepth
	if depthCeiling > 0 {
		maxDepth = depthCeiling
	}
	tstart := time.Now()
	s.nodes.Store(0)
	moves := s.rootMoves(b)
	if len(moves) == 0 {
		return Result{}, ErrNoLegalMoves
	}
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	// if not even depth 1 completes, any legal move will have to do.
	res := Result{Move: moves[0]}

	for d := 1; d <= maxDepth; d++ {
		log.Debug().Int("depth", d).Msg("deepening-iteratively")
		scored, err := s.searchRoot(ctx, b, d, moves)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				log.Debug().Int("depth", d).Msg("depth-abandoned")
				break
			}
			return Result{}, err
		}
		// the root moves come back best-first; search them in that order
		// next time around.
		moves = lo.Map(scored, func(sm scoredMove, _ int) *chess.Move { return sm.m })
		res = s.result(b, scored[0], d, tstart)
		s.report(res)
		if IsMate(res.Score) {
			break
		}
	}
	res.Nodes = s.nodes.Load()
	res.Elapsed = time.Since(tstart)
	if res.Depth == 0 {
		log.Warn().Dur("elapsed", res.Elapsed).Msg("no-depth-completed")
	}
	s.logReturn(res)
	return res, nil
}

func (s *Solver) rootMoves(b *board.Board) []*chess.Move {
	var hint PackedMove
	if entry, ok := s.ttable.lookup(b.Fingerprint()); ok {
		hint = entry.play
	}
	return OrderMoves(b, hint)
}

func (s *Solver) result(b *board.Board, best scoredMove, depth int, tstart time.Time) Result {
	return Result{
		Move:    best.m,
		Score:   best.score,
		Depth:   depth,
		Nodes:   s.nodes.Load(),
		Elapsed: time.Since(tstart),
		PV:      s.PrincipalVariation(b, best.m, MaxPVLength),
	}
}

func (s *Solver) report(res Result) {
	log.Debug().Int("depth", res.Depth).
		Int32("score", int32(res.Score)).
		Str("move", board.MoveToken(res.Move)).
		Uint64("nodes", res.Nodes).
		Msg("best-val")
	if s.info != nil {
		s.info(Info{
			Depth:   res.Depth,
			Score:   res.Score,
			Nodes:   res.Nodes,
			Elapsed: res.Elapsed,
			PV:      res.PV,
		})
	}
}

func (s *Solver) logReturn(res Result) {
	st := s.ttable.Stats()
	log.Info().
		Str("move", board.MoveToken(res.Move)).
		Int32("score", int32(res.Score)).
		Int("depth", res.Depth).
		Uint64("nodes", res.Nodes).
		Uint64("ttable-created", st.Created).
		Uint64("ttable-lookups", st.Lookups).
		Uint64("ttable-hits", st.Hits).
		Uint64("ttable-collisions", st.Collisions).
		Float64("time-elapsed-sec", res.Elapsed.Seconds()).
		Msg("search-returning")
}

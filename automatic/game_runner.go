// Package automatic plays the engine against itself, for testing and for
// collecting statistics about its play.
package automatic

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/alxlyan/alexchess/board"
	"github.com/alxlyan/alexchess/config"
	"github.com/alxlyan/alexchess/search"
	"github.com/alxlyan/alexchess/stats"
)

const (
	TerminationCheckmate            = "checkmate"
	TerminationStalemate            = "stalemate"
	TerminationInsufficientMaterial = "insufficient-material"
	TerminationRepetition           = "threefold-repetition"
	TerminationFiftyMoves           = "fifty-move-rule"
	TerminationPlyLimit             = "ply-limit"
	TerminationInterrupted          = "interrupted"
)

// LogPly is one line of the self-play log. Documents are written as
// one-element YAML sequences so the whole file reads as a single list.
type LogPly struct {
	Game    string `yaml:"game"`
	Ply     int    `yaml:"ply"`
	FEN     string `yaml:"fen"`
	Move    string `yaml:"move"`
	Score   int    `yaml:"score"`
	Depth   int    `yaml:"depth"`
	Nodes   uint64 `yaml:"nodes"`
	ThinkMs int64  `yaml:"think_ms"`
	PV      string `yaml:"pv,omitempty"`
}

// GameRecord is everything kept about a finished game.
type GameRecord struct {
	ID          uuid.UUID
	Started     time.Time
	Duration    time.Duration
	StartFEN    string
	Moves       []string
	Result      string
	Termination string
	FinalFEN    string
	PGN         string

	// per-move search figures; not persisted.
	ThinkMs stats.Running
	Depth   stats.Running
}

// GameRunner plays games of the engine against itself. Both sides share
// one solver, whose cache is emptied before every game.
type GameRunner struct {
	config   *config.Config
	solver   *search.Solver
	logchan  chan []byte
	maxPlies int
	depth    int
	moveTime time.Duration
	startFEN string

	board *board.Board
	rec   GameRecord
}

// NewGameRunner creates a runner. logchan may be nil; otherwise every ply
// is sent to it as YAML.
func NewGameRunner(logchan chan []byte, cfg *config.Config) *GameRunner {
	r := &GameRunner{
		config:   cfg,
		solver:   search.NewSolver(cfg),
		logchan:  logchan,
		maxPlies: cfg.GetInt("plies"),
		depth:    cfg.GetInt("depth"),
		moveTime: time.Duration(cfg.GetInt("movetime-ms")) * time.Millisecond,
		startFEN: cfg.GetString("start-fen"),
	}
	if r.startFEN == "" {
		r.startFEN = board.StartFEN
	}
	return r
}

// StartGame sets up a new game from the configured position.
func (r *GameRunner) StartGame() error {
	b, err := board.FromFEN(r.startFEN)
	if err != nil {
		return err
	}
	r.board = b
	r.solver.Reset()
	r.rec = GameRecord{
		ID:       uuid.New(),
		Started:  time.Now(),
		StartFEN: r.startFEN,
	}
	return nil
}

func (r *GameRunner) Board() *board.Board {
	return r.board
}

// PlayTurn searches the current position and plays the move found.
func (r *GameRunner) PlayTurn(ctx context.Context) (search.Result, error) {
	fen := r.board.FEN()
	var res search.Result
	var err error
	if r.moveTime > 0 {
		res, err = r.solver.ChooseMoveTimed(ctx, r.board, r.moveTime)
	} else {
		res, err = r.solver.ChooseMove(ctx, r.board, r.depth)
	}
	if err != nil {
		return search.Result{}, err
	}
	r.board.Push(res.Move)
	token := board.MoveToken(res.Move)
	r.rec.Moves = append(r.rec.Moves, token)
	r.rec.ThinkMs.Push(float64(res.Elapsed.Milliseconds()))
	r.rec.Depth.Push(float64(res.Depth))

	if r.logchan != nil {
		out, err := yaml.Marshal([]LogPly{{
			Game:    r.rec.ID.String(),
			Ply:     r.board.Ply(),
			FEN:     fen,
			Move:    token,
			Score:   int(res.Score),
			Depth:   res.Depth,
			Nodes:   res.Nodes,
			ThinkMs: res.Elapsed.Milliseconds(),
			PV:      search.PVString(res.PV),
		}})
		if err != nil {
			return res, err
		}
		r.logchan <- out
	}
	return res, nil
}

// PlayGame plays a new game to its end or to the ply limit and writes a
// transcript to w. An interrupted game is returned together with ctx's
// error.
func (r *GameRunner) PlayGame(ctx context.Context, w io.Writer) (GameRecord, error) {
	if err := r.StartGame(); err != nil {
		return GameRecord{}, err
	}
	var playErr error
	for ply := 0; ply < r.maxPlies; ply++ {
		if r.board.IsGameOver() {
			break
		}
		if err := ctx.Err(); err != nil {
			playErr = err
			break
		}
		if _, err := r.PlayTurn(ctx); err != nil {
			playErr = err
			break
		}
		if w != nil {
			fmt.Fprintf(w, "%02d. %s\n", r.board.Ply(), r.rec.Moves[len(r.rec.Moves)-1])
		}
	}

	rec := r.finish(playErr != nil)
	if w != nil {
		fmt.Fprintf(w, "Result: %s\n%s", rec.Result, r.board.Draw())
	}
	log.Debug().Str("game", rec.ID.String()).
		Str("result", rec.Result).
		Str("termination", rec.Termination).
		Int("plies", len(rec.Moves)).
		Msg("game-over")
	return rec, playErr
}

func (r *GameRunner) finish(interrupted bool) GameRecord {
	rec := r.rec
	rec.Duration = time.Since(rec.Started)
	rec.Result = r.board.Result()
	rec.FinalFEN = r.board.FEN()
	if interrupted {
		rec.Termination = TerminationInterrupted
	} else {
		rec.Termination = termination(r.board)
	}
	pgn, err := r.pgn(rec)
	if err != nil {
		log.Err(err).Str("game", rec.ID.String()).Msg("pgn-export-failed")
	}
	rec.PGN = pgn
	return rec
}

func termination(b *board.Board) string {
	switch {
	case b.IsCheckmate():
		return TerminationCheckmate
	case b.IsStalemate():
		return TerminationStalemate
	case b.IsInsufficientMaterial():
		return TerminationInsufficientMaterial
	case b.IsRepetition(3):
		return TerminationRepetition
	case b.HalfMoveClock() >= 100:
		return TerminationFiftyMoves
	}
	return TerminationPlyLimit
}

// pgn replays the game on a fresh notnil game to export it.
func (r *GameRunner) pgn(rec GameRecord) (string, error) {
	opt, err := chess.FEN(rec.StartFEN)
	if err != nil {
		return "", err
	}
	g := chess.NewGame(opt)
	g.AddTagPair("Event", "alexchess self-play")
	g.AddTagPair("Date", rec.Started.Format("2006.01.02"))
	g.AddTagPair("White", "alexchess")
	g.AddTagPair("Black", "alexchess")
	g.AddTagPair("GameId", rec.ID.String())
	g.AddTagPair("Termination", rec.Termination)
	if rec.StartFEN != board.StartFEN {
		g.AddTagPair("SetUp", "1")
		g.AddTagPair("FEN", rec.StartFEN)
	}
	for _, m := range r.board.Moves() {
		if err := g.Move(m); err != nil {
			return "", err
		}
	}
	switch rec.Termination {
	case TerminationRepetition:
		err = g.Draw(chess.ThreefoldRepetition)
	case TerminationFiftyMoves:
		err = g.Draw(chess.FiftyMoveRule)
	}
	if err != nil {
		log.Debug().Err(err).Msg("pgn-draw-not-recorded")
	}
	return g.String(), nil
}

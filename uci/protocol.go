// Package uci speaks the line-based engine protocol on top of a search.Solver.
// Commands are handled one at a time; a go command blocks until the search
// has answered.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/alxlyan/alexchess/board"
	"github.com/alxlyan/alexchess/config"
	"github.com/alxlyan/alexchess/search"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	errBadPosition    = errors.New("malformed position command")
)

// LineReader yields one command line at a time and io.EOF at the end.
// A *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
}

type scannerReader struct {
	sc *bufio.Scanner
}

// NewScannerReader reads lines from r.
func NewScannerReader(r io.Reader) LineReader {
	return &scannerReader{sc: bufio.NewScanner(r)}
}

func (s *scannerReader) Readline() (string, error) {
	if s.sc.Scan() {
		return s.sc.Text(), nil
	}
	if err := s.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

type Protocol struct {
	name   string
	author string

	solver *search.Solver
	tc     TimeControl
	board  *board.Board
	out    io.Writer
}

func New(cfg *config.Config, solver *search.Solver, out io.Writer) *Protocol {
	p := &Protocol{
		name:   cfg.GetString("engine-name"),
		author: cfg.GetString("engine-author"),
		solver: solver,
		tc:     NewTimeControl(cfg),
		board:  board.NewBoard(),
		out:    out,
	}
	solver.SetInfoFunc(p.printInfo)
	return p
}

// Board is the position the next go command will search.
func (p *Protocol) Board() *board.Board {
	return p.board
}

type readResult struct {
	line string
	err  error
}

// Run handles lines until quit, the end of input, or the end of ctx. Once
// ctx is done Run returns its error without answering further commands,
// even if it was waiting for input.
func (p *Protocol) Run(ctx context.Context, lines LineReader) error {
	want := make(chan struct{})
	next := make(chan readResult, 1)
	defer close(want)
	go func() {
		for range want {
			line, err := lines.Readline()
			next <- readResult{line, err}
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		want <- struct{}{}
		var r readResult
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r = <-next:
		}
		if errors.Is(r.err, io.EOF) {
			return nil
		}
		if r.err != nil {
			return r.err
		}
		quit, err := p.Handle(ctx, r.line)
		if ctx.Err() != nil {
			log.Info().Str("command", r.line).Msg("interrupted")
			return ctx.Err()
		}
		if err != nil {
			log.Error().Err(err).Str("command", r.line).Msg("command-failed")
			p.println("info string error:", err.Error())
		}
		if quit {
			return nil
		}
	}
}

// Handle executes a single command line. A failing command changes nothing.
func (p *Protocol) Handle(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	log.Debug().Str("command", line).Msg("uci-command")
	args := fields[1:]
	switch fields[0] {
	case "uci":
		p.println("id name", p.name)
		p.println("id author", p.author)
		p.println("uciok")
	case "isready":
		p.println("readyok")
	case "ucinewgame":
		// the transposition table is kept across games.
		p.board = board.NewBoard()
	case "position":
		err = p.position(args)
	case "go":
		err = p.goCommand(ctx, args)
	case "d":
		p.println(p.board.Draw())
		p.println("Fen:", p.board.FEN())
	case "quit":
		return true, nil
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}
	return false, err
}

func (p *Protocol) position(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: expected startpos or fen", errBadPosition)
	}
	movesIdx := lo.IndexOf(args, "moves")
	setup := args
	var moves []string
	if movesIdx >= 0 {
		setup, moves = args[:movesIdx], args[movesIdx+1:]
	}

	var b *board.Board
	var err error
	switch setup[0] {
	case "startpos":
		if len(setup) != 1 {
			return fmt.Errorf("%w: unexpected %q", errBadPosition, setup[1])
		}
		b = board.NewBoard()
	case "fen":
		b, err = board.FromFEN(strings.Join(setup[1:], " "))
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: expected startpos or fen, got %q", errBadPosition, setup[0])
	}
	for _, tok := range moves {
		if err := b.PushToken(tok); err != nil {
			return err
		}
	}
	p.board = b
	return nil
}

func (p *Protocol) goCommand(ctx context.Context, args []string) error {
	limits, err := parseLimits(args)
	if err != nil {
		return err
	}
	if len(p.board.LegalMoves()) == 0 {
		p.println("info string game over:", p.board.Result())
		p.println("bestmove 0000")
		return nil
	}

	budget := search.Budget{Depth: limits.Depth}
	if think, ok := p.tc.ThinkTime(limits, p.board.Turn()); ok {
		budget.Deadline = time.Now().Add(think)
		log.Debug().Dur("think", think).Int("depth-ceiling", limits.Depth).Msg("timed-search")
	}
	res, err := p.solver.Search(ctx, p.board, budget)
	if err != nil {
		return err
	}
	p.println("bestmove", board.MoveToken(res.Move))
	return nil
}

func (p *Protocol) printInfo(info search.Info) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d", info.Depth)
	// mate scores carry no distance, so they are reported as centipawns.
	fmt.Fprintf(&sb, " score cp %d", info.Score)
	ms := info.Elapsed.Milliseconds()
	fmt.Fprintf(&sb, " nodes %d time %d nps %d", info.Nodes, ms, info.Nodes*1000/uint64(ms+1))
	if len(info.PV) > 0 {
		sb.WriteString(" pv ")
		sb.WriteString(search.PVString(info.PV))
	}
	p.println(sb.String())
}

func (p *Protocol) println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

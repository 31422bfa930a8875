// Package board is the rules engine the search plays against. It wraps
// github.com/notnil/chess with a stack of positions so moves can be made
// and taken back in place, and adds the game-history bookkeeping
// (repetitions, the fifty-move clock) that a single position cannot know.
package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/notnil/chess"

	"github.com/alxlyan/alexchess/zobrist"
)

const (
	// StartFEN is the standard initial setup.
	StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

	fiftyMovePlies       = 100
	seventyFiveMovePlies = 150
)

var (
	ErrBadFEN       = errors.New("malformed position string")
	ErrIllegalMove  = errors.New("illegal move")
	ErrNothingToPop = errors.New("no move to take back")
)

// Board holds a game from its setup position to the current one. Index i of
// every slice describes the position after i moves.
type Board struct {
	positions []*chess.Position
	moves     []*chess.Move
	halfmoves []int
	repKeys   []uint64
}

// NewBoard returns a board at the standard initial setup.
func NewBoard() *Board {
	b, err := FromFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return b
}

// FromFEN builds a board from a six-field position description.
func FromFEN(fen string) (*Board, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return nil, fmt.Errorf("%w: expected 6 fields, got %d", ErrBadFEN, len(fields))
	}
	halfmove, err := strconv.Atoi(fields[4])
	if err != nil || halfmove < 0 {
		return nil, fmt.Errorf("%w: bad half-move clock %q", ErrBadFEN, fields[4])
	}
	opt, err := chess.FEN(strings.Join(fields, " "))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFEN, err)
	}
	pos := chess.NewGame(opt).Position()
	if err := checkKings(pos.Board()); err != nil {
		return nil, err
	}
	b := &Board{
		positions: []*chess.Position{pos},
		halfmoves: []int{halfmove},
		repKeys:   []uint64{repetitionKey(pos)},
	}
	return b, nil
}

// checkKings requires exactly one king of each color.
func checkKings(bd *chess.Board) error {
	var kings [2]int
	for sq := chess.A1; sq <= chess.H8; sq++ {
		switch bd.Piece(sq) {
		case chess.WhiteKing:
			kings[0]++
		case chess.BlackKing:
			kings[1]++
		}
	}
	if kings[0] != 1 || kings[1] != 1 {
		return fmt.Errorf("%w: %d white and %d black kings", ErrBadFEN, kings[0], kings[1])
	}
	return nil
}

// Copy returns an independent board with the same history.
func (b *Board) Copy() *Board {
	return &Board{
		positions: append([]*chess.Position(nil), b.positions...),
		moves:     append([]*chess.Move(nil), b.moves...),
		halfmoves: append([]int(nil), b.halfmoves...),
		repKeys:   append([]uint64(nil), b.repKeys...),
	}
}

func (b *Board) cur() int {
	return len(b.positions) - 1
}

// Position is the current position. Callers must not hold on to it across
// Push/undo pairs if they expect it to change.
func (b *Board) Position() *chess.Position {
	return b.positions[b.cur()]
}

func (b *Board) Turn() chess.Color {
	return b.Position().Turn()
}

// Ply is the number of moves made since the setup position.
func (b *Board) Ply() int {
	return len(b.moves)
}

func (b *Board) LastMove() *chess.Move {
	if len(b.moves) == 0 {
		return nil
	}
	return b.moves[len(b.moves)-1]
}

// Moves returns the moves played since the setup position.
func (b *Board) Moves() []*chess.Move {
	return append([]*chess.Move(nil), b.moves...)
}

func (b *Board) HalfMoveClock() int {
	return b.halfmoves[b.cur()]
}

func (b *Board) LegalMoves() []*chess.Move {
	return b.Position().ValidMoves()
}

func (b *Board) PieceAt(sq chess.Square) chess.Piece {
	return b.Position().Board().Piece(sq)
}

// Push plays m, which must be legal in the current position, and returns
// the function that takes it back. Calling the returned function more than
// once, or after moves made on top of m were already taken back, is safe:
// it always restores the board to exactly the state it had before Push.
func (b *Board) Push(m *chess.Move) (undo func()) {
	depth := len(b.positions)
	prev := b.Position()
	next := prev.Update(m)

	hm := b.HalfMoveClock() + 1
	if m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant) ||
		prev.Board().Piece(m.S1()).Type() == chess.Pawn {
		hm = 0
	}

	b.positions = append(b.positions, next)
	b.moves = append(b.moves, m)
	b.halfmoves = append(b.halfmoves, hm)
	b.repKeys = append(b.repKeys, repetitionKey(next))
	return func() { b.truncate(depth) }
}

// Pop takes back the last move.
func (b *Board) Pop() error {
	if len(b.moves) == 0 {
		return ErrNothingToPop
	}
	b.truncate(len(b.positions) - 1)
	return nil
}

func (b *Board) truncate(n int) {
	if n < 1 || n >= len(b.positions) {
		return
	}
	b.positions = b.positions[:n]
	b.moves = b.moves[:n-1]
	b.halfmoves = b.halfmoves[:n]
	b.repKeys = b.repKeys[:n]
}

// IsCapture reports whether m takes a piece, en passant included.
func (b *Board) IsCapture(m *chess.Move) bool {
	return m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant)
}

// InCheck reports whether the side to move is in check. After a move the
// generator's check tag answers it; the setup position is scanned.
func (b *Board) InCheck() bool {
	if m := b.LastMove(); m != nil {
		return m.HasTag(chess.Check)
	}
	return b.setupInCheck()
}

func (b *Board) setupInCheck() bool {
	pos := b.Position()
	bd := pos.Board()
	king := findKing(bd, pos.Turn())
	if king == chess.NoSquare {
		return false
	}
	return attacked(bd, king, pos.Turn().Other())
}

// GivesCheck plays m, asks whether the opponent is now in check and takes m
// back before returning.
func (b *Board) GivesCheck(m *chess.Move) bool {
	undo := b.Push(m)
	defer undo()
	return b.InCheck()
}

func (b *Board) IsCheckmate() bool {
	return b.Position().Status() == chess.Checkmate
}

func (b *Board) IsStalemate() bool {
	return b.Position().Status() == chess.Stalemate
}

// IsInsufficientMaterial reports whether neither side can possibly mate:
// bare kings, a single minor piece, or only bishops that all stand on the
// same square color.
func (b *Board) IsInsufficientMaterial() bool {
	bd := b.Position().Board()
	minors := 0
	bishops := 0
	bishopColors := [2]int{}
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := bd.Piece(sq)
		switch p.Type() {
		case chess.NoPieceType, chess.King:
		case chess.Knight:
			minors++
		case chess.Bishop:
			minors++
			bishops++
			bishopColors[(int(sq.File())+int(sq.Rank()))%2]++
		default:
			return false
		}
	}
	if minors <= 1 {
		return true
	}
	return bishops == minors && (bishopColors[0] == 0 || bishopColors[1] == 0)
}

// IsRepetition reports whether the current position has occurred at least
// count times in the game, the current occurrence included.
func (b *Board) IsRepetition(count int) bool {
	cur := b.cur()
	key := b.repKeys[cur]
	seen := 1
	if seen >= count {
		return true
	}
	// positions before the last capture or pawn move cannot repeat.
	oldest := cur - b.halfmoves[cur]
	if oldest < 0 {
		oldest = 0
	}
	for i := cur - 2; i >= oldest; i -= 2 {
		if b.repKeys[i] == key {
			seen++
			if seen >= count {
				return true
			}
		}
	}
	return false
}

// CanClaimDraw reports a threefold repetition or an expired fifty-move
// clock.
func (b *Board) CanClaimDraw() bool {
	return b.HalfMoveClock() >= fiftyMovePlies || b.IsRepetition(3)
}

// IsGameOver reports whether the game has ended, counting draws that either
// side could claim.
func (b *Board) IsGameOver() bool {
	switch b.Position().Status() {
	case chess.Checkmate, chess.Stalemate:
		return true
	}
	return b.IsInsufficientMaterial() || b.CanClaimDraw() ||
		b.HalfMoveClock() >= seventyFiveMovePlies
}

// Result is "1-0", "0-1", "1/2-1/2", or "*" for a game still in progress.
func (b *Board) Result() string {
	if b.IsCheckmate() {
		if b.Turn() == chess.White {
			return "0-1"
		}
		return "1-0"
	}
	if b.IsGameOver() {
		return "1/2-1/2"
	}
	return "*"
}

// Fingerprint is the transposition key of the current position. It ignores
// the game history; see IsRepetition for the history-aware notion.
func (b *Board) Fingerprint() uint64 {
	return zobrist.Default.Hash(b.Position())
}

// FEN describes the current position, move counters included.
func (b *Board) FEN() string {
	return b.Position().String()
}

func (b *Board) Draw() string {
	return b.Position().Board().Draw()
}

// ParseMove decodes a long-algebraic token such as "e2e4" or "e7e8q" and
// returns the matching legal move.
func (b *Board) ParseMove(token string) (*chess.Move, error) {
	pos := b.Position()
	m, err := chess.UCINotation{}.Decode(pos, token)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrIllegalMove, token, err)
	}
	for _, legal := range pos.ValidMoves() {
		if SameMove(legal, m) {
			return legal, nil
		}
	}
	return nil, fmt.Errorf("%w %q in %s", ErrIllegalMove, token, b.FEN())
}

// PushToken parses and plays a move for good.
func (b *Board) PushToken(token string) error {
	m, err := b.ParseMove(token)
	if err != nil {
		return err
	}
	b.Push(m)
	return nil
}

// MoveToken is the canonical long-algebraic token for m.
func (b *Board) MoveToken(m *chess.Move) string {
	return MoveToken(m)
}

func MoveToken(m *chess.Move) string {
	return m.String()
}

// SameMove compares moves by value; moves generated from different
// positions objects are distinct pointers.
func SameMove(a, b *chess.Move) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.S1() == b.S1() && a.S2() == b.S2() && a.Promo() == b.Promo()
}

// repetitionKey identifies a position for repetition counting: placement,
// side to move, castling rights and a capturable en-passant square.
func repetitionKey(pos *chess.Position) uint64 {
	var sb strings.Builder
	sb.WriteString(pos.Board().String())
	sb.WriteByte(' ')
	sb.WriteString(pos.Turn().String())
	sb.WriteByte(' ')
	sb.WriteString(string(pos.CastleRights()))
	if ep, ok := zobrist.CapturableEnPassant(pos); ok {
		sb.WriteByte(' ')
		sb.WriteString(ep.String())
	}
	return xxhash.Sum64String(sb.String())
}

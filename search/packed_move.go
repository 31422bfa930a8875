package search

import "github.com/notnil/chess"

// PackedMove is a move squeezed into 16 bits for the transposition table:
//
//	bits 0-5   from square
//	bits 6-11  to square
//	bits 12-14 promotion piece type (0 for none)
//
// The zero value means no move; no legal move goes from a1 to a1.
type PackedMove uint16

const (
	squareMask = 0x3f
	toShift    = 6
	promoShift = 12
	promoMask  = 0x7
)

func packMove(m *chess.Move) PackedMove {
	if m == nil {
		return 0
	}
	return PackedMove(uint16(m.S1())&squareMask |
		(uint16(m.S2())&squareMask)<<toShift |
		(uint16(m.Promo())&promoMask)<<promoShift)
}

func (p PackedMove) from() chess.Square {
	return chess.Square(p & squareMask)
}

func (p PackedMove) to() chess.Square {
	return chess.Square((p >> toShift) & squareMask)
}

func (p PackedMove) promo() chess.PieceType {
	return chess.PieceType((p >> promoShift) & promoMask)
}

func (p PackedMove) matches(m *chess.Move) bool {
	return p != 0 && m != nil &&
		m.S1() == p.from() && m.S2() == p.to() && m.Promo() == p.promo()
}

// find returns the move among moves that p stands for, or nil.
func (p PackedMove) find(moves []*chess.Move) *chess.Move {
	if p == 0 {
		return nil
	}
	for _, m := range moves {
		if p.matches(m) {
			return m
		}
	}
	return nil
}

func (p PackedMove) String() string {
	if p == 0 {
		return "0000"
	}
	s := p.from().String() + p.to().String()
	if pt := p.promo(); pt != chess.NoPieceType {
		s += pt.String()
	}
	return s
}

package move

import (
	"fmt"
	"strings"
)

// Move is a chess move as seen by the search. It is a plain value: two
// moves are the same move iff they compare equal with ==.
type Move struct {
	From      Square
	To        Square
	Piece     PieceType
	Captured  PieceType
	Promotion PieceType
	// Check is set if the move gives check.
	Check bool
}

// IsCapture includes en passant, where Captured is a pawn.
func (m Move) IsCapture() bool {
	return m.Captured != None
}

func (m Move) IsPromotion() bool {
	return m.Promotion != None
}

// IsTactical reports whether quiescence search should look at this move.
func (m Move) IsTactical() bool {
	return m.IsCapture() || m.Check
}

func (m Move) IsZero() bool {
	return m == Move{}
}

// UCI returns the move in long algebraic (UCI) notation, e.g. e7e8q.
func (m Move) UCI() string {
	var sb strings.Builder
	sb.WriteString(m.From.String())
	sb.WriteString(m.To.String())
	if m.Promotion != None {
		sb.WriteByte(m.Promotion.Letter())
	}
	return sb.String()
}

// ShortDescription is a human-readable summary for the shell.
func (m Move) ShortDescription() string {
	desc := m.UCI()
	if m.IsCapture() {
		desc += fmt.Sprintf(" (x%s)", m.Captured)
	}
	if m.Check {
		desc += "+"
	}
	return desc
}

func (m Move) String() string {
	return fmt.Sprintf("<%v %v%v %v>", m.Piece, m.From, m.To, m.ShortDescription())
}

// SameAction compares only the squares and promotion, which is all a UCI
// string carries.
func (m Move) SameAction(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion
}

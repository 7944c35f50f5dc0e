package board

import (
	"strings"

	"github.com/domino14/caissa/move"
)

type occupant struct {
	color move.Color
	typ   move.PieceType
}

// Board is a mailbox view of a position, built from a piece enumeration.
// It knows geometry only; legality lives in the rules engine.
type Board struct {
	squares [64]occupant
	kings   [2]move.Square
}

// FromPieces builds a board. Squares not mentioned are empty.
func FromPieces(pieces []move.Piece) *Board {
	b := &Board{kings: [2]move.Square{move.NoSquare, move.NoSquare}}
	for _, p := range pieces {
		b.squares[p.Square] = occupant{p.Color, p.Type}
		if p.Type == move.King {
			b.kings[p.Color] = p.Square
		}
	}
	return b
}

func (b *Board) Empty(sq move.Square) bool {
	return b.squares[sq].typ == move.None
}

// At returns the color and type on sq. The type is move.None for an empty
// square.
func (b *Board) At(sq move.Square) (move.Color, move.PieceType) {
	o := b.squares[sq]
	return o.color, o.typ
}

// King returns the square of c's king, or move.NoSquare.
func (b *Board) King(c move.Color) move.Square {
	return b.kings[c]
}

// ToDisplayText renders the board with rank 8 on top.
func (b *Board) ToDisplayText() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteString(" ")
		for file := 0; file < 8; file++ {
			c, t := b.At(move.NewSquare(file, rank))
			l := t.Letter()
			if t != move.None && c == move.White {
				l -= 'a' - 'A'
			}
			sb.WriteByte(' ')
			sb.WriteByte(l)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("   a b c d e f g h\n")
	return sb.String()
}

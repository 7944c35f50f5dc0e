package board

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/caissa/move"
)

func sq(s string) move.Square {
	q, err := move.ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return q
}

func TestAttackCounts(t *testing.T) {
	is := is.New(t)
	type tc struct {
		piece move.Piece
		count int
	}
	cases := []tc{
		{move.Piece{Color: move.White, Type: move.Knight, Square: sq("d4")}, 8},
		{move.Piece{Color: move.White, Type: move.Knight, Square: sq("a1")}, 2},
		{move.Piece{Color: move.Black, Type: move.Rook, Square: sq("d4")}, 14},
		{move.Piece{Color: move.White, Type: move.Bishop, Square: sq("a1")}, 7},
		{move.Piece{Color: move.White, Type: move.Queen, Square: sq("d4")}, 27},
		{move.Piece{Color: move.White, Type: move.King, Square: sq("e1")}, 5},
		{move.Piece{Color: move.White, Type: move.Pawn, Square: sq("a2")}, 1},
		{move.Piece{Color: move.Black, Type: move.Pawn, Square: sq("e7")}, 2},
	}
	for _, c := range cases {
		b := FromPieces([]move.Piece{c.piece})
		is.Equal(b.AttackCount(c.piece.Square), c.count)
	}
}

func TestBlockedRays(t *testing.T) {
	is := is.New(t)
	b := FromPieces([]move.Piece{
		{Color: move.White, Type: move.Rook, Square: sq("a1")},
		{Color: move.White, Type: move.Pawn, Square: sq("a2")},
		{Color: move.Black, Type: move.Knight, Square: sq("c1")},
	})
	// a2 and b1, c1 are attacked; nothing beyond the blockers.
	is.Equal(b.AttackCount(sq("a1")), 3)
	is.True(b.IsAttacked(sq("c1"), move.White))
	is.True(!b.IsAttacked(sq("d1"), move.White))
}

func TestInCheck(t *testing.T) {
	is := is.New(t)
	b := FromPieces([]move.Piece{
		{Color: move.White, Type: move.King, Square: sq("e1")},
		{Color: move.Black, Type: move.King, Square: sq("e8")},
		{Color: move.Black, Type: move.Queen, Square: sq("h4")},
		{Color: move.White, Type: move.Pawn, Square: sq("g3")},
	})
	// g3 blocks the h4-e1 diagonal.
	is.True(!b.InCheck(move.White))

	b = FromPieces([]move.Piece{
		{Color: move.White, Type: move.King, Square: sq("e1")},
		{Color: move.Black, Type: move.King, Square: sq("e8")},
		{Color: move.Black, Type: move.Queen, Square: sq("h4")},
	})
	is.True(b.InCheck(move.White))
	is.True(!b.InCheck(move.Black))
	is.Equal(b.King(move.Black), sq("e8"))

	// pawn attacks go forward only.
	b = FromPieces([]move.Piece{
		{Color: move.Black, Type: move.King, Square: sq("d5")},
		{Color: move.White, Type: move.Pawn, Square: sq("e4")},
	})
	is.True(b.InCheck(move.Black))
	b = FromPieces([]move.Piece{
		{Color: move.Black, Type: move.King, Square: sq("d3")},
		{Color: move.White, Type: move.Pawn, Square: sq("e4")},
	})
	is.True(!b.InCheck(move.Black))
}

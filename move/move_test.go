package move

import (
	"testing"

	"github.com/matryer/is"
)

func TestSquareCoords(t *testing.T) {
	is := is.New(t)
	type tc struct {
		sq   Square
		name string
	}
	cases := []tc{
		{0, "a1"},
		{7, "h1"},
		{28, "e4"},
		{63, "h8"},
		{NoSquare, "-"},
	}
	for _, c := range cases {
		is.Equal(c.sq.String(), c.name)
		if c.sq != NoSquare {
			parsed, err := ParseSquare(c.name)
			is.NoErr(err)
			is.Equal(parsed, c.sq)
		}
	}
	_, err := ParseSquare("i9")
	is.True(err != nil)
}

func TestUCI(t *testing.T) {
	is := is.New(t)
	e4 := Move{From: NewSquare(4, 1), To: NewSquare(4, 3), Piece: Pawn}
	is.Equal(e4.UCI(), "e2e4")
	is.True(!e4.IsTactical())

	promo := Move{From: NewSquare(0, 6), To: NewSquare(1, 7), Piece: Pawn,
		Captured: Rook, Promotion: Queen}
	is.Equal(promo.UCI(), "a7b8q")
	is.True(promo.IsCapture())
	is.True(promo.IsTactical())
	is.True(promo.SameAction(Move{From: promo.From, To: promo.To, Promotion: Queen}))
	is.True(!promo.SameAction(Move{From: promo.From, To: promo.To, Promotion: Knight}))
}

func TestPieceLetters(t *testing.T) {
	is := is.New(t)
	for _, l := range []byte("pnbrqkPNBRQK") {
		pt, err := PieceTypeFromLetter(l)
		is.NoErr(err)
		is.True(pt != None)
	}
	_, err := PieceTypeFromLetter('x')
	is.True(err != nil)
	is.Equal(Piece{White, Knight, NewSquare(6, 0)}.String(), "Ng1")
	is.Equal(White.Other(), Black)
}

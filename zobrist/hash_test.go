package zobrist

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/caissa/move"
)

func startPieces() []move.Piece {
	back := []move.PieceType{move.Rook, move.Knight, move.Bishop, move.Queen,
		move.King, move.Bishop, move.Knight, move.Rook}
	var ps []move.Piece
	for f, t := range back {
		ps = append(ps,
			move.Piece{Color: move.White, Type: t, Square: move.NewSquare(f, 0)},
			move.Piece{Color: move.White, Type: move.Pawn, Square: move.NewSquare(f, 1)},
			move.Piece{Color: move.Black, Type: move.Pawn, Square: move.NewSquare(f, 6)},
			move.Piece{Color: move.Black, Type: t, Square: move.NewSquare(f, 7)})
	}
	return ps
}

func TestHashOrderIndependent(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()
	ps := startPieces()
	h := z.Hash(ps, move.White, 0xf, -1)

	rev := make([]move.Piece, len(ps))
	for i := range ps {
		rev[len(ps)-1-i] = ps[i]
	}
	is.Equal(z.Hash(rev, move.White, 0xf, -1), h)
}

func TestHashDistinguishes(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()
	ps := startPieces()
	h := z.Hash(ps, move.White, 0xf, -1)

	is.True(z.Hash(ps, move.Black, 0xf, -1) != h)
	is.True(z.Hash(ps, move.White, WhiteKingSide|BlackKingSide, -1) != h)
	is.True(z.Hash(ps, move.White, 0xf, 4) != h)
	is.Equal(z.ToggleSide(z.Hash(ps, move.Black, 0xf, -1)), h)

	// play and unplay a knight move; the key should come back.
	g1 := move.Piece{Color: move.White, Type: move.Knight, Square: move.NewSquare(6, 0)}
	f3 := move.Piece{Color: move.White, Type: move.Knight, Square: move.NewSquare(5, 2)}
	h1 := z.ToggleSide(z.TogglePiece(z.TogglePiece(h, g1), f3))
	is.True(h1 != h)
	h2 := z.ToggleSide(z.TogglePiece(z.TogglePiece(h1, f3), g1))
	is.Equal(h2, h)
}

func TestCastlingAndEnPassantToggles(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()
	ps := startPieces()
	h := z.Hash(ps, move.White, 0xf, -1)

	is.Equal(z.ChangeCastling(h, 0xf, WhiteQueenSide), z.Hash(ps, move.White, WhiteQueenSide, -1))
	is.Equal(z.ChangeCastling(h, 0xf, 0), z.Hash(ps, move.White, 0, -1))
	is.Equal(z.ChangeCastling(h, 0xf, 0xf), h)

	is.Equal(z.ToggleEnPassant(h, 3), z.Hash(ps, move.White, 0xf, 3))
	is.Equal(z.ToggleEnPassant(h, -1), h)
	is.Equal(z.ToggleEnPassant(z.ToggleEnPassant(h, 5), 5), h)
}

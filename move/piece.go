package move

import "fmt"

// Color is a side. White moves first.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposing color.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType is the kind of a piece, without a color. None is used for
// "no capture" and "no promotion".
type PieceType uint8

const (
	None PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// NumPieceTypes includes None, so arrays indexed by PieceType can be
// addressed directly.
const NumPieceTypes = 7

var pieceLetters = [NumPieceTypes]byte{'.', 'p', 'n', 'b', 'r', 'q', 'k'}

func (p PieceType) String() string {
	switch p {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return "none"
}

// Letter returns the lowercase FEN letter for the piece type.
func (p PieceType) Letter() byte {
	return pieceLetters[p]
}

// PieceTypeFromLetter parses a FEN/UCI piece letter of either case.
func PieceTypeFromLetter(b byte) (PieceType, error) {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	for i, l := range pieceLetters {
		if i > 0 && l == b {
			return PieceType(i), nil
		}
	}
	return None, fmt.Errorf("unknown piece letter %q", b)
}

// Square is 0..63 with a1 = 0, b1 = 1, ... h8 = 63.
type Square uint8

const NoSquare Square = 64

func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

func (s Square) File() int { return int(s) & 7 }
func (s Square) Rank() int { return int(s) >> 3 }

func (s Square) String() string {
	if s >= NoSquare {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare parses algebraic coordinates such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("bad square %q", s)
	}
	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

// Piece is one entry of a position's piece enumeration.
type Piece struct {
	Color  Color
	Type   PieceType
	Square Square
}

func (p Piece) String() string {
	l := p.Type.Letter()
	if p.Color == White {
		l -= 'a' - 'A'
	}
	return string(l) + p.Square.String()
}

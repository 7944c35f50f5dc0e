package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/caissa/move"
)

const bignum = 1<<63 - 2

// Castling rights, as a 4-bit mask.
const (
	WhiteKingSide uint8 = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide
)

// Zobrist generates 64-bit identity keys for chess positions.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	blackToMove uint64

	pieceTable [2][move.NumPieceTypes][64]uint64
	castling   [16]uint64
	epFile     [8]uint64
}

func (z *Zobrist) Initialize() {
	for c := 0; c < 2; c++ {
		for p := 1; p < move.NumPieceTypes; p++ {
			for sq := 0; sq < 64; sq++ {
				z.pieceTable[c][p][sq] = frand.Uint64n(bignum) + 1
			}
		}
	}
	// index 0 (no rights) stays zero so that a position with no castling
	// rights hashes the same as one that never had them.
	for i := 1; i < 16; i++ {
		z.castling[i] = frand.Uint64n(bignum) + 1
	}
	for i := 0; i < 8; i++ {
		z.epFile[i] = frand.Uint64n(bignum) + 1
	}
	z.blackToMove = frand.Uint64n(bignum) + 1
}

// Hash computes a key from scratch. epFile is -1 when there is no en
// passant square.
func (z *Zobrist) Hash(pieces []move.Piece, toMove move.Color, castling uint8, epFile int) uint64 {
	key := uint64(0)
	for _, p := range pieces {
		key ^= z.pieceTable[p.Color][p.Type][p.Square]
	}
	key ^= z.castling[castling&0xf]
	if epFile >= 0 && epFile < 8 {
		key ^= z.epFile[epFile]
	}
	if toMove == move.Black {
		key ^= z.blackToMove
	}
	return key
}

// TogglePiece adds or removes a piece from a key.
func (z *Zobrist) TogglePiece(key uint64, p move.Piece) uint64 {
	return key ^ z.pieceTable[p.Color][p.Type][p.Square]
}

// ToggleSide flips the side to move.
func (z *Zobrist) ToggleSide(key uint64) uint64 {
	return key ^ z.blackToMove
}

// ChangeCastling swaps one set of castling rights for another.
func (z *Zobrist) ChangeCastling(key uint64, from, to uint8) uint64 {
	return key ^ z.castling[from&0xf] ^ z.castling[to&0xf]
}

// ToggleEnPassant adds or removes an en passant file. -1 is a no-op.
func (z *Zobrist) ToggleEnPassant(key uint64, file int) uint64 {
	if file < 0 || file >= 8 {
		return key
	}
	return key ^ z.epFile[file]
}

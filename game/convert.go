package game

import (
	"fmt"

	"github.com/notnil/chess"

	"github.com/domino14/caissa/move"
	"github.com/domino14/caissa/zobrist"
)

func colorOf(c chess.Color) move.Color {
	if c == chess.Black {
		return move.Black
	}
	return move.White
}

func pieceTypeOf(t chess.PieceType) move.PieceType {
	switch t {
	case chess.Pawn:
		return move.Pawn
	case chess.Knight:
		return move.Knight
	case chess.Bishop:
		return move.Bishop
	case chess.Rook:
		return move.Rook
	case chess.Queen:
		return move.Queen
	case chess.King:
		return move.King
	}
	return move.None
}

func convertMove(pos *chess.Position, cm *chess.Move) move.Move {
	b := pos.Board()
	m := move.Move{
		From:      move.Square(cm.S1()),
		To:        move.Square(cm.S2()),
		Piece:     pieceTypeOf(b.Piece(cm.S1()).Type()),
		Promotion: pieceTypeOf(cm.Promo()),
		Check:     cm.HasTag(chess.Check),
	}
	if cm.HasTag(chess.EnPassant) {
		m.Captured = move.Pawn
	} else if victim := b.Piece(cm.S2()); victim != chess.NoPiece {
		m.Captured = pieceTypeOf(victim.Type())
	}
	return m
}

func castlingMask(pos *chess.Position) uint8 {
	cr := pos.CastleRights()
	var mask uint8
	if cr.CanCastle(chess.White, chess.KingSide) {
		mask |= zobrist.WhiteKingSide
	}
	if cr.CanCastle(chess.White, chess.QueenSide) {
		mask |= zobrist.WhiteQueenSide
	}
	if cr.CanCastle(chess.Black, chess.KingSide) {
		mask |= zobrist.BlackKingSide
	}
	if cr.CanCastle(chess.Black, chess.QueenSide) {
		mask |= zobrist.BlackQueenSide
	}
	return mask
}

func epFile(pos *chess.Position) int {
	sq := pos.EnPassantSquare()
	if sq == chess.NoSquare {
		return -1
	}
	return int(sq.File())
}

// parseUCI reads only the squares and promotion piece; the rest of the move
// is filled in from the legal move it matches.
func parseUCI(s string) (move.Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return move.Move{}, fmt.Errorf("bad uci move %q", s)
	}
	from, err := move.ParseSquare(s[0:2])
	if err != nil {
		return move.Move{}, err
	}
	to, err := move.ParseSquare(s[2:4])
	if err != nil {
		return move.Move{}, err
	}
	m := move.Move{From: from, To: to}
	if len(s) == 5 {
		m.Promotion, err = move.PieceTypeFromLetter(s[4])
		if err != nil {
			return move.Move{}, err
		}
	}
	return m, nil
}

package evaluation

import "github.com/domino14/caissa/move"

// Tables holds every constant the evaluator reads. A Tables value is never
// modified after construction; share it freely.
type Tables struct {
	PieceValues [move.NumPieceTypes]int
	Middlegame  [move.NumPieceTypes][64]int
	Endgame     [move.NumPieceTypes][64]int
	// Mobility is the bonus per attacked square. Pawns are never counted.
	Mobility [move.NumPieceTypes]int
	Tempo    int
}

// DefaultTables returns PeSTO piece-square tables with this engine's
// material values.
func DefaultTables() *Tables {
	return &Tables{
		PieceValues: [move.NumPieceTypes]int{
			move.None:   0,
			move.Pawn:   100,
			move.Knight: 310,
			move.Bishop: 330,
			move.Rook:   510,
			move.Queen:  880,
			move.King:   10000,
		},
		Middlegame: defaultMiddlegame,
		Endgame:    defaultEndgame,
		Mobility: [move.NumPieceTypes]int{
			move.Knight: 2,
			move.Bishop: 2,
			move.Rook:   1,
			move.Queen:  1,
			move.King:   -1,
		},
		Tempo: 20,
	}
}

// Value is the material value of a piece type; None is worth 0.
func (t *Tables) Value(p move.PieceType) int {
	return t.PieceValues[p]
}

// pstIndex maps a board square to a table entry.
func pstIndex(c move.Color, sq move.Square) int {
	if c == move.White {
		return int(sq) ^ 56
	}
	return int(sq)
}

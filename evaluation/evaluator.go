// Package evaluation scores chess positions from the point of view of the
// side to move.
package evaluation

import (
	"fmt"
	"math"

	"github.com/domino14/caissa/board"
	"github.com/domino14/caissa/move"
)

const (
	// Mate is the score of a side that has been checkmated, negated.
	Mate = 10000
	// MateWindow is reserved at the top of the score range for mate scores
	// adjusted by ply. Static scores are kept out of it.
	MateWindow = 256
	MaxStatic  = Mate - MateWindow
)

// Blend picks how the middlegame and endgame piece-square values are mixed.
type Blend string

const (
	// BlendConvex is mg*(1-p) + eg*p.
	BlendConvex Blend = "convex"
	// BlendLiteral is mg/p + eg*p, which overweights the middlegame table
	// early on. p is floored at MinLiteralProgression.
	BlendLiteral Blend = "literal"
)

// MinLiteralProgression is the progression of a full 32-piece board, and
// the smallest divisor the literal blend uses.
const MinLiteralProgression = 0.15

func ParseBlend(s string) (Blend, error) {
	switch Blend(s) {
	case BlendConvex, BlendLiteral:
		return Blend(s), nil
	}
	return "", fmt.Errorf("unknown blend %q (want convex or literal)", s)
}

// Position is what the evaluator needs to know about a position.
type Position interface {
	InCheckmate() bool
	IsDraw() bool
	SideToMove() move.Color
	Pieces() []move.Piece
}

// Progression estimates how close the game is to the endgame, in [0, 1],
// from the number of pieces on the board.
func Progression(pieceCount int) float64 {
	p := 1 - float64(pieceCount)/32 + 0.15
	return math.Max(0, math.Min(1, p))
}

type Evaluator struct {
	tables   *Tables
	blend    Blend
	mobility bool
}

func NewEvaluator(t *Tables, blend Blend) *Evaluator {
	if t == nil {
		t = DefaultTables()
	}
	mob := false
	for _, w := range t.Mobility {
		if w != 0 {
			mob = true
		}
	}
	return &Evaluator{tables: t, blend: blend, mobility: mob}
}

func (e *Evaluator) Tables() *Tables {
	return e.tables
}

func (e *Evaluator) Blend() Blend {
	return e.blend
}

func (e *Evaluator) mix(mg, eg int, p float64) int {
	if e.blend == BlendLiteral {
		p = math.Max(p, MinLiteralProgression)
		return int(math.Round(float64(mg)/p + float64(eg)*p))
	}
	return int(math.Round(float64(mg)*(1-p) + float64(eg)*p))
}

// Evaluate returns a static score for the side to move. Checkmate is -Mate
// and any draw is 0; everything else lies strictly inside the mate window.
func (e *Evaluator) Evaluate(pos Position) int {
	if pos.InCheckmate() {
		return -Mate
	}
	if pos.IsDraw() {
		return 0
	}
	pieces := pos.Pieces()
	p := Progression(len(pieces))
	t := e.tables

	var b *board.Board
	if e.mobility {
		b = board.FromPieces(pieces)
	}

	eval := 0
	for _, pc := range pieces {
		idx := pstIndex(pc.Color, pc.Square)
		v := t.PieceValues[pc.Type] + e.mix(t.Middlegame[pc.Type][idx], t.Endgame[pc.Type][idx], p)
		if b != nil && pc.Type != move.Pawn {
			v += t.Mobility[pc.Type] * b.AttackCount(pc.Square)
		}
		if pc.Color == move.Black {
			v = -v
		}
		eval += v
	}

	stm := pos.SideToMove()
	if stm == move.White {
		eval += t.Tempo
	} else {
		eval = -(eval - t.Tempo)
	}
	return max(-MaxStatic, min(MaxStatic, eval))
}

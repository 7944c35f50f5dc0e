package board

import "github.com/domino14/caissa/move"

type delta struct{ df, dr int }

var (
	knightDeltas = []delta{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingDeltas   = []delta{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookDirs     = []delta{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs   = []delta{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func offset(sq move.Square, d delta) (move.Square, bool) {
	f, r := sq.File()+d.df, sq.Rank()+d.dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return move.NoSquare, false
	}
	return move.NewSquare(f, r), true
}

func (b *Board) steps(sq move.Square, deltas []delta, fn func(move.Square) bool) {
	for _, d := range deltas {
		if to, ok := offset(sq, d); ok {
			if !fn(to) {
				return
			}
		}
	}
}

// rays walks each direction until it leaves the board or hits a piece. The
// blocking square is visited.
func (b *Board) rays(sq move.Square, dirs []delta, fn func(move.Square) bool) {
	for _, d := range dirs {
		cur := sq
		for {
			to, ok := offset(cur, d)
			if !ok {
				break
			}
			if !fn(to) {
				return
			}
			if !b.Empty(to) {
				break
			}
			cur = to
		}
	}
}

// forEachAttack calls fn with every square attacked by the piece on sq.
// Squares holding pieces of either color count as attacked. fn returns
// false to stop early.
func (b *Board) forEachAttack(sq move.Square, fn func(move.Square) bool) {
	o := b.squares[sq]
	switch o.typ {
	case move.Pawn:
		dr := 1
		if o.color == move.Black {
			dr = -1
		}
		b.steps(sq, []delta{{-1, dr}, {1, dr}}, fn)
	case move.Knight:
		b.steps(sq, knightDeltas, fn)
	case move.Bishop:
		b.rays(sq, bishopDirs, fn)
	case move.Rook:
		b.rays(sq, rookDirs, fn)
	case move.Queen:
		b.rays(sq, rookDirs, fn)
		b.rays(sq, bishopDirs, fn)
	case move.King:
		b.steps(sq, kingDeltas, fn)
	}
}

// AttackCount returns the number of squares attacked by the piece on sq.
func (b *Board) AttackCount(sq move.Square) int {
	n := 0
	b.forEachAttack(sq, func(move.Square) bool {
		n++
		return true
	})
	return n
}

// Attacks returns the squares attacked by the piece on sq.
func (b *Board) Attacks(sq move.Square) []move.Square {
	var out []move.Square
	b.forEachAttack(sq, func(to move.Square) bool {
		out = append(out, to)
		return true
	})
	return out
}

// IsAttacked reports whether any piece of color by attacks sq.
func (b *Board) IsAttacked(sq move.Square, by move.Color) bool {
	// Look outward from the target instead of enumerating every attacker.
	hit := false
	b.steps(sq, knightDeltas, func(from move.Square) bool {
		o := b.squares[from]
		hit = o.typ == move.Knight && o.color == by
		return !hit
	})
	if hit {
		return true
	}
	b.steps(sq, kingDeltas, func(from move.Square) bool {
		o := b.squares[from]
		hit = o.typ == move.King && o.color == by
		return !hit
	})
	if hit {
		return true
	}
	// A white pawn attacks upward, so it sits one rank below its target.
	dr := -1
	if by == move.Black {
		dr = 1
	}
	b.steps(sq, []delta{{-1, dr}, {1, dr}}, func(from move.Square) bool {
		o := b.squares[from]
		hit = o.typ == move.Pawn && o.color == by
		return !hit
	})
	if hit {
		return true
	}
	b.rays(sq, rookDirs, func(from move.Square) bool {
		o := b.squares[from]
		hit = o.color == by && (o.typ == move.Rook || o.typ == move.Queen)
		return !hit
	})
	if hit {
		return true
	}
	b.rays(sq, bishopDirs, func(from move.Square) bool {
		o := b.squares[from]
		hit = o.color == by && (o.typ == move.Bishop || o.typ == move.Queen)
		return !hit
	})
	return hit
}

// InCheck reports whether c's king is attacked. A side without a king is
// never in check.
func (b *Board) InCheck(c move.Color) bool {
	k := b.kings[c]
	if k == move.NoSquare {
		return false
	}
	return b.IsAttacked(k, c.Other())
}

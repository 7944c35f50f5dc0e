package negamax

import (
	"context"

	"github.com/domino14/caissa/clock"
)

// Quiesce runs a quiescence search of pos with window (α, β) and no time
// limit.
func (s *Solver) Quiesce(pos Position, α, β int) int {
	s.prepare(context.Background(), pos, clock.Unlimited)
	return s.quiesce(0, 0, α, β)
}

// quiesce follows captures and checks until the position is quiet. There
// is no stand-pat bound: while tactical moves exist the side to move must
// pick one of them.
func (s *Solver) quiesce(ply, qply, α, β int) int {
	s.qnodes++
	if (ply > 0 && s.pos.IsDraw()) || qply >= s.maxQPlies {
		return s.leaf(ply)
	}
	moves := s.orderer.Tactical(s.pos.LegalMoves(false))
	if len(moves) == 0 {
		return s.leaf(ply)
	}

	best := -infinity
	for _, m := range moves {
		if s.interrupted() {
			break
		}
		score := s.childScore(m, α, func() int {
			return -s.quiesce(ply+1, qply+1, -β, -α)
		})
		if s.aborted {
			break
		}
		best = max(best, score)
		α = max(α, score)
		if α >= β {
			break
		}
	}
	if best == -infinity {
		return s.leaf(ply)
	}
	return best
}

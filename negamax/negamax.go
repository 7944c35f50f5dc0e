package negamax

import (
	"context"

	"github.com/domino14/caissa/clock"
	"github.com/domino14/caissa/evaluation"
	"github.com/domino14/caissa/move"
)

// Search runs a single fixed-depth negamax search of pos with window
// (α, β) and no time limit. It returns the score for the side to move.
func (s *Solver) Search(pos Position, depth, α, β int) int {
	s.prepare(context.Background(), pos, clock.Unlimited)
	return s.negamax(depth, 0, α, β)
}

// leaf scores the current position statically. Mates are pulled toward the
// root by ply so that a quicker mate scores higher.
func (s *Solver) leaf(ply int) int {
	v := s.evaluator.Evaluate(s.pos)
	if v == -evaluation.Mate {
		v += ply
	}
	return v
}

func (s *Solver) negamax(depth, ply, α, β int) int {
	if depth == 0 {
		return s.quiesce(ply, 0, α, β)
	}
	s.nodes++
	// The root is always searched: a repeated root position is a draw
	// only if we choose to repeat, and a root without moves ends below.
	if ply > 0 && (s.pos.InCheckmate() || s.pos.IsDraw()) {
		return s.leaf(ply)
	}

	var moves []move.Move
	if ply == 0 && s.rootMoves != nil {
		moves = s.rootMoves
	} else {
		moves = s.orderer.Order(s.pos.LegalMoves(false))
	}

	best := -infinity
	for i, m := range moves {
		if s.interrupted() {
			break
		}
		score := s.childScore(m, α, func() int {
			return -s.negamax(depth-1, ply+1, -β, -α)
		})
		if s.aborted {
			// the subtree was cut short; its score means nothing.
			break
		}
		if ply == 0 && s.rootScores != nil {
			s.rootScores[i] = score
		}
		if score > best {
			best = score
			if ply == 0 {
				s.bestMove = m
				s.bestScore = score
			}
		}
		α = max(α, score)
		if α >= β {
			break
		}
	}
	if best == -infinity {
		// Interrupted before any move finished.
		return s.leaf(ply)
	}
	return best
}

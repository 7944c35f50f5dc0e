package negamax

import "github.com/domino14/caissa/move"

// played makes m, runs fn, and unmakes m however fn exits.
func (s *Solver) played(m move.Move, fn func() int) int {
	s.pos.MakeMove(m)
	defer s.pos.UndoMove(m)
	return fn()
}

// childScore scores m from the mover's side. A cached score is trusted
// only when it cannot raise alpha; anything else is searched again and the
// cache entry replaced.
func (s *Solver) childScore(m move.Move, α int, search func() int) int {
	return s.played(m, func() int {
		key := s.pos.Identity()
		if v, ok := s.cache.Get(key); ok && v <= α {
			s.cacheReuses++
			return v
		}
		v := search()
		if !s.aborted {
			s.cache.Put(key, v)
		}
		return v
	})
}

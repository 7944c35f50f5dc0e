package negamax

import (
	"sort"

	"github.com/samber/lo"

	"github.com/domino14/caissa/evaluation"
	"github.com/domino14/caissa/move"
)

// Orderer ranks moves most-valuable-victim / least-valuable-attacker first.
type Orderer struct {
	tables *evaluation.Tables
}

func NewOrderer(t *evaluation.Tables) Orderer {
	return Orderer{tables: t}
}

// Priority is 10*victim - attacker for captures, 0 for quiet moves, plus
// the promotion piece's value.
func (o Orderer) Priority(m move.Move) int {
	p := 0
	if m.IsCapture() {
		p = 10*o.tables.Value(m.Captured) - o.tables.Value(m.Piece)
	}
	if m.IsPromotion() {
		p += o.tables.Value(m.Promotion)
	}
	return p
}

type prioritized struct {
	m        move.Move
	priority int
}

// Order returns a new slice sorted by descending priority. Ties keep the
// input order.
func (o Orderer) Order(moves []move.Move) []move.Move {
	ps := lo.Map(moves, func(m move.Move, _ int) prioritized {
		return prioritized{m, o.Priority(m)}
	})
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].priority > ps[j].priority
	})
	return lo.Map(ps, func(p prioritized, _ int) move.Move { return p.m })
}

// Tactical keeps the captures and checking moves, ordered.
func (o Orderer) Tactical(moves []move.Move) []move.Move {
	return o.Order(lo.Filter(moves, func(m move.Move, _ int) bool {
		return m.IsTactical()
	}))
}

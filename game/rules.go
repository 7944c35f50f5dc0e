package game

import "github.com/domino14/caissa/move"

// FiftyMovePlies is the half-move clock value at which the game is drawn.
const FiftyMovePlies = 100

type Result uint8

const (
	Ongoing Result = iota
	WhiteWins
	BlackWins
	Draw
)

func (r Result) String() string {
	switch r {
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	}
	return "*"
}

// Outcome is the adjudicated state of a game.
type Outcome struct {
	Result Result
	Reason string
}

func (g *Game) noMoves() bool {
	return len(g.top().moves()) == 0
}

func (g *Game) InCheckmate() bool {
	return g.noMoves() && g.InCheck()
}

func (g *Game) InStalemate() bool {
	return g.noMoves() && !g.InCheck()
}

// IsDraw uses search rules: a single earlier occurrence of the current
// position within the reversible window counts as a repetition.
func (g *Game) IsDraw() bool {
	return g.InStalemate() || g.fiftyMoves() || g.InsufficientMaterial() ||
		g.repetitions() >= 1
}

func (g *Game) fiftyMoves() bool {
	// Checkmate on the hundredth ply still wins.
	return g.top().halfmove >= FiftyMovePlies && !g.InCheckmate()
}

// repetitions counts earlier frames with the same identity, looking back
// only as far as the last irreversible move.
func (g *Game) repetitions() int {
	f := g.top()
	n := 0
	lo := len(g.frames) - 1 - f.halfmove
	if lo < 0 {
		lo = 0
	}
	for i := len(g.frames) - 3; i >= lo; i -= 2 {
		if g.frames[i].key == f.key {
			n++
		}
	}
	return n
}

// InsufficientMaterial covers K v K, a lone minor piece, and bishops that
// all stand on one square color.
func (g *Game) InsufficientMaterial() bool {
	var knights, bishops int
	var bishopColors [2]int
	for _, p := range g.Pieces() {
		switch p.Type {
		case move.Pawn, move.Rook, move.Queen:
			return false
		case move.Knight:
			knights++
		case move.Bishop:
			bishops++
			bishopColors[(p.Square.File()+p.Square.Rank())%2]++
		}
	}
	switch {
	case knights+bishops <= 1:
		return true
	case knights == 0 && (bishopColors[0] == 0 || bishopColors[1] == 0):
		return true
	}
	return false
}

// Outcome adjudicates with game rules (threefold repetition rather than the
// search's single repetition).
func (g *Game) Outcome() Outcome {
	if g.InCheckmate() {
		if g.SideToMove() == move.White {
			return Outcome{BlackWins, "checkmate"}
		}
		return Outcome{WhiteWins, "checkmate"}
	}
	switch {
	case g.InStalemate():
		return Outcome{Draw, "stalemate"}
	case g.InsufficientMaterial():
		return Outcome{Draw, "insufficient-material"}
	case g.fiftyMoves():
		return Outcome{Draw, "fifty-move-rule"}
	case g.repetitions() >= 2:
		return Outcome{Draw, "threefold-repetition"}
	}
	return Outcome{Ongoing, ""}
}


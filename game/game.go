// Package game adapts the notnil/chess rules engine to the position
// interface used by the search. A Game is a stack of positions: MakeMove
// pushes, UndoMove pops, so the search can make and unmake moves in LIFO
// order on a single shared object.
package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"

	"github.com/domino14/caissa/board"
	"github.com/domino14/caissa/move"
	"github.com/domino14/caissa/zobrist"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrAtRoot      = errors.New("no move to undo")
)

// All games share one key table so that identities are comparable across
// games, and a cache can outlive a single game.
var hasher = sync.OnceValue(func() *zobrist.Zobrist {
	log.Debug().Msg("creating zobrist hash")
	z := &zobrist.Zobrist{}
	z.Initialize()
	return z
})

type frame struct {
	pos      *chess.Position
	key      uint64
	played   move.Move
	halfmove int

	// lazily filled
	legal   []move.Move
	native  []*chess.Move
	pieces  []move.Piece
	board   *board.Board
	inCheck int8
}

// Game is a chess game in progress.
type Game struct {
	frames []*frame
}

// NewGame returns a game at the standard starting position.
func NewGame() *Game {
	g, err := FromFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return g
}

// FromFEN sets up a game from a FEN string.
func FromFEN(fen string) (*Game, error) {
	fen = strings.TrimSpace(fen)
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parsing fen: %w", err)
	}
	halfmove := 0
	if fields := strings.Fields(fen); len(fields) >= 5 {
		halfmove, err = strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("bad half-move clock %q: %w", fields[4], err)
		}
	}
	pos := chess.NewGame(opt).Position()
	g := &Game{}
	f := g.push(pos, move.Move{}, halfmove)
	f.key = hasher().Hash(f.enumerate(), colorOf(pos.Turn()), castlingMask(pos), epFile(pos))
	return g, nil
}

func (g *Game) top() *frame {
	return g.frames[len(g.frames)-1]
}

func (g *Game) push(pos *chess.Position, played move.Move, halfmove int) *frame {
	f := &frame{pos: pos, played: played, halfmove: halfmove, inCheck: -1}
	g.frames = append(g.frames, f)
	return f
}

// nextKey derives the identity of next, reached from f by m, without
// rescanning the board.
func (f *frame) nextKey(m move.Move, cm *chess.Move, next *chess.Position) uint64 {
	z := hasher()
	us := colorOf(f.pos.Turn())
	key := z.TogglePiece(f.key, move.Piece{Color: us, Type: m.Piece, Square: m.From})
	placed := m.Piece
	if m.IsPromotion() {
		placed = m.Promotion
	}
	key = z.TogglePiece(key, move.Piece{Color: us, Type: placed, Square: m.To})

	switch {
	case cm.HasTag(chess.EnPassant):
		// the taken pawn stands beside the target square
		victim := move.NewSquare(m.To.File(), m.From.Rank())
		key = z.TogglePiece(key, move.Piece{Color: us.Other(), Type: move.Pawn, Square: victim})
	case m.IsCapture():
		key = z.TogglePiece(key, move.Piece{Color: us.Other(), Type: m.Captured, Square: m.To})
	}

	if cm.HasTag(chess.KingSideCastle) || cm.HasTag(chess.QueenSideCastle) {
		rookFrom, rookTo := 7, 5
		if cm.HasTag(chess.QueenSideCastle) {
			rookFrom, rookTo = 0, 3
		}
		rank := m.From.Rank()
		key = z.TogglePiece(key, move.Piece{Color: us, Type: move.Rook, Square: move.NewSquare(rookFrom, rank)})
		key = z.TogglePiece(key, move.Piece{Color: us, Type: move.Rook, Square: move.NewSquare(rookTo, rank)})
	}

	key = z.ChangeCastling(key, castlingMask(f.pos), castlingMask(next))
	key = z.ToggleEnPassant(key, epFile(f.pos))
	key = z.ToggleEnPassant(key, epFile(next))
	return z.ToggleSide(key)
}

func (f *frame) enumerate() []move.Piece {
	if f.pieces != nil {
		return f.pieces
	}
	b := f.pos.Board()
	pieces := make([]move.Piece, 0, 32)
	for sq := 0; sq < 64; sq++ {
		p := b.Piece(chess.Square(sq))
		if p == chess.NoPiece {
			continue
		}
		pieces = append(pieces, move.Piece{
			Color:  colorOf(p.Color()),
			Type:   pieceTypeOf(p.Type()),
			Square: move.Square(sq),
		})
	}
	f.pieces = pieces
	return pieces
}

func (f *frame) mailbox() *board.Board {
	if f.board == nil {
		f.board = board.FromPieces(f.enumerate())
	}
	return f.board
}

func (f *frame) moves() []move.Move {
	if f.legal != nil {
		return f.legal
	}
	native := f.pos.ValidMoves()
	f.native = native
	f.legal = make([]move.Move, len(native))
	for i, cm := range native {
		f.legal[i] = convertMove(f.pos, cm)
	}
	return f.legal
}

// LegalMoves returns the legal moves in the current position. The returned
// slice is shared; callers must not modify it.
func (g *Game) LegalMoves(capturesOnly bool) []move.Move {
	moves := g.top().moves()
	if !capturesOnly {
		return moves
	}
	caps := make([]move.Move, 0, len(moves))
	for _, m := range moves {
		if m.IsCapture() {
			caps = append(caps, m)
		}
	}
	return caps
}

// MakeMove plays a legal move. Playing a move that is not legal here is a
// programming error and panics.
func (g *Game) MakeMove(m move.Move) {
	if err := g.makeMove(m); err != nil {
		panic(err)
	}
}

func (g *Game) makeMove(m move.Move) error {
	f := g.top()
	moves := f.moves()
	for i := range moves {
		if !moves[i].SameAction(m) {
			continue
		}
		halfmove := f.halfmove + 1
		if moves[i].Piece == move.Pawn || moves[i].IsCapture() {
			halfmove = 0
		}
		next := f.pos.Update(f.native[i])
		child := g.push(next, moves[i], halfmove)
		child.key = f.nextKey(moves[i], f.native[i], next)
		return nil
	}
	return fmt.Errorf("%w: %s in %s", ErrIllegalMove, m.UCI(), f.pos.String())
}

// UndoMove takes back m, which must be the last move made.
func (g *Game) UndoMove(m move.Move) {
	if len(g.frames) < 2 {
		panic(ErrAtRoot)
	}
	if last := g.top().played; !last.SameAction(m) {
		panic(fmt.Sprintf("unmake out of order: last move %s, asked to undo %s",
			last.UCI(), m.UCI()))
	}
	g.frames[len(g.frames)-1] = nil
	g.frames = g.frames[:len(g.frames)-1]
}

// Play parses a UCI move string and plays it.
func (g *Game) Play(uci string) (move.Move, error) {
	want, err := parseUCI(uci)
	if err != nil {
		return move.Move{}, err
	}
	if err := g.makeMove(want); err != nil {
		return move.Move{}, err
	}
	return g.top().played, nil
}

// Undo takes back the last move, whatever it was.
func (g *Game) Undo() (move.Move, error) {
	if len(g.frames) < 2 {
		return move.Move{}, ErrAtRoot
	}
	m := g.top().played
	g.UndoMove(m)
	return m, nil
}

// History returns the moves played since the game was set up.
func (g *Game) History() []move.Move {
	ms := make([]move.Move, 0, len(g.frames)-1)
	for _, f := range g.frames[1:] {
		ms = append(ms, f.played)
	}
	return ms
}

// Ply is the number of moves played since the game was set up.
func (g *Game) Ply() int {
	return len(g.frames) - 1
}

func (g *Game) Identity() uint64 {
	return g.top().key
}

func (g *Game) SideToMove() move.Color {
	return colorOf(g.top().pos.Turn())
}

// Pieces enumerates every piece on the board. The returned slice is shared;
// callers must not modify it.
func (g *Game) Pieces() []move.Piece {
	return g.top().enumerate()
}

// Board returns a mailbox view of the current position.
func (g *Game) Board() *board.Board {
	return g.top().mailbox()
}

func (g *Game) InCheck() bool {
	f := g.top()
	if f.inCheck < 0 {
		f.inCheck = 0
		if f.mailbox().InCheck(colorOf(f.pos.Turn())) {
			f.inCheck = 1
		}
	}
	return f.inCheck == 1
}

// HalfMoveClock counts plies since the last capture or pawn move.
func (g *Game) HalfMoveClock() int {
	return g.top().halfmove
}

// FEN returns the current position in Forsyth-Edwards notation.
func (g *Game) FEN() string {
	return g.top().pos.String()
}

func (g *Game) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString(g.Board().ToDisplayText())
	fmt.Fprintf(&sb, "\n%s to move", g.SideToMove())
	if g.InCheck() {
		sb.WriteString(" (in check)")
	}
	fmt.Fprintf(&sb, "\nfen: %s\n", g.FEN())
	return sb.String()
}

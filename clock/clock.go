// Package clock provides time budgets for a single move and the policy that
// decides when a search should give up.
package clock

import (
	"math"
	"time"
)

// Budget is a read-only view of the clock for the move being chosen.
type Budget interface {
	// ElapsedThisTurn is the time spent on the current move so far.
	ElapsedThisTurn() time.Duration
	// Remaining is what is left on the mover's clock, shrinking while the
	// turn runs.
	Remaining() time.Duration
}

// TurnClock starts counting when it is created.
type TurnClock struct {
	start     time.Time
	remaining time.Duration
	now       func() time.Time
}

// NewTurnClock starts a turn with remaining on the mover's clock.
func NewTurnClock(remaining time.Duration) *TurnClock {
	return &TurnClock{start: time.Now(), remaining: remaining, now: time.Now}
}

func (c *TurnClock) ElapsedThisTurn() time.Duration {
	return c.now().Sub(c.start)
}

func (c *TurnClock) Remaining() time.Duration {
	return c.remaining - c.ElapsedThisTurn()
}

// Fixed is a budget frozen in time.
type Fixed struct {
	Elapsed time.Duration
	Left    time.Duration
}

func (f Fixed) ElapsedThisTurn() time.Duration { return f.Elapsed }
func (f Fixed) Remaining() time.Duration       { return f.Left }

// Unlimited never runs out.
var Unlimited Budget = Fixed{Left: math.MaxInt64}

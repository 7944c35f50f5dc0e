package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGovernorThresholds(t *testing.T) {
	g := DefaultGovernor()
	// Opening: progression 0.15, limit 0.25*0.4 = 0.1.
	assert.InDelta(t, 0.1, g.Limit(0.15), 1e-9)
	assert.False(t, g.ShouldAbort(Fixed{Elapsed: 9 * time.Second, Left: 100 * time.Second}, 0.15))
	assert.True(t, g.ShouldAbort(Fixed{Elapsed: 11 * time.Second, Left: 100 * time.Second}, 0.15))

	// Endgame: the phase term saturates at 1.
	assert.InDelta(t, 0.25, g.Limit(1), 1e-9)
	assert.InDelta(t, 0.25, g.Limit(0.9), 1e-9)
	assert.False(t, g.ShouldAbort(Fixed{Elapsed: 24 * time.Second, Left: 100 * time.Second}, 1))
}

func TestGovernorZeroRemaining(t *testing.T) {
	g := DefaultGovernor()
	assert.True(t, g.ShouldAbort(Fixed{}, 0.5))
	assert.True(t, g.ShouldAbort(Fixed{Left: -time.Second}, 0.5))
	assert.False(t, g.ShouldAbort(Unlimited, 0))
}

func TestTurnClock(t *testing.T) {
	now := time.Unix(1000, 0)
	c := &TurnClock{start: now, remaining: 10 * time.Second, now: func() time.Time { return now }}
	assert.Equal(t, time.Duration(0), c.ElapsedThisTurn())
	now = now.Add(3 * time.Second)
	assert.Equal(t, 3*time.Second, c.ElapsedThisTurn())
	assert.Equal(t, 7*time.Second, c.Remaining())

	g := DefaultGovernor()
	// 3/7 is well past a quarter.
	assert.True(t, g.ShouldAbort(c, 1))
}

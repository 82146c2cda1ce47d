package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountdownTicksDownToExpiry(t *testing.T) {
	var ticks []int
	expired := 0

	var c Countdown
	c.Arm(3,
		func(remaining int) { ticks = append(ticks, remaining) },
		func() { expired++ },
	)

	// Three display ticks (3, 2, 1), then the expiry tick.
	for i := 0; i < 4; i++ {
		c.Tick()
	}

	assert.Equal(t, []int{3, 2, 1}, ticks)
	assert.Equal(t, 1, expired)
}

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	expired := 0

	var c Countdown
	c.Arm(0, nil, func() { expired++ })

	c.Tick()
	c.Tick()
	c.Tick()

	assert.Equal(t, 1, expired)
}

func TestCountdownCancelSilencesCallbacks(t *testing.T) {
	var c Countdown
	c.Arm(2,
		func(int) { t.Fatal("tick after cancel") },
		func() { t.Fatal("expire after cancel") },
	)

	c.Cancel()
	c.Cancel() // idempotent
	c.Tick()
}

func TestCountdownTickBeforeArmIsNoop(t *testing.T) {
	var c Countdown
	c.Tick()
	assert.Equal(t, 0, c.Remaining())
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "00:09", FormatClock(9))
	assert.Equal(t, "01:00", FormatClock(60))
	assert.Equal(t, "29:59", FormatClock(1799))
	assert.Equal(t, "00:00", FormatClock(-5))
}

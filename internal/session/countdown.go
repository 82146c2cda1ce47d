package session

import "fmt"

// Countdown is the attempt's single monotonic countdown clock. It is
// cooperative: the owning loop advances it by calling Tick once per second,
// so the whole timer is testable without real time.
//
// Each tick reports the pre-decrement remaining value, so the display runs
// MM:SS down to 00:01 and the expiry callback fires on the tick after the
// final render. Expire fires exactly once; Cancel is idempotent and silences
// all further callbacks. There is no pause/resume.
type Countdown struct {
	remaining int
	armed     bool
	expired   bool
	onTick    func(remainingSeconds int)
	onExpire  func()
}

// Arm starts the countdown at durationSeconds. Re-arming an armed countdown
// replaces its state; the session never does this within one attempt.
func (c *Countdown) Arm(durationSeconds int, onTick func(int), onExpire func()) {
	c.remaining = durationSeconds
	c.armed = true
	c.expired = false
	c.onTick = onTick
	c.onExpire = onExpire
}

// Tick advances the clock by one second.
func (c *Countdown) Tick() {
	if !c.armed || c.expired {
		return
	}
	if c.remaining <= 0 {
		c.expired = true
		c.armed = false
		if c.onExpire != nil {
			c.onExpire()
		}
		return
	}
	if c.onTick != nil {
		c.onTick(c.remaining)
	}
	c.remaining--
}

// Cancel stops the countdown with no further callbacks. Safe to call any
// number of times, before Arm, or after expiry.
func (c *Countdown) Cancel() {
	c.armed = false
	c.onTick = nil
	c.onExpire = nil
}

// Remaining returns the current remaining whole seconds.
func (c *Countdown) Remaining() int {
	return c.remaining
}

// FormatClock renders whole seconds as a zero-padded MM:SS display.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

package timer

import "time"

const (
	// Frequency is the rate, in Hz, at which a running countdown decrements.
	Frequency = 60
	// Period is the wall-clock time between two decrements.
	Period = time.Second / Frequency
)

// Countdown is an 8 bit counter that decrements by one every Period of
// wall-clock time while it is non-zero, and holds at zero otherwise.
// It is paced by the instants passed to Tick, not by how often Tick is called.
type Countdown struct {
	value uint8
	last  time.Time // instant of the last decrement, or of the last Set
}

// Get returns the current counter value.
func (c *Countdown) Get() uint8 {
	return c.value
}

// Active reports whether the counter is still running.
func (c *Countdown) Active() bool {
	return c.value > 0
}

// Set loads a new value and restarts the period at now.
func (c *Countdown) Set(value uint8, now time.Time) {
	c.value = value
	c.last = now
}

// Tick decrements the counter by exactly one if at least one Period has
// elapsed since the last decrement. Returns true when a decrement happened.
func (c *Countdown) Tick(now time.Time) bool {
	if c.value == 0 {
		c.last = now
		return false
	}

	if now.Sub(c.last) < Period {
		return false
	}

	c.value--
	c.last = c.last.Add(Period)

	// after a long stall (paused host, slow terminal) restart the period
	// instead of bursting through several decrements
	if now.Sub(c.last) >= Period {
		c.last = now
	}

	return true
}

// Reset stops the counter.
func (c *Countdown) Reset() {
	c.value = 0
	c.last = time.Time{}
}

package timing

import (
	"time"

	"github.com/valerio/go-chip8/chip8/timer"
)

// Limiter controls frame rate timing for emulation.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// Frames are paced at the timer rate so one frame is one timer tick.
const TargetFPS = timer.Frequency

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return timer.Period
}

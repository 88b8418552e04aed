package cpu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/bit"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCPU(opts ...Option) (*CPU, *fakeClock) {
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now), WithSeed(1)}, opts...)
	return New(opts...), clock
}

// assemble turns instruction words into big-endian program bytes.
func assemble(words ...uint16) []byte {
	program := make([]byte, 0, len(words)*2)
	for _, w := range words {
		program = append(program, bit.High(w), bit.Low(w))
	}
	return program
}

// execute writes op at the current PC and runs one Step.
func execute(t *testing.T, c *CPU, op uint16) {
	t.Helper()
	pc := c.PC()
	c.Write(pc, bit.High(op))
	c.Write(pc+1, bit.Low(op))
	require.NoError(t, c.Step())
}

func steps(t *testing.T, c *CPU, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		require.NoError(t, c.Step())
	}
}

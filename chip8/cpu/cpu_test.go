package cpu

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/timer"
)

func TestNew(t *testing.T) {
	c, _ := newTestCPU()

	assert.Equal(t, uint16(ProgramStart), c.PC())
	assert.Equal(t, uint8(0), c.SP())
	assert.Equal(t, uint16(0), c.I())
	for i, b := range fontset {
		require.Equal(t, b, c.Read(FontAddress+uint16(i)))
	}
	assert.Equal(t, 0, c.Display().LitCount())
}

func TestLoadProgram(t *testing.T) {
	t.Run("copies at program start", func(t *testing.T) {
		c, _ := newTestCPU()
		require.NoError(t, c.LoadProgram([]byte{0x12, 0x34, 0x56}))

		assert.Equal(t, uint8(0x12), c.Read(0x200))
		assert.Equal(t, uint8(0x34), c.Read(0x201))
		assert.Equal(t, uint8(0x56), c.Read(0x202))
		assert.Equal(t, uint16(0x200), c.PC())
	})

	t.Run("fills the whole address space", func(t *testing.T) {
		c, _ := newTestCPU()
		program := bytes.Repeat([]byte{0xAB}, MaxProgramSize)
		require.NoError(t, c.LoadProgram(program))
		assert.Equal(t, uint8(0xAB), c.Read(0xFFF))
	})

	t.Run("rejects oversized programs", func(t *testing.T) {
		c, _ := newTestCPU()
		err := c.LoadProgram(make([]byte, MaxProgramSize+1))
		assert.ErrorIs(t, err, ErrProgramTooLarge)
		assert.Equal(t, uint8(0), c.Read(0x200))
	})
}

func TestReset(t *testing.T) {
	c, _ := newTestCPU()
	require.NoError(t, c.LoadProgram(assemble(0x6105, 0xA300, 0x2206)))
	steps(t, c, 3)
	c.SetKey(4, true)
	c.Display().SetPixel(1, 1, true)

	c.Reset()

	assert.Equal(t, uint8(0), c.V(1))
	assert.Equal(t, uint16(0), c.I())
	assert.Equal(t, uint8(0), c.SP())
	assert.Equal(t, uint16(ProgramStart), c.PC())
	assert.Equal(t, uint8(0), c.Read(0x200))
	assert.False(t, c.Key(4))
	assert.Equal(t, 0, c.Display().LitCount())
	assert.Equal(t, uint64(0), c.Cycles())
	assert.Equal(t, fontset[0], c.Read(FontAddress))
}

func TestStep_fatalErrorIsLatched(t *testing.T) {
	c, _ := newTestCPU()
	require.NoError(t, c.LoadProgram(assemble(0x6001, 0x5121)))

	steps(t, c, 1)
	err := c.Step()

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, uint16(0x202), decodeErr.PC)
	assert.Equal(t, uint16(0x5121), decodeErr.Opcode)
	assert.Equal(t, uint16(0x202), c.PC(), "PC stays on the faulting instruction")
	assert.Equal(t, uint64(1), c.Cycles())

	again := c.Step()
	assert.Same(t, err, again)
	assert.Same(t, err, c.Fault())
	assert.Equal(t, uint16(0x202), c.PC())
}

func TestStep_machineCall(t *testing.T) {
	c, _ := newTestCPU()
	require.NoError(t, c.LoadProgram(assemble(0x0300)))

	err := c.Step()

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, DecodeUnsupported, decodeErr.Kind)
	assert.Contains(t, err.Error(), "0x0300")
}

func TestStep_keyWait(t *testing.T) {
	c, _ := newTestCPU()
	require.NoError(t, c.LoadProgram(assemble(0xF30A, 0x6001)))

	steps(t, c, 3)
	assert.Equal(t, uint16(0x200), c.PC(), "waits on the same instruction")
	assert.Equal(t, uint64(3), c.Cycles())

	c.SetKey(9, true)
	c.SetKey(5, true)
	steps(t, c, 1)

	assert.Equal(t, uint8(5), c.V(3), "lowest pressed key wins")
	assert.Equal(t, uint16(0x202), c.PC())
}

func TestStep_timersFollowTheClock(t *testing.T) {
	c, clock := newTestCPU()
	require.NoError(t, c.LoadProgram(assemble(
		0x6A3C, // LD VA, 60
		0xFA15, // LD DT, VA
		0x6B02, // LD VB, 2
		0xFB18, // LD ST, VB
		0x1208, // JP 0x208
	)))
	steps(t, c, 4)
	require.Equal(t, uint8(60), c.DelayTimer())
	require.True(t, c.SoundActive())

	steps(t, c, 100)
	assert.Equal(t, uint8(60), c.DelayTimer(), "no time has passed")

	for i := 0; i < 2; i++ {
		clock.Advance(timer.Period)
		steps(t, c, 1)
	}
	assert.Equal(t, uint8(58), c.DelayTimer())
	assert.False(t, c.SoundActive())

	for i := 0; i < 58; i++ {
		clock.Advance(timer.Period)
		steps(t, c, 1)
	}
	assert.Equal(t, uint8(0), c.DelayTimer())

	clock.Advance(10 * timer.Period)
	steps(t, c, 1)
	assert.Equal(t, uint8(0), c.DelayTimer())
}

func TestStep_hookRunsBeforeFetch(t *testing.T) {
	var seen []uint16
	c, _ := newTestCPU(WithHook(func(c *CPU) error {
		seen = append(seen, c.PC())
		c.SetKey(2, true)
		return nil
	}))
	require.NoError(t, c.LoadProgram(assemble(0xF10A, 0x1202)))

	steps(t, c, 2)

	assert.Equal(t, []uint16{0x200, 0x202}, seen)
	assert.Equal(t, uint8(2), c.V(1))
}

func TestRun(t *testing.T) {
	t.Run("hook stops cleanly", func(t *testing.T) {
		calls := 0
		c, _ := newTestCPU(WithHook(func(*CPU) error {
			calls++
			if calls == 5 {
				return ErrStop
			}
			return nil
		}))
		require.NoError(t, c.LoadProgram(assemble(0x1200)))

		require.NoError(t, c.Run(context.Background()))
		assert.Equal(t, uint64(4), c.Cycles())
	})

	t.Run("context cancellation", func(t *testing.T) {
		c, _ := newTestCPU()
		require.NoError(t, c.LoadProgram(assemble(0x1200)))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, c.Run(ctx), context.Canceled)
	})

	t.Run("fatal error", func(t *testing.T) {
		c, _ := newTestCPU()
		require.NoError(t, c.LoadProgram(assemble(0x6001, 0x00EE)))

		err := c.Run(context.Background())
		assert.True(t, errors.Is(err, ErrFatal))
	})
}

func TestStep_trace(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	c, _ := newTestCPU(WithTrace(true))
	require.NoError(t, c.LoadProgram(assemble(0x6142)))
	steps(t, c, 1)

	out := buf.String()
	assert.Contains(t, out, "LD V1, 0x42")
	assert.Contains(t, out, "pc=0x200")
	assert.Contains(t, out, "opcode=0x6142")
}

func TestPrograms(t *testing.T) {
	t.Run("load then add", func(t *testing.T) {
		c, _ := newTestCPU()
		require.NoError(t, c.LoadProgram(assemble(0x6005, 0x7003)))
		steps(t, c, 2)

		assert.Equal(t, uint8(8), c.V(0))
		assert.Equal(t, uint16(0x204), c.PC())
	})

	t.Run("clear loop stays in place", func(t *testing.T) {
		c, _ := newTestCPU()
		require.NoError(t, c.LoadProgram(assemble(0x00E0, 0x1200)))

		for i := 0; i < 100; i++ {
			require.NoError(t, c.Step())
			pc := c.PC()
			require.True(t, pc == 0x200 || pc == 0x202, "pc 0x%03X", pc)
		}
		assert.Equal(t, 0, c.Display().LitCount())
		assert.Equal(t, uint64(100), c.Cycles())
	})
}

func TestStateSetters(t *testing.T) {
	c, clock := newTestCPU()
	require.NoError(t, c.LoadProgram(assemble(
		0x1200, // JP 0x200
		0x1202, // JP 0x202
	)))

	c.SetPC(0x1202)
	assert.Equal(t, uint16(0x202), c.PC(), "PC is masked to 12 bits")

	c.SetDelayTimer(3)
	c.SetSoundTimer(1)
	assert.Equal(t, uint8(3), c.DelayTimer())
	assert.Equal(t, uint8(1), c.SoundTimer())
	assert.True(t, c.SoundActive())

	clock.Advance(timer.Period)
	steps(t, c, 1)
	assert.Equal(t, uint16(0x202), c.PC())
	assert.Equal(t, uint8(2), c.DelayTimer())
	assert.False(t, c.SoundActive())
}

package cpu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/timer"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	MemorySize   = 0x1000
	ProgramStart = 0x200
	// MaxProgramSize is the space available between ProgramStart and the end of memory.
	MaxProgramSize = MemorySize - ProgramStart
	StackDepth     = 16
	RegisterCount  = 16
	KeyCount       = 16

	flagRegister = 0xF
	addressMask  = 0x0FFF
)

// Hook runs before every fetch with full access to the CPU.
// Returning ErrStop ends Run cleanly, any other error is returned by Step.
type Hook func(*CPU) error

// Option configures a CPU created by New.
type Option func(*CPU)

// WithClock replaces the wall clock used to pace the timers.
func WithClock(clock func() time.Time) Option {
	return func(c *CPU) {
		c.clock = clock
	}
}

// WithRand replaces the random source used by RND.
func WithRand(rng *rand.Rand) Option {
	return func(c *CPU) {
		c.rng = rng
	}
}

// WithSeed makes RND deterministic.
func WithSeed(seed uint64) Option {
	return func(c *CPU) {
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	}
}

func WithHook(hook Hook) Option {
	return func(c *CPU) {
		c.hook = hook
	}
}

// WithTrace logs every executed instruction at debug level.
func WithTrace(enabled bool) Option {
	return func(c *CPU) {
		c.trace = enabled
	}
}

// CPU holds the complete interpreter state and executes one instruction per Step.
type CPU struct {
	v     [RegisterCount]uint8
	i     uint16
	pc    uint16
	sp    uint8
	stack [StackDepth]uint16

	memory  [MemorySize]uint8
	display *video.FrameBuffer
	delay   timer.Countdown
	sound   timer.Countdown
	keys    [KeyCount]bool

	// metadata
	currentOpcode uint16
	currentPC     uint16
	now           time.Time
	fault         error
	cycles        uint64

	clock func() time.Time
	rng   *rand.Rand
	hook  Hook
	trace bool
}

// New returns a CPU with the font loaded and PC at ProgramStart.
func New(opts ...Option) *CPU {
	c := &CPU{
		display: video.NewFrameBuffer(),
		clock:   time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	c.Reset()

	return c
}

// Reset brings the CPU back to its power-on state. The font is kept.
func (c *CPU) Reset() {
	c.v = [RegisterCount]uint8{}
	c.i = 0
	c.pc = ProgramStart
	c.sp = 0
	c.stack = [StackDepth]uint16{}
	c.memory = [MemorySize]uint8{}
	copy(c.memory[FontAddress:], fontset[:])
	c.display.Clear()
	c.delay.Reset()
	c.sound.Reset()
	c.keys = [KeyCount]bool{}
	c.currentOpcode = 0
	c.currentPC = 0
	c.fault = nil
	c.cycles = 0
}

// LoadProgram copies the program at ProgramStart and moves PC there.
func (c *CPU) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return ErrProgramTooLarge
	}

	copy(c.memory[ProgramStart:], program)
	c.pc = ProgramStart
	c.fault = nil

	return nil
}

// Step runs the hook, ticks the timers and executes a single instruction.
// Once a fatal error occurred every following call returns it again.
func (c *CPU) Step() error {
	if c.fault != nil {
		return c.fault
	}

	if c.hook != nil {
		if err := c.hook(c); err != nil {
			return err
		}
	}

	c.now = c.clock()
	c.delay.Tick(c.now)
	c.sound.Tick(c.now)

	c.currentPC = c.pc
	c.currentOpcode = c.fetch()

	instr, err := Decode(c.currentOpcode)
	if err != nil {
		return c.halt(withPC(err, c.currentPC))
	}

	if c.trace && slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug("exec",
			"pc", fmt.Sprintf("0x%03X", c.currentPC),
			"opcode", fmt.Sprintf("0x%04X", c.currentOpcode),
			"instr", instr.Format(c.currentOpcode))
	}

	if err := instr.exec(c, c.currentOpcode); err != nil {
		return c.halt(err)
	}

	c.cycles++

	return nil
}

// Run steps until ctx is done, a fatal error occurs or the hook returns ErrStop.
func (c *CPU) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.Step(); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}

// Fault returns the fatal error that halted the CPU, if any.
func (c *CPU) Fault() error {
	return c.fault
}

func (c *CPU) fetch() uint16 {
	high := c.memory[c.pc&addressMask]
	low := c.memory[(c.pc+1)&addressMask]
	c.pc = (c.pc + 2) & addressMask
	return bit.Combine(high, low)
}

// halt leaves PC on the faulting instruction and latches err.
func (c *CPU) halt(err error) error {
	c.pc = c.currentPC
	c.fault = err
	return err
}

func withPC(err error, pc uint16) error {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		decodeErr.PC = pc
	}
	return err
}

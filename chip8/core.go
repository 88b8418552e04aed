package chip8

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/rom"
	"github.com/valerio/go-chip8/chip8/timer"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	// DefaultInstructionsPerFrame gives roughly 600 instructions per second at 60 frames.
	DefaultInstructionsPerFrame = 10

	memoryWindowBefore = 0x40
	memoryWindowAfter  = 0x80
)

// Config holds the machine settings chosen by the host.
type Config struct {
	InstructionsPerFrame int
	Trace                bool
	// Seed makes RND reproducible when non-zero.
	Seed uint64
	// FrameClock advances the timer clock by one timer period per frame
	// instead of following the wall clock, so runs are reproducible.
	FrameClock bool
}

// SoundSink receives the buzzer state once per frame.
type SoundSink interface {
	SetTone(on bool)
}

// Machine couples the interpreter with the host keypad, the debugger
// states and the frame cadence.
type Machine struct {
	cpu     *cpu.CPU
	keypad  *input.Keypad
	manager *input.Manager
	config  Config
	program []byte

	debuggerState debug.DebuggerState
	frames        uint64
	virtualNow    time.Time
	sound         SoundSink
}

// New creates a machine with no program loaded.
func New(config Config) *Machine {
	if config.InstructionsPerFrame <= 0 {
		config.InstructionsPerFrame = DefaultInstructionsPerFrame
	}

	m := &Machine{
		keypad:     input.NewKeypad(),
		config:     config,
		virtualNow: time.Unix(0, 0),
	}
	m.manager = input.NewManager(m.keypad)
	m.registerActions()

	opts := []cpu.Option{
		cpu.WithHook(m.beforeInstruction),
		cpu.WithTrace(config.Trace),
	}
	if config.Seed != 0 {
		opts = append(opts, cpu.WithSeed(config.Seed))
	}
	if config.FrameClock {
		opts = append(opts, cpu.WithClock(func() time.Time { return m.virtualNow }))
	}
	m.cpu = cpu.New(opts...)

	return m
}

// NewWithFile creates a machine and loads the program at path into it.
func NewWithFile(path string, config Config) (*Machine, error) {
	program, err := rom.Load(path)
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded program", "path", path, "bytes", len(program))

	m := New(config)
	if err := m.LoadProgram(program); err != nil {
		return nil, err
	}

	return m, nil
}

// LoadProgram resets the interpreter and loads program at 0x200.
func (m *Machine) LoadProgram(program []byte) error {
	if err := rom.Validate(program); err != nil {
		return err
	}

	m.cpu.Reset()
	if err := m.cpu.LoadProgram(program); err != nil {
		return err
	}

	m.program = append(m.program[:0], program...)
	m.debuggerState = debug.DebuggerRunning
	m.frames = 0
	return nil
}

// Reset restarts the loaded program from scratch.
func (m *Machine) Reset() {
	if len(m.program) == 0 {
		return
	}
	m.keypad.Reset()
	if err := m.LoadProgram(m.program); err != nil {
		slog.Error("Failed to reload program", "error", err)
		return
	}
	slog.Info("Program restarted")
}

// beforeInstruction is the CPU hook: it publishes the host keypad.
func (m *Machine) beforeInstruction(c *cpu.CPU) error {
	c.SetKeys(m.keypad.State())
	return nil
}

// RunUntilFrame executes one frame worth of instructions, honouring the
// debugger state. Fatal interpreter errors halt the machine and are returned.
func (m *Machine) RunUntilFrame() error {
	var err error

	switch m.debuggerState {
	case debug.DebuggerRunning:
		err = m.runInstructions(m.config.InstructionsPerFrame)
	case debug.DebuggerStepInstruction:
		err = m.runInstructions(1)
		m.debuggerState = debug.DebuggerPaused
	case debug.DebuggerStepFrame:
		err = m.runInstructions(m.config.InstructionsPerFrame)
		m.debuggerState = debug.DebuggerPaused
	case debug.DebuggerPaused, debug.DebuggerHalted:
	}

	if m.sound != nil {
		m.sound.SetTone(m.cpu.SoundActive() && m.debuggerState != debug.DebuggerHalted)
	}

	m.frames++
	if m.config.FrameClock {
		m.virtualNow = m.virtualNow.Add(timer.Period)
	}

	return err
}

func (m *Machine) runInstructions(count int) error {
	for i := 0; i < count; i++ {
		if err := m.cpu.Step(); err != nil {
			m.debuggerState = debug.DebuggerHalted
			return fmt.Errorf("frame %d: %w", m.frames, err)
		}
	}
	return nil
}

func (m *Machine) GetCurrentFrame() *video.FrameBuffer {
	return m.cpu.Display()
}

// HandleAction feeds a host action into the machine.
func (m *Machine) HandleAction(act action.Action, pressed bool) {
	if pressed {
		m.manager.Trigger(act, event.Press)
	} else {
		m.manager.Trigger(act, event.Release)
	}
}

func (m *Machine) registerActions() {
	m.manager.On(action.EmulatorPauseToggle, event.Press, func() {
		switch m.debuggerState {
		case debug.DebuggerRunning:
			m.debuggerState = debug.DebuggerPaused
			slog.Info("Paused")
		case debug.DebuggerPaused:
			m.debuggerState = debug.DebuggerRunning
			slog.Info("Resumed")
		}
	})
	m.manager.On(action.EmulatorStepInstruction, event.Press, func() {
		if m.debuggerState == debug.DebuggerPaused {
			m.debuggerState = debug.DebuggerStepInstruction
		}
	})
	m.manager.On(action.EmulatorStepFrame, event.Press, func() {
		if m.debuggerState == debug.DebuggerPaused {
			m.debuggerState = debug.DebuggerStepFrame
		}
	})
	m.manager.On(action.EmulatorReset, event.Press, m.Reset)
}

// ExtractDebugData snapshots the interpreter state for debug displays.
func (m *Machine) ExtractDebugData() *debug.CompleteDebugData {
	if m.cpu == nil {
		return nil
	}

	c := m.cpu
	pc := c.PC()

	start := 0
	if int(pc) > memoryWindowBefore {
		start = int(pc) - memoryWindowBefore
	}
	end := int(pc) + memoryWindowAfter
	if end > cpu.MemorySize {
		end = cpu.MemorySize
	}
	memory := c.Memory()

	data := &debug.CompleteDebugData{
		CPU: &debug.CPUState{
			V:          c.Registers(),
			I:          c.I(),
			PC:         pc,
			SP:         c.SP(),
			Stack:      c.Stack(),
			DelayTimer: c.DelayTimer(),
			SoundTimer: c.SoundTimer(),
			Cycles:     c.Cycles(),
		},
		Memory: &debug.MemorySnapshot{
			StartAddr: uint16(start),
			Bytes:     append([]uint8(nil), memory[start:end]...),
		},
		DebuggerState: m.debuggerState,
		Keys:          m.keypad.State(),
	}
	if err := c.Fault(); err != nil {
		data.Fault = err.Error()
	}

	return data
}

// SetSoundSink installs the buzzer output. Nil disables sound.
func (m *Machine) SetSoundSink(s SoundSink) {
	m.sound = s
}

func (m *Machine) SoundActive() bool {
	return m.cpu.SoundActive()
}

func (m *Machine) Frames() uint64 {
	return m.frames
}

// CPU exposes the interpreter, mainly for tests and tooling.
func (m *Machine) CPU() *cpu.CPU {
	return m.cpu
}

func (m *Machine) DebuggerState() debug.DebuggerState {
	return m.debuggerState
}

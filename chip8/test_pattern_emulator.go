package chip8

import (
	"log/slog"

	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/video"
)

// TestPatternEmulator displays test patterns without running a program,
// for checking a backend's rendering.
type TestPatternEmulator struct {
	frameBuffer      *video.FrameBuffer
	patternType      int
	animationCounter int
}

func NewTestPatternEmulator() *TestPatternEmulator {
	e := &TestPatternEmulator{frameBuffer: video.NewFrameBuffer()}
	video.FillTestPattern(e.frameBuffer, 0, 0)
	return e
}

func (e *TestPatternEmulator) RunUntilFrame() error {
	e.animationCounter++
	if e.animationCounter%display.TestPatternAnimationFrames == 0 {
		step := e.animationCounter / display.TestPatternAnimationFrames
		video.FillTestPattern(e.frameBuffer, e.patternType, step)
	}
	return nil
}

func (e *TestPatternEmulator) GetCurrentFrame() *video.FrameBuffer {
	return e.frameBuffer
}

func (e *TestPatternEmulator) HandleAction(act action.Action, pressed bool) {
	if act == action.EmulatorTestPatternCycle && pressed {
		e.CycleTestPattern()
	}
}

func (e *TestPatternEmulator) ExtractDebugData() *debug.CompleteDebugData {
	return &debug.CompleteDebugData{DebuggerState: debug.DebuggerRunning}
}

func (e *TestPatternEmulator) CycleTestPattern() {
	e.patternType = (e.patternType + 1) % display.TestPatternCount
	e.animationCounter = 0
	video.FillTestPattern(e.frameBuffer, e.patternType, 0)
	slog.Info("Test pattern", "name", display.TestPatternNames[e.patternType])
}

func (e *TestPatternEmulator) PatternType() int {
	return e.patternType
}

var _ Emulator = (*TestPatternEmulator)(nil)

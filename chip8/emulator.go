package chip8

import (
	"context"
	"fmt"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

// Emulator is the interface for all emulator implementations
type Emulator interface {
	RunUntilFrame() error
	GetCurrentFrame() *video.FrameBuffer
	HandleAction(act action.Action, pressed bool)
	ExtractDebugData() *debug.CompleteDebugData
}

var (
	_ Emulator                  = (*Machine)(nil)
	_ backend.DebugDataProvider = (*Machine)(nil)
)

// Run drives emu frame by frame: wait for the limiter, run a frame, show it,
// then apply the input the backend collected. It returns nil when the quit
// action arrives or ctx is cancelled.
func Run(ctx context.Context, emu Emulator, b backend.Backend, limiter timing.Limiter) error {
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		limiter.WaitForNextFrame()

		if err := emu.RunUntilFrame(); err != nil {
			return err
		}

		events, err := b.Update(emu.GetCurrentFrame())
		if err != nil {
			return fmt.Errorf("backend update: %w", err)
		}

		for _, evt := range events {
			if evt.Action == action.EmulatorQuit && evt.Type == event.Press {
				return nil
			}

			// holding an emulator key must not repeat its action
			if _, keypad := action.KeypadIndex(evt.Action); evt.Type == event.Hold && !keypad {
				continue
			}

			emu.HandleAction(evt.Action, evt.Type != event.Release)
		}
	}
}

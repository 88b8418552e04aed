//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
	"github.com/veandco/go-sdl2/sdl"
)

// Backend implements the Backend interface using SDL2 bindings
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2)
type Backend struct {
	window     *sdl.Window
	renderer   *sdl.Renderer
	texture    *sdl.Texture
	config     backend.BackendConfig
	keyMapping map[sdl.Keycode]action.Action
	pixels     []byte
	eventQueue []backend.InputEvent

	testPatternType int
	currentFrame    *video.FrameBuffer
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{
		pixels: make([]byte, video.FramebufferSize*display.RGBABytesPerPixel),
	}
}

// Init initializes the SDL2 backend
func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config
	if s.config.Scale <= 0 {
		s.config.Scale = display.DefaultPixelScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(video.FramebufferWidth*s.config.Scale),
		int32(video.FramebufferHeight*s.config.Scale),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture
	s.keyMapping = buildKeyMapping()

	if config.TestPattern {
		slog.Info("SDL2 backend initialized in test pattern mode")
	} else {
		slog.Info("SDL2 backend initialized", "scale", s.config.Scale)
	}

	return nil
}

// Update renders a frame and processes events
func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		s.handleEvent(ev)
	}

	events := s.eventQueue
	s.eventQueue = nil

	s.currentFrame = frame
	if err := s.renderFrame(frame); err != nil {
		return events, err
	}
	s.updateTitle()

	return events, nil
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()

	return nil
}

func (s *Backend) handleEvent(ev sdl.Event) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		s.queue(action.EmulatorQuit, event.Press)

	case *sdl.KeyboardEvent:
		act, ok := s.keyMapping[e.Keysym.Sym]
		if !ok {
			return
		}
		_, keypad := action.KeypadIndex(act)

		switch {
		case e.Type == sdl.KEYDOWN && e.Repeat != 0:
			if keypad {
				s.queue(act, event.Hold)
			}
		case e.Type == sdl.KEYDOWN:
			s.handleAction(act)
			s.queue(act, event.Press)
		case e.Type == sdl.KEYUP && keypad:
			s.queue(act, event.Release)
		}
	}
}

func (s *Backend) queue(act action.Action, typ event.Type) {
	s.eventQueue = append(s.eventQueue, backend.InputEvent{Action: act, Type: typ})
}

// handleAction applies the actions the window handles itself.
func (s *Backend) handleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(s.currentFrame, s.config.TestPattern, s.testPatternType)
	case action.EmulatorTestPatternCycle:
		if s.config.TestPattern {
			s.testPatternType = (s.testPatternType + 1) % display.TestPatternCount
		}
	case action.EmulatorDebugToggle:
		s.config.ShowDebug = !s.config.ShowDebug
		if !s.config.ShowDebug {
			s.window.SetTitle(s.config.Title)
		}
	}
}

// sdlKeyNames maps key names used in default mappings to SDL key names
// where the two differ.
var sdlKeyNames = map[string]string{
	"+": "Keypad +",
	"_": "-",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[sdl.Keycode]action.Action {
	mapping := make(map[sdl.Keycode]action.Action)

	for keyName, act := range input.DefaultKeyMap {
		name := keyName
		if alias, ok := sdlKeyNames[keyName]; ok {
			name = alias
		}

		key := sdl.GetKeyFromName(name)
		if key == sdl.K_UNKNOWN {
			slog.Debug("No SDL key for mapping", "key", keyName)
			continue
		}
		mapping[key] = act
	}

	return mapping
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) error {
	onR, onG, onB, onA := display.RGBA(display.ForegroundColor)
	offR, offG, offB, offA := display.RGBA(display.BackgroundColor)

	for i, lit := range frame.ToSlice() {
		r, g, b, a := offR, offG, offB, offA
		if lit {
			r, g, b, a = onR, onG, onB, onA
		}

		// ABGR byte order for little-endian RGBA8888
		dst := i * display.RGBABytesPerPixel
		s.pixels[dst] = a
		s.pixels[dst+1] = b
		s.pixels[dst+2] = g
		s.pixels[dst+3] = r
	}

	if err := s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), video.FramebufferWidth*display.RGBABytesPerPixel); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}

	s.renderer.SetDrawColor(offR, offG, offB, offA)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
	return nil
}

// updateTitle shows interpreter state in the window title while debug
// display is on.
func (s *Backend) updateTitle() {
	if !s.config.ShowDebug || s.config.DebugProvider == nil {
		return
	}

	data := s.config.DebugProvider.ExtractDebugData()
	if data == nil || data.CPU == nil {
		return
	}

	title := fmt.Sprintf("%s [%s] PC:%03X I:%03X DT:%02X ST:%02X",
		s.config.Title, data.DebuggerState, data.CPU.PC, data.CPU.I, data.CPU.DelayTimer, data.CPU.SoundTimer)
	if data.Fault != "" {
		title += " " + data.Fault
	}
	s.window.SetTitle(title)
}

var _ backend.Backend = (*Backend)(nil)

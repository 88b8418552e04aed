package terminal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/terminal/render"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	gameAreaHeight = height / 2
	registerHeight = 10
	disasmHeight   = 9
	minTermWidth   = 80
	minTermHeight  = 24
	logCapacity    = 200
)

// Key expiry timeout, slightly longer than a typical key repeat interval.
// Terminals only report presses, so a key counts as held while it keeps
// repeating and as released once the repeats stop.
const keyTimeout = 100 * time.Millisecond

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen     tcell.Screen
	newScreen  func() (tcell.Screen, error)
	now        func() time.Time
	logBuffer  *render.LogBuffer
	logLevel   slog.Level
	prevLogger *slog.Logger
	config     backend.BackendConfig
	eventQueue []backend.InputEvent

	keyStates  map[action.Action]time.Time // last time each keypad key was seen
	activeKeys map[action.Action]bool      // keypad keys active in the previous frame

	debugProvider backend.DebugDataProvider

	testPatternType int
	currentFrame    *video.FrameBuffer
}

// New creates a new terminal backend
func New() *Backend {
	return &Backend{
		newScreen: tcell.NewScreen,
		now:       time.Now,
		logLevel:  slog.LevelInfo,
	}
}

// NewWithScreen creates a terminal backend drawing on an existing screen,
// such as a tcell.SimulationScreen.
func NewWithScreen(screen tcell.Screen) *Backend {
	b := New()
	b.newScreen = func() (tcell.Screen, error) { return screen, nil }
	return b
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.debugProvider = config.DebugProvider
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	screen, err := t.newScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.screen = screen

	// the screen owns stdout now, so logs go to the log pane
	t.logBuffer = render.NewLogBuffer(logCapacity)
	t.prevLogger = slog.Default()
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))

	if config.TestPattern {
		slog.Info("Terminal backend initialized in test pattern mode")
	} else {
		slog.Info("Terminal backend initialized")
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	return nil
}

// Update renders a frame and processes events
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	now := t.now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	events := t.keypadEvents(now)
	events = append(events, t.eventQueue...)
	t.eventQueue = nil

	t.currentFrame = frame
	t.render(frame)
	t.screen.Show()

	return events, nil
}

// keypadEvents turns the timestamps of repeating keys into Press, Hold and
// Release events.
func (t *Backend) keypadEvents(now time.Time) []backend.InputEvent {
	var events []backend.InputEvent
	currentlyActive := make(map[action.Action]bool)

	for act, lastPressed := range t.keyStates {
		if now.Sub(lastPressed) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}

		currentlyActive[act] = true
		if t.activeKeys[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		} else {
			slog.Debug("Key press", "action", act)
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		}
	}

	for act := range t.activeKeys {
		if !currentlyActive[act] {
			slog.Debug("Key release", "action", act)
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}

	t.activeKeys = currentlyActive
	return events
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
		t.screen = nil
	}
	if t.prevLogger != nil {
		slog.SetDefault(t.prevLogger)
		t.prevLogger = nil
	}
	return nil
}

// handleAction applies the actions the terminal handles itself. They are
// still forwarded to the emulator, which ignores the ones it doesn't know.
func (t *Backend) handleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(t.currentFrame, t.config.TestPattern, t.testPatternType)
	case action.EmulatorTestPatternCycle:
		if t.config.TestPattern {
			t.testPatternType = (t.testPatternType + 1) % display.TestPatternCount
		}
	case action.EmulatorDebugToggle:
		t.config.ShowDebug = !t.config.ShowDebug
		slog.Info("Debug display toggled", "enabled", t.config.ShowDebug)
	case action.DebugLogLevelIncrease:
		t.changeLogLevel(1)
	case action.DebugLogLevelDecrease:
		t.changeLogLevel(-1)
	}
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		act, ok = runeMapping[ev.Rune()]
	}
	if !ok {
		return
	}

	if action.GetInfo(act).Category == action.CategoryKeypad {
		t.keyStates[act] = now
		return
	}

	t.handleAction(act)
	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEscape: "Escape",
	tcell.KeyF5:     "F5",
	tcell.KeyF9:     "F9",
	tcell.KeyF10:    "F10",
	tcell.KeyF12:    "F12",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)

	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}

	mapping[tcell.KeyCtrlC] = action.EmulatorQuit

	return mapping
}

// buildRuneMapping creates the rune mapping from default mappings. Every
// single character key name maps to its rune, and upper case letters share
// the lower case action so caps lock doesn't lose the keypad.
func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)

	for keyName, act := range input.DefaultKeyMap {
		runes := []rune(keyName)
		if len(runes) != 1 {
			continue
		}
		mapping[runes[0]] = act
		if upper := []rune(strings.ToUpper(keyName)); upper[0] != runes[0] {
			mapping[upper[0]] = act
		}
	}

	if act, ok := input.GetDefaultMapping("Space"); ok {
		mapping[' '] = act
	}

	return mapping
}

var (
	keyMapping  = buildKeyMapping()
	runeMapping = buildRuneMapping()
)

func (t *Backend) changeLogLevel(direction int) {
	oldLevel := t.logLevel
	switch direction {
	case -1:
		switch t.logLevel {
		case slog.LevelDebug:
			t.logLevel = slog.LevelInfo
		case slog.LevelInfo:
			t.logLevel = slog.LevelWarn
		case slog.LevelWarn:
			t.logLevel = slog.LevelError
		}
	case 1:
		switch t.logLevel {
		case slog.LevelError:
			t.logLevel = slog.LevelWarn
		case slog.LevelWarn:
			t.logLevel = slog.LevelInfo
		case slog.LevelInfo:
			t.logLevel = slog.LevelDebug
		}
	}
	if oldLevel != t.logLevel {
		slog.Info("Log filter changed", "from", oldLevel, "to", t.logLevel)
	}
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	dividerX := width + 2
	rightPanelX := dividerX + 2
	rightPanelWidth := termWidth - rightPanelX

	t.drawBorders(termWidth, termHeight, dividerX)
	t.drawDisplay(frame)

	var data *debug.CompleteDebugData
	if t.config.ShowDebug && t.debugProvider != nil {
		data = t.debugProvider.ExtractDebugData()
	}

	logsY := 1
	if data != nil && data.CPU != nil {
		t.drawRegisters(data, rightPanelX, 1, rightPanelWidth)
		t.drawDisassembly(data, rightPanelX, registerHeight+3, rightPanelWidth)
		logsY = registerHeight + disasmHeight + 4
	}
	t.drawLogs(rightPanelX, logsY, rightPanelWidth, termHeight-1)
}

func (t *Backend) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	for i, ch := range []rune(text) {
		if i >= maxWidth {
			break
		}
		t.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}

	title := " CHIP-8 "
	if t.config.TestPattern {
		title = fmt.Sprintf(" Test Pattern: %s ", display.TestPatternNames[t.testPatternType])
	} else if t.config.Title != "" {
		title = " " + t.config.Title + " "
	}
	t.drawText(1, 0, dividerX-1, title, titleStyle)

	startX := dividerX + 2
	panelWidth := termWidth - startX
	logsTitleY := 0

	if t.config.ShowDebug && t.debugProvider != nil {
		registerEndY := registerHeight + 1
		disasmEndY := registerEndY + disasmHeight + 2
		for _, y := range []int{registerEndY, disasmEndY} {
			for x := dividerX + 1; x < termWidth; x++ {
				t.screen.SetContent(x, y, '─', nil, borderStyle)
			}
			t.screen.SetContent(dividerX, y, '├', nil, borderStyle)
		}

		t.drawText(startX, 0, panelWidth, " Registers ", titleStyle)
		t.drawText(startX, registerEndY+1, panelWidth, " Disassembly ", titleStyle)
		logsTitleY = disasmEndY
	}

	levelStr := strings.ToUpper(t.logLevel.String())
	t.drawText(startX, logsTitleY, panelWidth, fmt.Sprintf(" Logs [%s] (-/+ filter) ", levelStr), titleStyle)

	// keypad legend under the display
	legend := []string{
		"Keypad     Keyboard",
		"1 2 3 C    1 2 3 4",
		"4 5 6 D    q w e r",
		"7 8 9 E    a s d f",
		"A 0 B F    z x c v",
	}
	for i, line := range legend {
		y := gameAreaHeight + 3 + i
		if y >= termHeight-1 {
			break
		}
		t.drawText(2, y, dividerX-2, line, borderStyle)
	}

	var helpText string
	if t.config.TestPattern {
		helpText = " Test Pattern Mode: F12=cycle patterns F9=snapshot ESC=exit "
	} else {
		helpText = " SPACE=pause I=step O=frame F5=reset F9=snapshot F10=debug ESC=quit | Logs: +/- filter "
	}
	t.drawText(0, termHeight-1, termWidth, helpText, borderStyle)
}

func (t *Backend) drawDisplay(frame *video.FrameBuffer) {
	if frame == nil {
		return
	}

	on := paletteColor(display.ForegroundColor)
	off := paletteColor(display.BackgroundColor)
	style := tcell.StyleDefault.Foreground(on).Background(off)

	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			ch := render.HalfBlock(frame.GetPixel(x, y), frame.GetPixel(x, y+1))
			t.screen.SetContent(x+1, y/2+1, ch, nil, style)
		}
	}
}

func paletteColor(c uint32) tcell.Color {
	r, g, b, _ := display.RGBA(c)
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (t *Backend) drawRegisters(data *debug.CompleteDebugData, startX, startY, panelWidth int) {
	if panelWidth <= 0 {
		return
	}

	cpu := data.CPU

	var lines []string
	for row := 0; row < 4; row++ {
		var sb strings.Builder
		for col := 0; col < 4; col++ {
			reg := row*4 + col
			fmt.Fprintf(&sb, "V%X:%02X ", reg, cpu.V[reg])
		}
		lines = append(lines, strings.TrimSpace(sb.String()))
	}

	stack := make([]string, len(cpu.Stack))
	for i, addr := range cpu.Stack {
		stack[i] = fmt.Sprintf("%03X", addr)
	}

	var keys []string
	for k, pressed := range data.Keys {
		if pressed {
			keys = append(keys, fmt.Sprintf("%X", k))
		}
	}

	lines = append(lines,
		fmt.Sprintf("I:%03X  PC:%03X  SP:%d", cpu.I, cpu.PC, cpu.SP),
		fmt.Sprintf("DT:%02X  ST:%02X  Cycles:%d", cpu.DelayTimer, cpu.SoundTimer, cpu.Cycles),
		"Stack: "+strings.Join(stack, " "),
		"Keys: "+strings.Join(keys, " "),
		"Status: "+data.DebuggerState.String(),
	)
	if data.Fault != "" {
		lines = append(lines, "Fault: "+data.Fault)
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	faultStyle := tcell.StyleDefault.Foreground(tcell.ColorRed)
	for i, line := range lines {
		if i >= registerHeight {
			break
		}
		s := style
		if strings.HasPrefix(line, "Fault") {
			s = faultStyle
		}
		t.drawText(startX, startY+i, panelWidth, line, s)
	}
}

func (t *Backend) drawDisassembly(data *debug.CompleteDebugData, startX, startY, panelWidth int) {
	if panelWidth <= 0 || data.Memory == nil {
		return
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	for i, line := range debug.CreateDisassembly(data.Memory, data.CPU.PC, disasmHeight) {
		marker, s := " ", style
		if line.IsCurrent {
			marker, s = "→", currentStyle
		}
		text := fmt.Sprintf("%s 0x%03X: %s", marker, line.Address, line.Instruction)
		t.drawText(startX, startY+i, panelWidth, text, s)
	}
}

func (t *Backend) drawLogs(startX, startY, panelWidth, bottom int) {
	if panelWidth <= 0 || startY >= bottom {
		return
	}

	maxLines := bottom - startY
	var shown []render.LogEntry
	for _, entry := range t.logBuffer.GetRecent(0) {
		if entry.Level < t.logLevel {
			continue
		}
		shown = append(shown, entry)
		if len(shown) == maxLines {
			break
		}
	}

	// oldest of the shown entries at the top
	for i := len(shown) - 1; i >= 0; i-- {
		entry := shown[i]
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		switch {
		case entry.Level >= slog.LevelError:
			style = style.Foreground(tcell.ColorRed)
		case entry.Level >= slog.LevelWarn:
			style = style.Foreground(tcell.ColorYellow)
		case entry.Level < slog.LevelInfo:
			style = style.Foreground(tcell.ColorGray)
		}
		t.drawText(startX, startY+len(shown)-1-i, panelWidth, render.FormatLogEntry(entry), style)
	}
}

var _ backend.Backend = (*Backend)(nil)

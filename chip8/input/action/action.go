package action

import "fmt"

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// CHIP-8 hexadecimal keypad
	Key0 Action = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF

	// Emulator features
	EmulatorDebugToggle
	EmulatorSnapshot
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorStepInstruction
	EmulatorTestPatternCycle
	EmulatorReset
	EmulatorQuit

	// Debug controls
	DebugLogLevelIncrease
	DebugLogLevelDecrease

	actionCount
)

// Category groups actions for help screens and input routing.
type Category int

const (
	CategoryKeypad Category = iota
	CategoryEmulator
	CategoryDebug
)

func (c Category) String() string {
	switch c {
	case CategoryKeypad:
		return "Keypad"
	case CategoryEmulator:
		return "Emulator"
	case CategoryDebug:
		return "Debug"
	default:
		return "Unknown"
	}
}

// Info describes an action.
type Info struct {
	Name        string
	Description string
	Category    Category
}

var infos = map[Action]Info{
	EmulatorDebugToggle:      {"DebugToggle", "Toggle the debug panel", CategoryEmulator},
	EmulatorSnapshot:         {"Snapshot", "Save a PNG snapshot of the display", CategoryEmulator},
	EmulatorPauseToggle:      {"PauseToggle", "Pause or resume execution", CategoryEmulator},
	EmulatorStepFrame:        {"StepFrame", "Run a single frame while paused", CategoryEmulator},
	EmulatorStepInstruction:  {"StepInstruction", "Run a single instruction while paused", CategoryEmulator},
	EmulatorTestPatternCycle: {"TestPatternCycle", "Cycle through display test patterns", CategoryEmulator},
	EmulatorReset:            {"Reset", "Restart the loaded program", CategoryEmulator},
	EmulatorQuit:             {"Quit", "Quit the emulator", CategoryEmulator},
	DebugLogLevelIncrease:    {"LogLevelIncrease", "Show more log output", CategoryDebug},
	DebugLogLevelDecrease:    {"LogLevelDecrease", "Show less log output", CategoryDebug},
}

// GetInfo returns the description of an action.
func GetInfo(act Action) Info {
	if k, ok := KeypadIndex(act); ok {
		return Info{
			Name:        fmt.Sprintf("Key%X", k),
			Description: fmt.Sprintf("Keypad key %X", k),
			Category:    CategoryKeypad,
		}
	}

	if info, ok := infos[act]; ok {
		return info
	}

	return Info{Name: fmt.Sprintf("Action(%d)", int(act)), Category: CategoryEmulator}
}

func (a Action) String() string {
	return GetInfo(a).Name
}

// KeypadIndex returns the keypad key (0x0-0xF) an action stands for.
func KeypadIndex(act Action) (uint8, bool) {
	if act >= Key0 && act <= KeyF {
		return uint8(act - Key0), true
	}
	return 0, false
}

// KeypadAction returns the action for keypad key k (low nibble).
func KeypadAction(k uint8) Action {
	return Key0 + Action(k&0xF)
}

// All returns every defined action in order.
func All() []Action {
	all := make([]Action, 0, actionCount)
	for a := Key0; a < actionCount; a++ {
		all = append(all, a)
	}
	return all
}

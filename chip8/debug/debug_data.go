package debug

// CPUState contains all interpreter register information for debugging
type CPUState struct {
	V  [16]uint8
	I  uint16
	PC uint16
	SP uint8

	Stack      []uint16
	DelayTimer uint8
	SoundTimer uint8
	Cycles     uint64
}

// MemorySnapshot contains a snapshot of memory for disassembly
type MemorySnapshot struct {
	StartAddr uint16
	Bytes     []uint8
}

// Contains reports whether addr falls inside the snapshot.
func (m *MemorySnapshot) Contains(addr uint16) bool {
	return addr >= m.StartAddr && int(addr-m.StartAddr) < len(m.Bytes)
}

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepInstruction
	DebuggerStepFrame
	// DebuggerHalted means the program stopped on a fatal error.
	DebuggerHalted
)

func (s DebuggerState) String() string {
	switch s {
	case DebuggerRunning:
		return "RUNNING"
	case DebuggerPaused:
		return "PAUSED"
	case DebuggerStepInstruction:
		return "STEP"
	case DebuggerStepFrame:
		return "STEP FRAME"
	case DebuggerHalted:
		return "HALTED"
	default:
		return "UNKNOWN"
	}
}

// CompleteDebugData contains all debug information needed by debug displays
type CompleteDebugData struct {
	CPU           *CPUState
	Memory        *MemorySnapshot
	DebuggerState DebuggerState
	Keys          [16]bool
	Fault         string // empty unless halted
}

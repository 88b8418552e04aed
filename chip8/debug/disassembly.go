package debug

import (
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/cpu"
)

type DisasmLine struct {
	Address     uint16
	Instruction string
	IsCurrent   bool
}

// CreateDisassembly lists up to maxLines instructions around pc.
// Instructions are two bytes wide and decoded relative to pc, so odd
// program layouts still line up with the instruction being executed.
func CreateDisassembly(snapshot *MemorySnapshot, pc uint16, maxLines int) []DisasmLine {
	if snapshot == nil || maxLines <= 0 {
		return nil
	}

	start := int(pc) - (maxLines/2)*2
	for start < int(snapshot.StartAddr) {
		start += 2
	}

	lines := make([]DisasmLine, 0, maxLines)
	for addr := start; len(lines) < maxLines; addr += 2 {
		offset := addr - int(snapshot.StartAddr)
		if offset+1 >= len(snapshot.Bytes) {
			break
		}

		op := bit.Combine(snapshot.Bytes[offset], snapshot.Bytes[offset+1])
		lines = append(lines, DisasmLine{
			Address:     uint16(addr),
			Instruction: cpu.Disassemble(op),
			IsCurrent:   uint16(addr) == pc,
		})
	}

	return lines
}

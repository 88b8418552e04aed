package cpu

import (
	"fmt"

	"github.com/valerio/go-chip8/chip8/bit"
)

// Opcode executes a decoded instruction. PC has already been advanced past it.
type Opcode func(c *CPU, op uint16) error

// Instruction is one row of the decode table: an instruction word matches
// when op&Mask == Pattern.
type Instruction struct {
	Mask     uint16
	Pattern  uint16
	Mnemonic string

	operands    func(op uint16) string
	exec        Opcode
	unsupported bool
}

// Format renders the instruction with its operands, e.g. "DRW V1, V2, 5".
func (in Instruction) Format(op uint16) string {
	if in.operands == nil {
		return in.Mnemonic
	}
	return in.Mnemonic + " " + in.operands(op)
}

func x(op uint16) uint8 { return bit.Nibble(2, op) }
func y(op uint16) uint8 { return bit.Nibble(1, op) }
func n(op uint16) uint8 { return bit.Nibble(0, op) }

func nn(op uint16) uint8 { return bit.Low(op) }

func nnn(op uint16) uint16 { return bit.Address(op) }

func fmtNNN(op uint16) string { return fmt.Sprintf("0x%03X", nnn(op)) }
func fmtXNN(op uint16) string { return fmt.Sprintf("V%X, 0x%02X", x(op), nn(op)) }
func fmtXY(op uint16) string  { return fmt.Sprintf("V%X, V%X", x(op), y(op)) }
func fmtXYN(op uint16) string { return fmt.Sprintf("V%X, V%X, %d", x(op), y(op), n(op)) }
func fmtX(op uint16) string   { return fmt.Sprintf("V%X", x(op)) }

// fmtAround wraps the X register between a fixed prefix and suffix.
func fmtAround(prefix, suffix string) func(uint16) string {
	return func(op uint16) string {
		return fmt.Sprintf("%sV%X%s", prefix, x(op), suffix)
	}
}

// instructions is grouped by the top nibble of the instruction word.
// Rows in a group are tried in order.
var instructions = [16][]Instruction{
	0x0: {
		{Mask: 0xFFFF, Pattern: 0x00E0, Mnemonic: "CLS", exec: opcode00E0},
		{Mask: 0xFFFF, Pattern: 0x00EE, Mnemonic: "RET", exec: opcode00EE},
		{Mask: 0xF000, Pattern: 0x0000, Mnemonic: "SYS", operands: fmtNNN, unsupported: true},
	},
	0x1: {{Mask: 0xF000, Pattern: 0x1000, Mnemonic: "JP", operands: fmtNNN, exec: opcode1NNN}},
	0x2: {{Mask: 0xF000, Pattern: 0x2000, Mnemonic: "CALL", operands: fmtNNN, exec: opcode2NNN}},
	0x3: {{Mask: 0xF000, Pattern: 0x3000, Mnemonic: "SE", operands: fmtXNN, exec: opcode3XNN}},
	0x4: {{Mask: 0xF000, Pattern: 0x4000, Mnemonic: "SNE", operands: fmtXNN, exec: opcode4XNN}},
	0x5: {{Mask: 0xF00F, Pattern: 0x5000, Mnemonic: "SE", operands: fmtXY, exec: opcode5XY0}},
	0x6: {{Mask: 0xF000, Pattern: 0x6000, Mnemonic: "LD", operands: fmtXNN, exec: opcode6XNN}},
	0x7: {{Mask: 0xF000, Pattern: 0x7000, Mnemonic: "ADD", operands: fmtXNN, exec: opcode7XNN}},
	0x8: {
		{Mask: 0xF00F, Pattern: 0x8000, Mnemonic: "LD", operands: fmtXY, exec: opcode8XY0},
		{Mask: 0xF00F, Pattern: 0x8001, Mnemonic: "OR", operands: fmtXY, exec: opcode8XY1},
		{Mask: 0xF00F, Pattern: 0x8002, Mnemonic: "AND", operands: fmtXY, exec: opcode8XY2},
		{Mask: 0xF00F, Pattern: 0x8003, Mnemonic: "XOR", operands: fmtXY, exec: opcode8XY3},
		{Mask: 0xF00F, Pattern: 0x8004, Mnemonic: "ADD", operands: fmtXY, exec: opcode8XY4},
		{Mask: 0xF00F, Pattern: 0x8005, Mnemonic: "SUB", operands: fmtXY, exec: opcode8XY5},
		{Mask: 0xF00F, Pattern: 0x8006, Mnemonic: "SHR", operands: fmtXY, exec: opcode8XY6},
		{Mask: 0xF00F, Pattern: 0x8007, Mnemonic: "SUBN", operands: fmtXY, exec: opcode8XY7},
		{Mask: 0xF00F, Pattern: 0x800E, Mnemonic: "SHL", operands: fmtXY, exec: opcode8XYE},
	},
	0x9: {{Mask: 0xF00F, Pattern: 0x9000, Mnemonic: "SNE", operands: fmtXY, exec: opcode9XY0}},
	0xA: {{Mask: 0xF000, Pattern: 0xA000, Mnemonic: "LD", operands: func(op uint16) string { return "I, " + fmtNNN(op) }, exec: opcodeANNN}},
	0xB: {{Mask: 0xF000, Pattern: 0xB000, Mnemonic: "JP", operands: func(op uint16) string { return "V0, " + fmtNNN(op) }, exec: opcodeBNNN}},
	0xC: {{Mask: 0xF000, Pattern: 0xC000, Mnemonic: "RND", operands: fmtXNN, exec: opcodeCXNN}},
	0xD: {{Mask: 0xF000, Pattern: 0xD000, Mnemonic: "DRW", operands: fmtXYN, exec: opcodeDXYN}},
	0xE: {
		{Mask: 0xF0FF, Pattern: 0xE09E, Mnemonic: "SKP", operands: fmtX, exec: opcodeEX9E},
		{Mask: 0xF0FF, Pattern: 0xE0A1, Mnemonic: "SKNP", operands: fmtX, exec: opcodeEXA1},
	},
	0xF: {
		{Mask: 0xF0FF, Pattern: 0xF007, Mnemonic: "LD", operands: fmtAround("", ", DT"), exec: opcodeFX07},
		{Mask: 0xF0FF, Pattern: 0xF00A, Mnemonic: "LD", operands: fmtAround("", ", K"), exec: opcodeFX0A},
		{Mask: 0xF0FF, Pattern: 0xF015, Mnemonic: "LD", operands: fmtAround("DT, ", ""), exec: opcodeFX15},
		{Mask: 0xF0FF, Pattern: 0xF018, Mnemonic: "LD", operands: fmtAround("ST, ", ""), exec: opcodeFX18},
		{Mask: 0xF0FF, Pattern: 0xF01E, Mnemonic: "ADD", operands: fmtAround("I, ", ""), exec: opcodeFX1E},
		{Mask: 0xF0FF, Pattern: 0xF029, Mnemonic: "LD", operands: fmtAround("F, ", ""), exec: opcodeFX29},
		{Mask: 0xF0FF, Pattern: 0xF033, Mnemonic: "LD", operands: fmtAround("B, ", ""), exec: opcodeFX33},
		{Mask: 0xF0FF, Pattern: 0xF055, Mnemonic: "LD", operands: fmtAround("[I], ", ""), exec: opcodeFX55},
		{Mask: 0xF0FF, Pattern: 0xF065, Mnemonic: "LD", operands: fmtAround("", ", [I]"), exec: opcodeFX65},
	},
}

// Decode finds the instruction matching the word. The returned DecodeError
// carries no PC; Step fills it in.
func Decode(op uint16) (Instruction, error) {
	for _, in := range instructions[op>>12] {
		if op&in.Mask != in.Pattern {
			continue
		}
		if in.unsupported {
			return in, &DecodeError{Opcode: op, Kind: DecodeUnsupported}
		}
		return in, nil
	}

	return Instruction{}, &DecodeError{Opcode: op, Kind: DecodeUnknown}
}

// Disassemble renders a single instruction word. Words that are not
// instructions are shown as data.
func Disassemble(op uint16) string {
	in, err := Decode(op)
	if err != nil && !in.unsupported {
		return fmt.Sprintf("DW 0x%04X", op)
	}
	return in.Format(op)
}

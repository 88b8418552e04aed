package cpu

import (
	"github.com/valerio/go-chip8/chip8/bit"
)

func (c *CPU) skipIf(cond bool) {
	if cond {
		c.pc = (c.pc + 2) & addressMask
	}
}

// setFlag writes VF. Callers write the result first so the flag wins for X = F.
func (c *CPU) setFlag(on bool) {
	if on {
		c.v[flagRegister] = 1
	} else {
		c.v[flagRegister] = 0
	}
}

func (c *CPU) push(value uint16) error {
	if int(c.sp) >= StackDepth {
		return &StackError{Opcode: c.currentOpcode, PC: c.currentPC, Kind: StackOverflow}
	}
	c.stack[c.sp] = value
	c.sp++
	return nil
}

func (c *CPU) pop() (uint16, error) {
	if c.sp == 0 {
		return 0, &StackError{Opcode: c.currentOpcode, PC: c.currentPC, Kind: StackUnderflow}
	}
	c.sp--
	return c.stack[c.sp], nil
}

// CLS
func opcode00E0(c *CPU, _ uint16) error {
	c.display.Clear()
	return nil
}

// RET
func opcode00EE(c *CPU, _ uint16) error {
	addr, err := c.pop()
	if err != nil {
		return err
	}
	c.pc = addr
	return nil
}

// JP NNN
func opcode1NNN(c *CPU, op uint16) error {
	c.pc = nnn(op)
	return nil
}

// CALL NNN, the pushed address is the one after the call.
func opcode2NNN(c *CPU, op uint16) error {
	if err := c.push(c.pc); err != nil {
		return err
	}
	c.pc = nnn(op)
	return nil
}

// SE VX, NN
func opcode3XNN(c *CPU, op uint16) error {
	c.skipIf(c.v[x(op)] == nn(op))
	return nil
}

// SNE VX, NN
func opcode4XNN(c *CPU, op uint16) error {
	c.skipIf(c.v[x(op)] != nn(op))
	return nil
}

// SE VX, VY
func opcode5XY0(c *CPU, op uint16) error {
	c.skipIf(c.v[x(op)] == c.v[y(op)])
	return nil
}

// LD VX, NN
func opcode6XNN(c *CPU, op uint16) error {
	c.v[x(op)] = nn(op)
	return nil
}

// ADD VX, NN. No carry flag.
func opcode7XNN(c *CPU, op uint16) error {
	c.v[x(op)] += nn(op)
	return nil
}

// LD VX, VY
func opcode8XY0(c *CPU, op uint16) error {
	c.v[x(op)] = c.v[y(op)]
	return nil
}

// OR VX, VY
func opcode8XY1(c *CPU, op uint16) error {
	c.v[x(op)] |= c.v[y(op)]
	return nil
}

// AND VX, VY
func opcode8XY2(c *CPU, op uint16) error {
	c.v[x(op)] &= c.v[y(op)]
	return nil
}

// XOR VX, VY
func opcode8XY3(c *CPU, op uint16) error {
	c.v[x(op)] ^= c.v[y(op)]
	return nil
}

// ADD VX, VY. VF = carry.
func opcode8XY4(c *CPU, op uint16) error {
	result, carry := bit.CheckedAdd(c.v[x(op)], c.v[y(op)])
	c.v[x(op)] = result
	c.setFlag(carry)
	return nil
}

// SUB VX, VY. VF = not borrow.
func opcode8XY5(c *CPU, op uint16) error {
	result, borrow := bit.CheckedSub(c.v[x(op)], c.v[y(op)])
	c.v[x(op)] = result
	c.setFlag(!borrow)
	return nil
}

// SHR VX, VY. Shifts VY into VX, VF = bit shifted out.
func opcode8XY6(c *CPU, op uint16) error {
	value := c.v[y(op)]
	c.v[x(op)] = value >> 1
	c.setFlag(bit.IsSet(0, value))
	return nil
}

// SUBN VX, VY. VF = not borrow.
func opcode8XY7(c *CPU, op uint16) error {
	result, borrow := bit.CheckedSub(c.v[y(op)], c.v[x(op)])
	c.v[x(op)] = result
	c.setFlag(!borrow)
	return nil
}

// SHL VX, VY. Shifts VY into VX, VF = bit shifted out.
func opcode8XYE(c *CPU, op uint16) error {
	value := c.v[y(op)]
	c.v[x(op)] = value << 1
	c.setFlag(bit.IsSet(7, value))
	return nil
}

// SNE VX, VY
func opcode9XY0(c *CPU, op uint16) error {
	c.skipIf(c.v[x(op)] != c.v[y(op)])
	return nil
}

// LD I, NNN
func opcodeANNN(c *CPU, op uint16) error {
	c.i = nnn(op)
	return nil
}

// JP V0, NNN
func opcodeBNNN(c *CPU, op uint16) error {
	c.pc = (nnn(op) + uint16(c.v[0])) & addressMask
	return nil
}

// RND VX, NN
func opcodeCXNN(c *CPU, op uint16) error {
	c.v[x(op)] = uint8(c.rng.UintN(256)) & nn(op)
	return nil
}

// DRW VX, VY, N. Sprite rows are read from I, VF = collision.
func opcodeDXYN(c *CPU, op uint16) error {
	rows := int(n(op))
	sprite := make([]byte, rows)
	for row := 0; row < rows; row++ {
		sprite[row] = c.Read(c.i + uint16(row))
	}

	collision := c.display.Draw(int(c.v[x(op)]), int(c.v[y(op)]), sprite)
	c.setFlag(collision)
	return nil
}

// SKP VX
func opcodeEX9E(c *CPU, op uint16) error {
	c.skipIf(c.keys[c.v[x(op)]&0xF])
	return nil
}

// SKNP VX
func opcodeEXA1(c *CPU, op uint16) error {
	c.skipIf(!c.keys[c.v[x(op)]&0xF])
	return nil
}

// LD VX, DT
func opcodeFX07(c *CPU, op uint16) error {
	c.v[x(op)] = c.delay.Get()
	return nil
}

// LD VX, K. Without a pressed key PC goes back so the instruction is fetched again.
func opcodeFX0A(c *CPU, op uint16) error {
	for k, pressed := range c.keys {
		if pressed {
			c.v[x(op)] = uint8(k)
			return nil
		}
	}

	c.pc = c.currentPC
	return nil
}

// LD DT, VX
func opcodeFX15(c *CPU, op uint16) error {
	c.delay.Set(c.v[x(op)], c.now)
	return nil
}

// LD ST, VX
func opcodeFX18(c *CPU, op uint16) error {
	c.sound.Set(c.v[x(op)], c.now)
	return nil
}

// ADD I, VX. VF is not affected.
func opcodeFX1E(c *CPU, op uint16) error {
	c.i += uint16(c.v[x(op)])
	return nil
}

// LD F, VX
func opcodeFX29(c *CPU, op uint16) error {
	c.i = FontAddress + uint16(c.v[x(op)]&0xF)*FontGlyphSize
	return nil
}

// LD B, VX
func opcodeFX33(c *CPU, op uint16) error {
	hundreds, tens, ones := bit.Digits(c.v[x(op)])
	c.Write(c.i, hundreds)
	c.Write(c.i+1, tens)
	c.Write(c.i+2, ones)
	return nil
}

// LD [I], VX. Stores V0 through VX, then I points past the last byte.
func opcodeFX55(c *CPU, op uint16) error {
	last := uint16(x(op))
	for r := uint16(0); r <= last; r++ {
		c.Write(c.i+r, c.v[r])
	}
	c.i += last + 1
	return nil
}

// LD VX, [I]. Loads V0 through VX, then I points past the last byte.
func opcodeFX65(c *CPU, op uint16) error {
	last := uint16(x(op))
	for r := uint16(0); r <= last; r++ {
		c.v[r] = c.Read(c.i + r)
	}
	c.i += last + 1
	return nil
}

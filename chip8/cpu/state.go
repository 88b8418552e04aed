package cpu

import "github.com/valerio/go-chip8/chip8/video"

// V returns register VX. Only the low nibble of x is used.
func (c *CPU) V(x uint8) uint8 {
	return c.v[x&0xF]
}

func (c *CPU) SetV(x, value uint8) {
	c.v[x&0xF] = value
}

// Registers returns a copy of V0..VF.
func (c *CPU) Registers() [RegisterCount]uint8 {
	return c.v
}

func (c *CPU) I() uint16 {
	return c.i
}

func (c *CPU) SetI(value uint16) {
	c.i = value
}

func (c *CPU) PC() uint16 {
	return c.pc
}

func (c *CPU) SetPC(value uint16) {
	c.pc = value & addressMask
}

// SP returns the number of return addresses on the stack.
func (c *CPU) SP() uint8 {
	return c.sp
}

// Stack returns the pushed return addresses, oldest first.
func (c *CPU) Stack() []uint16 {
	out := make([]uint16, c.sp)
	copy(out, c.stack[:c.sp])
	return out
}

// Read returns the byte at address, masked to 12 bits.
func (c *CPU) Read(address uint16) uint8 {
	return c.memory[address&addressMask]
}

func (c *CPU) Write(address uint16, value uint8) {
	c.memory[address&addressMask] = value
}

// Memory returns a copy of the 4 KiB address space.
func (c *CPU) Memory() [MemorySize]uint8 {
	return c.memory
}

func (c *CPU) Display() *video.FrameBuffer {
	return c.display
}

func (c *CPU) DelayTimer() uint8 {
	return c.delay.Get()
}

func (c *CPU) SoundTimer() uint8 {
	return c.sound.Get()
}

func (c *CPU) SetDelayTimer(value uint8) {
	c.delay.Set(value, c.clock())
}

func (c *CPU) SetSoundTimer(value uint8) {
	c.sound.Set(value, c.clock())
}

// SoundActive reports whether the buzzer should be sounding.
func (c *CPU) SoundActive() bool {
	return c.sound.Active()
}

func (c *CPU) Key(k uint8) bool {
	return c.keys[k&0xF]
}

func (c *CPU) SetKey(k uint8, pressed bool) {
	c.keys[k&0xF] = pressed
}

// SetKeys replaces the whole keypad state.
func (c *CPU) SetKeys(keys [KeyCount]bool) {
	c.keys = keys
}

// Cycles returns the number of instructions executed since the last reset.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// CurrentOpcode returns the last fetched instruction word and its address.
func (c *CPU) CurrentOpcode() (opcode, pc uint16) {
	return c.currentOpcode, c.currentPC
}

package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPU_arithmetic(t *testing.T) {
	const untouched = 0xAA

	testCases := []struct {
		desc   string
		op     uint16
		vx, vy uint8
		wantVX uint8
		wantVF uint8
	}{
		{desc: "LD VX, NN", op: 0x6142, vx: 0x10, wantVX: 0x42, wantVF: untouched},
		{desc: "ADD VX, NN wraps without flag", op: 0x7105, vx: 0xFF, wantVX: 0x04, wantVF: untouched},
		{desc: "LD VX, VY", op: 0x8120, vx: 0x05, vy: 0x09, wantVX: 0x09, wantVF: untouched},
		{desc: "OR", op: 0x8121, vx: 0x0F, vy: 0xF0, wantVX: 0xFF, wantVF: untouched},
		{desc: "AND", op: 0x8122, vx: 0x3C, vy: 0x0F, wantVX: 0x0C, wantVF: untouched},
		{desc: "XOR", op: 0x8123, vx: 0xFF, vy: 0x0F, wantVX: 0xF0, wantVF: untouched},
		{desc: "ADD with carry", op: 0x8124, vx: 200, vy: 100, wantVX: 44, wantVF: 1},
		{desc: "ADD without carry", op: 0x8124, vx: 1, vy: 2, wantVX: 3, wantVF: 0},
		{desc: "SUB without borrow", op: 0x8125, vx: 5, vy: 3, wantVX: 2, wantVF: 1},
		{desc: "SUB equal operands", op: 0x8125, vx: 5, vy: 5, wantVX: 0, wantVF: 1},
		{desc: "SUB with borrow", op: 0x8125, vx: 3, vy: 5, wantVX: 254, wantVF: 0},
		{desc: "SHR reads VY, low bit set", op: 0x8126, vx: 0xFF, vy: 0x05, wantVX: 0x02, wantVF: 1},
		{desc: "SHR reads VY, low bit clear", op: 0x8126, vx: 0xFF, vy: 0x04, wantVX: 0x02, wantVF: 0},
		{desc: "SUBN without borrow", op: 0x8127, vx: 3, vy: 5, wantVX: 2, wantVF: 1},
		{desc: "SUBN with borrow", op: 0x8127, vx: 5, vy: 3, wantVX: 254, wantVF: 0},
		{desc: "SHL reads VY, high bit set", op: 0x812E, vx: 0x00, vy: 0x81, wantVX: 0x02, wantVF: 1},
		{desc: "SHL reads VY, high bit clear", op: 0x812E, vx: 0x00, vy: 0x40, wantVX: 0x80, wantVF: 0},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, _ := newTestCPU()
			c.SetV(1, tC.vx)
			c.SetV(2, tC.vy)
			c.SetV(0xF, untouched)

			execute(t, c, tC.op)

			assert.Equal(t, tC.wantVX, c.V(1))
			assert.Equal(t, tC.wantVF, c.V(0xF))
			assert.Equal(t, uint16(0x202), c.PC())
		})
	}
}

func TestCPU_flagWinsOverResult(t *testing.T) {
	testCases := []struct {
		desc   string
		op     uint16
		vf, vy uint8
		want   uint8
	}{
		{desc: "ADD carry", op: 0x8F24, vf: 200, vy: 100, want: 1},
		{desc: "ADD no carry", op: 0x8F24, vf: 1, vy: 1, want: 0},
		{desc: "SUB borrow", op: 0x8F25, vf: 3, vy: 5, want: 0},
		{desc: "SHR", op: 0x8F26, vy: 0x02, want: 0},
		{desc: "SHL", op: 0x8F2E, vy: 0x80, want: 1},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, _ := newTestCPU()
			c.SetV(0xF, tC.vf)
			c.SetV(2, tC.vy)

			execute(t, c, tC.op)

			assert.Equal(t, tC.want, c.V(0xF))
		})
	}
}

func TestCPU_skips(t *testing.T) {
	testCases := []struct {
		desc   string
		op     uint16
		vx, vy uint8
		key    int
		wantPC uint16
	}{
		{desc: "SE NN equal", op: 0x3142, vx: 0x42, key: -1, wantPC: 0x204},
		{desc: "SE NN different", op: 0x3142, vx: 0x41, key: -1, wantPC: 0x202},
		{desc: "SNE NN equal", op: 0x4142, vx: 0x42, key: -1, wantPC: 0x202},
		{desc: "SNE NN different", op: 0x4142, vx: 0x41, key: -1, wantPC: 0x204},
		{desc: "SE VY equal", op: 0x5120, vx: 7, vy: 7, key: -1, wantPC: 0x204},
		{desc: "SE VY different", op: 0x5120, vx: 7, vy: 8, key: -1, wantPC: 0x202},
		{desc: "SNE VY equal", op: 0x9120, vx: 7, vy: 7, key: -1, wantPC: 0x202},
		{desc: "SNE VY different", op: 0x9120, vx: 7, vy: 8, key: -1, wantPC: 0x204},
		{desc: "SKP pressed", op: 0xE19E, vx: 7, key: 7, wantPC: 0x204},
		{desc: "SKP other key", op: 0xE19E, vx: 7, key: 3, wantPC: 0x202},
		{desc: "SKP uses low nibble", op: 0xE19E, vx: 0x17, key: 7, wantPC: 0x204},
		{desc: "SKNP pressed", op: 0xE1A1, vx: 7, key: 7, wantPC: 0x202},
		{desc: "SKNP released", op: 0xE1A1, vx: 7, key: -1, wantPC: 0x204},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, _ := newTestCPU()
			c.SetV(1, tC.vx)
			c.SetV(2, tC.vy)
			if tC.key >= 0 {
				c.SetKey(uint8(tC.key), true)
			}

			execute(t, c, tC.op)

			assert.Equal(t, tC.wantPC, c.PC())
		})
	}
}

func TestCPU_jumps(t *testing.T) {
	c, _ := newTestCPU()
	execute(t, c, 0x1ABC)
	assert.Equal(t, uint16(0xABC), c.PC())

	c.SetV(0, 0x10)
	execute(t, c, 0xB300)
	assert.Equal(t, uint16(0x310), c.PC())

	c.SetV(0, 0xFF)
	execute(t, c, 0xBFFF)
	assert.Equal(t, uint16(0x0FE), c.PC(), "target is masked to 12 bits")
}

func TestCPU_callAndReturn(t *testing.T) {
	c, _ := newTestCPU()
	require.NoError(t, c.LoadProgram(assemble(
		0x2206, // CALL 0x206
		0x6101, // LD V1, 0x01
		0x1204, // JP 0x204
		0x6005, // LD V0, 0x05
		0x00EE, // RET
	)))

	steps(t, c, 1)
	assert.Equal(t, uint16(0x206), c.PC())
	assert.Equal(t, []uint16{0x202}, c.Stack())

	steps(t, c, 2)
	assert.Equal(t, uint16(0x202), c.PC())
	assert.Equal(t, uint8(0), c.SP())
	assert.Equal(t, uint8(5), c.V(0))

	steps(t, c, 1)
	assert.Equal(t, uint8(1), c.V(1))
}

func TestCPU_indexOperations(t *testing.T) {
	c, _ := newTestCPU()

	execute(t, c, 0xA123)
	assert.Equal(t, uint16(0x123), c.I())

	c.SetI(0xFFF)
	c.SetV(1, 2)
	c.SetV(0xF, 0x55)
	execute(t, c, 0xF11E)
	assert.Equal(t, uint16(0x1001), c.I(), "I is not wrapped to 12 bits")
	assert.Equal(t, uint8(0x55), c.V(0xF))

	c.SetV(1, 0x1A)
	execute(t, c, 0xF129)
	assert.Equal(t, uint16(0xA*FontGlyphSize), c.I())
	assert.Equal(t, []byte{0xF0, 0x90, 0xF0, 0x90, 0x90}, Glyph(0xA))
}

func TestCPU_bcd(t *testing.T) {
	testCases := []struct {
		value uint8
		want  [3]uint8
	}{
		{0, [3]uint8{0, 0, 0}},
		{7, [3]uint8{0, 0, 7}},
		{42, [3]uint8{0, 4, 2}},
		{254, [3]uint8{2, 5, 4}},
	}
	for _, tC := range testCases {
		c, _ := newTestCPU()
		c.SetI(0x300)
		c.SetV(4, tC.value)

		execute(t, c, 0xF433)

		assert.Equal(t, tC.want, [3]uint8{c.Read(0x300), c.Read(0x301), c.Read(0x302)})
		assert.Equal(t, uint16(0x300), c.I())
	}
}

func TestCPU_blockStoreAndLoad(t *testing.T) {
	c, _ := newTestCPU()
	for r := uint8(0); r < 4; r++ {
		c.SetV(r, r+1)
	}
	c.SetI(0x300)

	execute(t, c, 0xF355)

	assert.Equal(t, []uint8{1, 2, 3, 4, 0}, []uint8{
		c.Read(0x300), c.Read(0x301), c.Read(0x302), c.Read(0x303), c.Read(0x304),
	})
	assert.Equal(t, uint16(0x304), c.I())

	c.SetV(3, 0x99)
	c.Write(0x400, 0x10)
	c.Write(0x401, 0x20)
	c.Write(0x402, 0x30)
	c.SetI(0x400)

	execute(t, c, 0xF265)

	assert.Equal(t, uint8(0x10), c.V(0))
	assert.Equal(t, uint8(0x20), c.V(1))
	assert.Equal(t, uint8(0x30), c.V(2))
	assert.Equal(t, uint8(0x99), c.V(3), "registers after X are untouched")
	assert.Equal(t, uint16(0x403), c.I())
}

func TestCPU_memoryAccessWraps(t *testing.T) {
	c, _ := newTestCPU()
	c.SetI(0xFFF)
	c.SetV(0, 1)
	c.SetV(1, 2)

	execute(t, c, 0xF155)

	assert.Equal(t, uint8(1), c.Read(0xFFF))
	assert.Equal(t, uint8(2), c.Read(0x000))
}

func TestCPU_random(t *testing.T) {
	a, _ := newTestCPU(WithSeed(42))
	b, _ := newTestCPU(WithSeed(42))

	for i := 0; i < 20; i++ {
		execute(t, a, 0xC1FF)
		execute(t, b, 0xC1FF)
		assert.Equal(t, a.V(1), b.V(1))
	}

	for i := 0; i < 50; i++ {
		execute(t, a, 0xC20F)
		assert.LessOrEqual(t, a.V(2), uint8(0x0F))

		execute(t, a, 0xC300)
		assert.Equal(t, uint8(0), a.V(3))
	}
}

func TestCPU_drawAndClear(t *testing.T) {
	c, _ := newTestCPU()
	c.SetV(0, 0)

	execute(t, c, 0xF029) // I = glyph 0
	execute(t, c, 0xD125)

	fb := c.Display()
	assert.True(t, fb.GetPixel(0, 0))
	assert.True(t, fb.GetPixel(3, 0))
	assert.False(t, fb.GetPixel(4, 0))
	assert.False(t, fb.GetPixel(1, 1))
	assert.Equal(t, uint8(0), c.V(0xF))

	execute(t, c, 0xD125)
	assert.Equal(t, 0, fb.LitCount())
	assert.Equal(t, uint8(1), c.V(0xF))

	execute(t, c, 0xD125)
	require.NotZero(t, fb.LitCount())
	execute(t, c, 0x00E0)
	assert.Equal(t, 0, fb.LitCount())
}

func TestCPU_drawWraps(t *testing.T) {
	c, _ := newTestCPU()
	c.SetV(1, 62)
	c.SetV(2, 30)

	execute(t, c, 0xD125) // glyph 0 at I = 0

	fb := c.Display()
	assert.True(t, fb.GetPixel(62, 30))
	assert.True(t, fb.GetPixel(1, 30))
	assert.True(t, fb.GetPixel(62, 0))
	assert.True(t, fb.GetPixel(1, 0))
	assert.False(t, fb.GetPixel(63, 0))
}

func TestCPU_stackErrors(t *testing.T) {
	t.Run("overflow", func(t *testing.T) {
		c, _ := newTestCPU()
		require.NoError(t, c.LoadProgram(assemble(0x2200)))

		steps(t, c, StackDepth)
		err := c.Step()

		var stackErr *StackError
		require.ErrorAs(t, err, &stackErr)
		assert.Equal(t, StackOverflow, stackErr.Kind)
		assert.Equal(t, uint16(0x200), stackErr.PC)
		assert.ErrorIs(t, err, ErrFatal)
		assert.Equal(t, uint8(StackDepth), c.SP())
		assert.Equal(t, uint16(0x200), c.PC())
	})

	t.Run("underflow", func(t *testing.T) {
		c, _ := newTestCPU()
		require.NoError(t, c.LoadProgram(assemble(0x00EE)))

		err := c.Step()

		var stackErr *StackError
		require.ErrorAs(t, err, &stackErr)
		assert.Equal(t, StackUnderflow, stackErr.Kind)
		assert.Equal(t, uint16(0x00EE), stackErr.Opcode)
		assert.Equal(t, uint16(0x200), c.PC())
	})
}

func TestCPU_timerInstructions(t *testing.T) {
	c, _ := newTestCPU()

	c.SetV(1, 0x20)
	execute(t, c, 0xF115)
	assert.Equal(t, uint8(0x20), c.DelayTimer())

	execute(t, c, 0xF207)
	assert.Equal(t, uint8(0x20), c.V(2))

	execute(t, c, 0xF118)
	assert.Equal(t, uint8(0x20), c.SoundTimer())
	assert.True(t, c.SoundActive())
}

package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		high, low uint8
		expected  uint16
	}{
		{0xAB, 0xCD, 0xABCD},
		{0x00, 0x00, 0x0000},
		{0xFF, 0xFF, 0xFFFF},
		{0x12, 0x34, 0x1234},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Combine(tt.high, tt.low), "Combine(%X, %X)", tt.high, tt.low)
	}
}

func TestCheckedAdd(t *testing.T) {
	tests := []struct {
		a, b             uint8
		expectedResult   uint8
		expectedOverflow bool
	}{
		{0b11111111, 0b00000001, 0, true},
		{0b11111111, 0b11111111, 254, true},
		{0b00000001, 0b00000001, 2, false},
		{0b10000000, 0b00000000, 128, false},
	}

	for _, tt := range tests {
		result, overflow := CheckedAdd(tt.a, tt.b)
		assert.Equal(t, tt.expectedResult, result, "CheckedAdd(%d, %d)", tt.a, tt.b)
		assert.Equal(t, tt.expectedOverflow, overflow, "CheckedAdd(%d, %d) overflow", tt.a, tt.b)
	}
}

func TestCheckedSub(t *testing.T) {
	tests := []struct {
		a, b           uint8
		expectedResult uint8
		expectedBorrow bool
	}{
		{0b00000000, 0b00000001, 255, true},
		{0b00000001, 0b00000001, 0, false},
		{0b10000000, 0b00000000, 128, false},
		{0b11111111, 0b11111111, 0, false},
	}

	for _, tt := range tests {
		result, borrow := CheckedSub(tt.a, tt.b)
		assert.Equal(t, tt.expectedResult, result, "CheckedSub(%d, %d)", tt.a, tt.b)
		assert.Equal(t, tt.expectedBorrow, borrow, "CheckedSub(%d, %d) borrow", tt.a, tt.b)
	}
}

func TestIsSet(t *testing.T) {
	tests := []struct {
		byte     uint8
		index    uint8
		expected bool
	}{
		{0b10101010, 0, false},
		{0b10101010, 1, true},
		{0b10101010, 2, false},
		{0b10101010, 7, true},
		{0b10101010, 8, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsSet(tt.index, tt.byte), "IsSet(%d, %08b)", tt.index, tt.byte)
	}
}

func TestGetBitValue(t *testing.T) {
	assert.Equal(t, uint8(1), GetBitValue(0, 0x01))
	assert.Equal(t, uint8(0), GetBitValue(1, 0x01))
	assert.Equal(t, uint8(1), GetBitValue(7, 0x80))
}

func TestHighLow(t *testing.T) {
	assert.Equal(t, uint8(0xAB), High(0xABCD))
	assert.Equal(t, uint8(0xCD), Low(0xABCD))
}

func TestNibble(t *testing.T) {
	word := uint16(0xD3A5)

	assert.Equal(t, uint8(0x5), Nibble(0, word))
	assert.Equal(t, uint8(0xA), Nibble(1, word))
	assert.Equal(t, uint8(0x3), Nibble(2, word))
	assert.Equal(t, uint8(0xD), Nibble(3, word))
}

func TestAddress(t *testing.T) {
	assert.Equal(t, uint16(0x0234), Address(0x1234))
	assert.Equal(t, uint16(0x0FFF), Address(0xFFFF))
	assert.Equal(t, uint16(0), Address(0xF000))
}

func TestDigits(t *testing.T) {
	tests := []struct {
		value                uint8
		hundreds, tens, ones uint8
	}{
		{0, 0, 0, 0},
		{7, 0, 0, 7},
		{42, 0, 4, 2},
		{100, 1, 0, 0},
		{255, 2, 5, 5},
	}

	for _, tt := range tests {
		h, te, o := Digits(tt.value)
		assert.Equal(t, []uint8{tt.hundreds, tt.tens, tt.ones}, []uint8{h, te, o}, "Digits(%d)", tt.value)
	}
}

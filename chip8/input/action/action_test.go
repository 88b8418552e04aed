package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeypadIndex(t *testing.T) {
	for k := uint8(0); k < 16; k++ {
		act := KeypadAction(k)
		got, ok := KeypadIndex(act)
		assert.True(t, ok)
		assert.Equal(t, k, got)
		assert.Equal(t, CategoryKeypad, GetInfo(act).Category)
	}

	_, ok := KeypadIndex(EmulatorQuit)
	assert.False(t, ok)
}

func TestGetInfo(t *testing.T) {
	for _, act := range All() {
		info := GetInfo(act)
		assert.NotEmpty(t, info.Name, "action %d", int(act))
		assert.NotEmpty(t, info.Description, "action %d", int(act))
	}

	assert.Equal(t, "KeyA", KeyA.String())
	assert.Equal(t, CategoryDebug, GetInfo(DebugLogLevelIncrease).Category)
}

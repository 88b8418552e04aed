package input

// Keypad is the host-side state of the 16 key hexadecimal keypad.
type Keypad struct {
	keys [16]bool
}

func NewKeypad() *Keypad {
	return &Keypad{}
}

func (k *Keypad) Press(key uint8) {
	k.keys[key&0xF] = true
}

func (k *Keypad) Release(key uint8) {
	k.keys[key&0xF] = false
}

func (k *Keypad) IsPressed(key uint8) bool {
	return k.keys[key&0xF]
}

// State returns a copy of all key flags, indexed by key value.
func (k *Keypad) State() [16]bool {
	return k.keys
}

// Reset releases every key.
func (k *Keypad) Reset() {
	k.keys = [16]bool{}
}

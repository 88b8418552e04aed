package video

const (
	FramebufferWidth  = 64
	FramebufferHeight = 32
	FramebufferSize   = FramebufferWidth * FramebufferHeight

	// PackedSize is the length of the frame when packed one bit per pixel.
	PackedSize = FramebufferSize / 8
)

// FrameBuffer is the 64x32 monochrome display, stored row-major.
// All coordinates wrap around both axes.
type FrameBuffer struct {
	buffer [FramebufferSize]bool
}

// NewFrameBuffer creates a cleared frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

func wrap(value, size int) int {
	value %= size
	if value < 0 {
		value += size
	}
	return value
}

func index(x, y int) int {
	return wrap(y, FramebufferHeight)*FramebufferWidth + wrap(x, FramebufferWidth)
}

func (fb *FrameBuffer) GetPixel(x, y int) bool {
	return fb.buffer[index(x, y)]
}

func (fb *FrameBuffer) SetPixel(x, y int, on bool) {
	fb.buffer[index(x, y)] = on
}

// Clear turns every pixel off.
func (fb *FrameBuffer) Clear() {
	fb.buffer = [FramebufferSize]bool{}
}

// Draw XORs the sprite rows onto the buffer with the top-left corner at x, y.
// Bits are read MSB first. Reports whether any lit pixel was turned off.
func (fb *FrameBuffer) Draw(x, y int, sprite []byte) (collision bool) {
	for row, line := range sprite {
		for col := 0; col < 8; col++ {
			if line&(0x80>>col) == 0 {
				continue
			}

			i := index(x+col, y+row)
			if fb.buffer[i] {
				collision = true
			}
			fb.buffer[i] = !fb.buffer[i]
		}
	}

	return collision
}

func (fb *FrameBuffer) ToSlice() []bool {
	return fb.buffer[:]
}

// Pack returns the frame with one bit per pixel, MSB first, row-major.
func (fb *FrameBuffer) Pack() []byte {
	packed := make([]byte, PackedSize)
	for i, on := range fb.buffer {
		if on {
			packed[i/8] |= 0x80 >> (i % 8)
		}
	}
	return packed
}

// LitCount returns the number of pixels turned on.
func (fb *FrameBuffer) LitCount() int {
	count := 0
	for _, on := range fb.buffer {
		if on {
			count++
		}
	}
	return count
}

func (fb *FrameBuffer) Clone() *FrameBuffer {
	clone := *fb
	return &clone
}

func (fb *FrameBuffer) Equal(other *FrameBuffer) bool {
	return other != nil && fb.buffer == other.buffer
}

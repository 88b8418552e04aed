package video

import "github.com/valerio/go-chip8/chip8/display"

// FillTestPattern draws one of the display.TestPatternCount patterns into fb.
// Step shifts animated patterns (stripes and diagonal) horizontally.
func FillTestPattern(fb *FrameBuffer, pattern, step int) {
	tile := display.TestPatternTileSize
	stripe := display.TestPatternStripeWidth

	for y := 0; y < FramebufferHeight; y++ {
		for x := 0; x < FramebufferWidth; x++ {
			var on bool
			switch pattern % display.TestPatternCount {
			case 0:
				on = ((x/tile)+(y/tile))%2 == 0
			case 1:
				on = x == 0 || y == 0 || x == FramebufferWidth-1 || y == FramebufferHeight-1
			case 2:
				on = ((x+step)/stripe)%2 == 0
			case 3:
				on = ((x+y+step)/tile)%2 == 0
			}
			fb.SetPixel(x, y, on)
		}
	}
}

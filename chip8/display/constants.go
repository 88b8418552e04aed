package display

// RGBA pixel format constants
const (
	// RGBABytesPerPixel is the number of bytes per pixel in RGBA format
	RGBABytesPerPixel = 4
	// FullAlpha is the alpha value for fully opaque pixels
	FullAlpha = 255
)

// Backend scaling and window constants
const (
	// DefaultPixelScale is the default scaling factor for CHIP-8 pixels
	DefaultPixelScale = 10
	// DefaultWindowWidth is the default window width (display width * scale)
	DefaultWindowWidth = 64 * DefaultPixelScale // 640
	// DefaultWindowHeight is the default window height (display height * scale)
	DefaultWindowHeight = 32 * DefaultPixelScale // 320
	// SnapshotScale is the upscaling factor applied to PNG snapshots
	SnapshotScale = 8
)

// Palette for lit and unlit pixels, as 0xRRGGBBAA.
const (
	ForegroundColor uint32 = 0xE8E8E8FF
	BackgroundColor uint32 = 0x101010FF
)

// Test pattern constants
const (
	// TestPatternCount is the number of available test patterns
	TestPatternCount = 4
	// TestPatternTileSize is the size of tiles for checkerboard and diagonal patterns
	TestPatternTileSize = 4
	// TestPatternStripeWidth is the width of stripes in the stripe pattern
	TestPatternStripeWidth = 2
	// TestPatternAnimationFrames is the number of frames between test pattern animations
	TestPatternAnimationFrames = 30
)

// TestPatternNames holds a display name for each test pattern.
var TestPatternNames = [TestPatternCount]string{"Checkerboard", "Border", "Stripes", "Diagonal"}

// RGBA splits a 0xRRGGBBAA color into its components.
func RGBA(color uint32) (r, g, b, a uint8) {
	return uint8(color >> 24), uint8(color >> 16), uint8(color >> 8), uint8(color)
}

package render

import (
	"strings"

	"github.com/valerio/go-chip8/chip8/video"
)

// HalfBlock returns the character showing two vertically stacked pixels in
// one terminal cell, drawn in the foreground colour.
func HalfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}

// FrameToHalfBlocks renders the frame as FramebufferHeight/2 lines of text.
func FrameToHalfBlocks(frame *video.FrameBuffer) []string {
	lines := make([]string, 0, video.FramebufferHeight/2)
	var sb strings.Builder

	for y := 0; y < video.FramebufferHeight; y += 2 {
		sb.Reset()
		for x := 0; x < video.FramebufferWidth; x++ {
			sb.WriteRune(HalfBlock(frame.GetPixel(x, y), frame.GetPixel(x, y+1)))
		}
		lines = append(lines, sb.String())
	}

	return lines
}

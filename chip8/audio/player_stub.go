//go:build !oto

package audio

import "errors"

// ErrNoAudioDevice is returned when the binary was built without the oto tag.
var ErrNoAudioDevice = errors.New("live audio not available: build with -tags oto")

// Player is a stub. Build with -tags oto for live playback.
type Player struct{}

func NewPlayer(sampleRate int) (*Player, error) {
	return nil, ErrNoAudioDevice
}

func (p *Player) SetTone(on bool) {}

func (p *Player) Close() error { return nil }

//go:build oto

package audio

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
)

// Player plays the buzzer live on the default audio device.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	beeper *Beeper
}

func NewPlayer(sampleRate int) (*Player, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	beeper := NewBeeper(sampleRate, DefaultToneFrequency)
	p := &Player{
		ctx:    ctx,
		player: ctx.NewPlayer(beeper),
		beeper: beeper,
	}
	p.player.Play()

	return p, nil
}

func (p *Player) SetTone(on bool) {
	p.beeper.SetTone(on)
}

func (p *Player) Close() error {
	return p.player.Close()
}

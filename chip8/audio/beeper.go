package audio

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
)

// Beeper is a square wave generator gated by the sound timer.
// SetTone is called from the emulation loop while samples are pulled
// from the audio thread.
type Beeper struct {
	on atomic.Bool

	mu         sync.Mutex
	sampleRate int
	frequency  int
	amplitude  int16
	phase      int // position inside the current period, in samples
}

func NewBeeper(sampleRate, frequency int) *Beeper {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if frequency <= 0 {
		frequency = DefaultToneFrequency
	}
	return &Beeper{
		sampleRate: sampleRate,
		frequency:  frequency,
		amplitude:  defaultAmplitude,
	}
}

func (b *Beeper) SetTone(on bool) {
	b.on.Store(on)
}

func (b *Beeper) ToneOn() bool {
	return b.on.Load()
}

// GetSamples renders count samples. Silence keeps the phase so the wave
// restarts cleanly.
func (b *Beeper) GetSamples(count int) []int16 {
	samples := make([]int16, count)
	b.fill(samples)
	return samples
}

func (b *Beeper) fill(samples []int16) {
	if !b.on.Load() {
		clear(samples)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	period := b.sampleRate / b.frequency
	if period < 2 {
		period = 2
	}

	for i := range samples {
		if b.phase < period/2 {
			samples[i] = b.amplitude
		} else {
			samples[i] = -b.amplitude
		}
		b.phase = (b.phase + 1) % period
	}
}

// Read implements io.Reader with signed 16 bit little endian mono PCM.
func (b *Beeper) Read(p []byte) (int, error) {
	samples := make([]int16, len(p)/2)
	b.fill(samples)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(s))
	}
	return len(samples) * 2, nil
}

func (b *Beeper) SampleRate() int {
	return b.sampleRate
}

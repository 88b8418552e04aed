package audio

// Provider produces mono 16 bit samples for playback.
type Provider interface {
	// GetSamples retrieves audio samples for playback
	GetSamples(count int) []int16
}

// Sink receives the buzzer state, once per frame.
type Sink interface {
	SetTone(on bool)
}

// Sinks fans the buzzer state out to several sinks.
type Sinks []Sink

func (s Sinks) SetTone(on bool) {
	for _, sink := range s {
		sink.SetTone(on)
	}
}

const (
	// DefaultSampleRate is used by every output unless configured otherwise.
	DefaultSampleRate = 44100
	// DefaultToneFrequency is the buzzer pitch in Hz.
	DefaultToneFrequency = 440
	defaultAmplitude     = 8000
)

var (
	_ Provider = (*Beeper)(nil)
	_ Sink     = (*Beeper)(nil)
	_ Sink     = Sinks(nil)
)

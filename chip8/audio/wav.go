package audio

import (
	"fmt"
	"log/slog"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth  = 16
	wavChannels  = 1
	wavFormatPCM = 1
	framesPerSec = 60
)

// WavRecorder renders the buzzer into a WAV file. Every SetTone call stands
// for one frame of audio, so recordings follow emulated time rather than the
// wall clock.
type WavRecorder struct {
	path    string
	file    *os.File
	encoder *wav.Encoder
	beeper  *Beeper
	frame   []int16
	buf     *goaudio.IntBuffer
	frames  int
}

// NewWavRecorder creates path and prepares it for writing.
func NewWavRecorder(path string, sampleRate int) (*WavRecorder, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating wav file: %w", err)
	}

	samplesPerFrame := sampleRate / framesPerSec
	return &WavRecorder{
		path:    path,
		file:    f,
		encoder: wav.NewEncoder(f, sampleRate, wavBitDepth, wavChannels, wavFormatPCM),
		beeper:  NewBeeper(sampleRate, DefaultToneFrequency),
		frame:   make([]int16, samplesPerFrame),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: wavChannels, SampleRate: sampleRate},
			Data:           make([]int, samplesPerFrame),
			SourceBitDepth: wavBitDepth,
		},
	}, nil
}

// SetTone appends one frame of audio.
func (w *WavRecorder) SetTone(on bool) {
	if w.encoder == nil {
		return
	}

	w.beeper.SetTone(on)
	w.beeper.fill(w.frame)
	for i, s := range w.frame {
		w.buf.Data[i] = int(s)
	}

	if err := w.encoder.Write(w.buf); err != nil {
		slog.Error("Failed to write audio frame", "path", w.path, "error", err)
		w.encoder = nil
		return
	}
	w.frames++
}

// Frames returns the number of recorded frames.
func (w *WavRecorder) Frames() int {
	return w.frames
}

// Close finalises the WAV header and closes the file.
func (w *WavRecorder) Close() error {
	var encErr error
	if w.encoder != nil {
		encErr = w.encoder.Close()
		w.encoder = nil
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing wav file: %w", err)
	}
	if encErr != nil {
		return fmt.Errorf("finalising wav file: %w", encErr)
	}

	slog.Info("Audio recording saved", "path", w.path, "frames", w.frames)
	return nil
}

package machine

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/nf/ch8/chip8"
)

// WAVRecorder is an Output that writes the tone, one tick of samples per
// call to Tone, to a 16-bit mono WAV stream.
type WAVRecorder struct {
	enc  *wav.Encoder
	buf  *audio.IntBuffer
	wave square
	err  error
}

func NewWAVRecorder(w io.WriteSeeker) *WAVRecorder {
	return &WAVRecorder{
		enc: wav.NewEncoder(w, sampleRate, 16, 1, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
			Data:           make([]int, samplesPerTick),
			SourceBitDepth: 16,
		},
	}
}

func (r *WAVRecorder) Present(*chip8.Frame) {}

func (r *WAVRecorder) Tone(on bool) {
	if r.err != nil {
		return
	}
	for i := range r.buf.Data {
		r.buf.Data[i] = int(r.wave.next(on))
	}
	r.err = r.enc.Write(r.buf)
}

// Close finishes the WAV stream. It returns the first error encountered
// while recording.
func (r *WAVRecorder) Close() error {
	err := r.enc.Close()
	if r.err != nil {
		return r.err
	}
	return err
}

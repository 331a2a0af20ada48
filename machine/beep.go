package machine

import (
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"

	"github.com/nf/ch8/chip8"
)

const (
	sampleRate = 44100
	toneFreq   = 440
	amplitude  = 0x2000

	samplesPerTick = sampleRate / TickRate
)

// square generates a square wave at toneFreq, silent while off.
type square struct {
	phase int
}

func (s *square) next(on bool) int16 {
	s.phase = (s.phase + 1) % (sampleRate / toneFreq)
	if !on {
		return 0
	}
	if s.phase < sampleRate/toneFreq/2 {
		return amplitude
	}
	return -amplitude
}

// Beeper is an Output that plays a tone on the default audio device
// while the sound timer runs.
type Beeper struct {
	ctx    *oto.Context
	player *oto.Player
	on     atomic.Bool

	mu   sync.Mutex // guards wave
	wave square
}

func NewBeeper() (*Beeper, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	b := &Beeper{ctx: ctx}
	b.player = ctx.NewPlayer(b)
	b.player.Play()
	return b, nil
}

// Read implements io.Reader for the audio player.
func (b *Beeper) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	on := b.on.Load()
	n := len(p) &^ 1
	for i := 0; i < n; i += 2 {
		v := uint16(b.wave.next(on))
		p[i] = byte(v)
		p[i+1] = byte(v >> 8)
	}
	return n, nil
}

func (b *Beeper) Present(*chip8.Frame) {}

func (b *Beeper) Tone(on bool) { b.on.Store(on) }

func (b *Beeper) Close() error { return b.player.Close() }

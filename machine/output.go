package machine

import (
	"image"
	"image/color"
	"sync"

	"github.com/nf/ch8/chip8"
)

var (
	onColor  = color.RGBA{0xd8, 0xd8, 0xc0, 0xff}
	offColor = color.RGBA{0x20, 0x20, 0x28, 0xff}
)

// renderFrame draws f onto dst, one image pixel per display pixel.
func renderFrame(dst *image.RGBA, f *chip8.Frame) {
	for y := range f {
		for x, on := range f[y] {
			c := offColor
			if on {
				c = onColor
			}
			dst.SetRGBA(x, y, c)
		}
	}
}

// Recorder is an Output that keeps the most recent frame and tone state,
// for programs that inspect execution rather than show it.
type Recorder struct {
	mu     sync.Mutex
	frame  chip8.Frame
	frames int
	tone   bool
}

func (r *Recorder) Present(f *chip8.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame = *f
	r.frames++
}

func (r *Recorder) Tone(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tone = on
}

// Last returns the most recently presented frame and the number of frames
// presented so far.
func (r *Recorder) Last() (chip8.Frame, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame, r.frames
}

// Sounding reports whether the tone was on at the last tick.
func (r *Recorder) Sounding() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tone
}

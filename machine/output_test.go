package machine

import (
	"image"
	"testing"

	"github.com/nf/ch8/chip8"
)

func TestRenderFrame(t *testing.T) {
	var f chip8.Frame
	f[0][0] = true
	f[31][63] = true
	img := image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height))
	renderFrame(img, &f)
	for _, c := range []struct {
		x, y int
		on   bool
	}{
		{0, 0, true},
		{63, 31, true},
		{1, 0, false},
		{0, 1, false},
		{62, 31, false},
	} {
		want := offColor
		if c.on {
			want = onColor
		}
		if got := img.RGBAAt(c.x, c.y); got != want {
			t.Errorf("pixel (%d, %d) = %v, want %v", c.x, c.y, got, want)
		}
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	if _, n := r.Last(); n != 0 {
		t.Errorf("new Recorder has %d frames", n)
	}
	var f chip8.Frame
	f[3][4] = true
	r.Present(&f)
	f[3][4] = false
	r.Present(&f)
	f[5][6] = true // not presented
	got, n := r.Last()
	if n != 2 {
		t.Errorf("frames = %d, want 2", n)
	}
	if got[3][4] || got[5][6] {
		t.Errorf("Last returned a frame other than the last presented")
	}

	r.Tone(true)
	if !r.Sounding() {
		t.Error("Sounding = false after Tone(true)")
	}
	r.Tone(false)
	if r.Sounding() {
		t.Error("Sounding = true after Tone(false)")
	}
}

func TestStatusLine(t *testing.T) {
	got := statusLine(12, true, chip8.Keys(1<<0|1<<0xa))
	want := " frames 12     tone  keys 0.........A....."
	if got != want {
		t.Errorf("statusLine =\n%q, want\n%q", got, want)
	}
}

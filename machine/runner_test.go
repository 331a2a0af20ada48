package machine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nf/ch8/chip8"
)

// fakeClock advances only when the runner sleeps or waits.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.Sleep(d)
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

// fakeOutput records every frame and tone it is given.
type fakeOutput struct {
	frames  []chip8.Frame
	tones   []bool
	present func() // called on each Present, if set
}

func (o *fakeOutput) Present(f *chip8.Frame) {
	o.frames = append(o.frames, *f)
	if o.present != nil {
		o.present()
	}
}

func (o *fakeOutput) Tone(on bool) { o.tones = append(o.tones, on) }

func (o *fakeOutput) last(t *testing.T) chip8.Frame {
	t.Helper()
	if len(o.frames) == 0 {
		t.Fatal("no frames presented")
	}
	return o.frames[len(o.frames)-1]
}

func newTestRunner(cfg Config, outs ...Output) *Runner {
	r := NewRunner(cfg, outs...)
	r.clock = &fakeClock{now: time.Unix(0, 0)}
	return r
}

func program(words ...uint16) []byte {
	b := make([]byte, 0, 2*len(words))
	for _, w := range words {
		b = append(b, byte(w>>8), byte(w))
	}
	return b
}

// glyph returns a frame showing the font glyph for digit d at the origin.
func glyph(d byte) chip8.Frame {
	m := chip8.NewMachine(nil, chip8.Quirks{})
	start := chip8.FontBase + 5*int(d)
	var disp chip8.Display
	disp.Draw(0, 0, m.Mem[start:start+5], false)
	return disp.Frame()
}

func TestRunnerSpinExit(t *testing.T) {
	// Wait for the delay timer to run out, then spin.
	prog := program(
		0x6005, // LD V0, 05
		0xf015, // LD DT, V0
		0xf107, // LD V1, DT
		0x3100, // SE V1, 00
		0x1204, // JP 204
		0x120a, // JP 20a
	)
	out := &fakeOutput{}
	r := newTestRunner(Config{ExitOnSpin: true}, out)
	if err := r.Run(context.Background(), prog, nil); err != nil {
		t.Fatal(err)
	}
	if got := len(out.tones); got < 5 {
		t.Errorf("ran %d ticks, want at least 5", got)
	}
}

func TestRunnerPresent(t *testing.T) {
	prog := program(0xa050, 0xd005, 0x1204)
	out := &fakeOutput{}
	r := newTestRunner(Config{ExitOnSpin: true}, out)
	if err := r.Run(context.Background(), prog, nil); err != nil {
		t.Fatal(err)
	}
	if got, want := out.last(t), glyph(0); got != want {
		t.Errorf("got frame\n%v\nwant\n%v", &got, &want)
	}
	if len(out.frames) != 1 {
		t.Errorf("presented %d frames, want 1", len(out.frames))
	}
}

func TestRunnerTone(t *testing.T) {
	prog := program(0x6003, 0xf018, 0x1204)
	out := &fakeOutput{}
	r := newTestRunner(Config{ExitOnSpin: true}, out)
	if err := r.Run(context.Background(), prog, nil); err != nil {
		t.Fatal(err)
	}
	want := []bool{true, true, false}
	if len(out.tones) != len(want) {
		t.Fatalf("tones = %v, want %v", out.tones, want)
	}
	for i := range want {
		if out.tones[i] != want[i] {
			t.Fatalf("tones = %v, want %v", out.tones, want)
		}
	}
}

func TestRunnerWaitForKey(t *testing.T) {
	prog := program(
		0xa050, // LD I, 050
		0xd005, // DRW V0, V0, 5
		0xf30a, // LD V3, K
		0x00e0, // CLS
		0xf329, // LD F, V3
		0xd005, // DRW V0, V0, 5
		0x120c, // JP 20c
	)
	r := newTestRunner(Config{ExitOnSpin: true})
	out := &fakeOutput{}
	out.present = func() { r.Keys().Press(7) }
	r.outs = []Output{out}

	if err := r.Run(context.Background(), prog, nil); err != nil {
		t.Fatal(err)
	}
	if got, want := out.frames[0], glyph(0); got != want {
		t.Errorf("before key press got frame\n%v\nwant\n%v", &got, &want)
	}
	if got, want := out.last(t), glyph(7); got != want {
		t.Errorf("after key press got frame\n%v\nwant\n%v", &got, &want)
	}
}

func TestRunnerExecError(t *testing.T) {
	r := newTestRunner(Config{})
	err := r.Run(context.Background(), program(0x6001, 0x00ee), nil)
	want := chip8.ExecError{Code: chip8.ReturnWithoutCall, Instr: 0x00ee, Addr: 0x202}
	var got chip8.ExecError
	if !errors.As(err, &got) {
		t.Fatalf("Run returned %v, want %v", err, want)
	}
	if got != want {
		t.Errorf("Run returned %v, want %v", got, want)
	}
}

func TestRunnerLoadError(t *testing.T) {
	r := newTestRunner(Config{})
	err := r.Run(context.Background(), make([]byte, chip8.MemSize), nil)
	var le *chip8.LoadError
	if !errors.As(err, &le) || le.Kind != chip8.TooLarge {
		t.Fatalf("Run returned %v, want too large load error", err)
	}
}

func TestRunnerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := newTestRunner(Config{})
	if err := r.Run(ctx, program(0x1200), nil); err != nil {
		t.Fatal(err)
	}
}

func TestRunnerSwap(t *testing.T) {
	out := &fakeOutput{}
	r := newTestRunner(Config{Dev: true, ExitOnSpin: true}, out)

	swapErr := make(chan error, 1)
	go func() {
		if err := r.Swap(make([]byte, chip8.MemSize)); err == nil {
			swapErr <- errors.New("oversized program swapped in")
			return
		}
		swapErr <- r.Swap(program(0xa050, 0xd005, 0x1204))
	}()

	// The first program fails; dev mode keeps the runner alive for the
	// swap.
	if err := r.Run(context.Background(), program(0x00ee), nil); err != nil {
		t.Fatal(err)
	}
	if err := <-swapErr; err != nil {
		t.Fatal(err)
	}
	if got, want := out.last(t), glyph(0); got != want {
		t.Errorf("got frame\n%v\nwant\n%v", &got, &want)
	}
	if err := r.Swap(program(0x1200)); err != ErrStopped {
		t.Errorf("Swap after stop returned %v, want %v", err, ErrStopped)
	}
}

func TestRunnerRunOnce(t *testing.T) {
	r := newTestRunner(Config{ExitOnSpin: true})
	if err := r.Run(context.Background(), program(0x1200), nil); err != nil {
		t.Fatal(err)
	}
	if err := r.Run(context.Background(), program(0x1200), nil); err != ErrStarted {
		t.Errorf("second Run returned %v, want %v", err, ErrStarted)
	}
}

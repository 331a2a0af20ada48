package machine

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/ch8/chip8"
)

// Term is a Frontend that draws the display in a terminal, two display
// rows per text row, above a status line and a view of the log.
//
// Terminals report key presses but not releases, so a key is held for a
// short time after each press (or repeat) of its keyboard key.
// Escape or Ctrl-C quits.
type Term struct {
	app    *tview.Application
	scr    tcell.Screen // nil to use the terminal
	view   *tview.Box
	status *tview.TextView
	log    *tview.TextView
	hold   time.Duration

	mu     sync.Mutex
	keys   *chip8.Keypad
	frame  chip8.Frame
	tone   bool
	beep   bool // tone went on since the last draw
	frames int
	timers [16]*time.Timer
}

func NewTerm() *Term {
	t := &Term{
		app: tview.NewApplication(),
		status: tview.NewTextView().
			SetWrap(false),
		log: tview.NewTextView().
			SetMaxLines(1000),
		hold: 150 * time.Millisecond,
	}
	t.view = tview.NewBox().SetDrawFunc(t.draw)
	t.status.SetTextColor(tcell.ColorBlack)
	t.status.SetBackgroundColor(tcell.ColorDarkGrey)
	rows := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.view, chip8.Height/2, 0, false).
		AddItem(t.status, 1, 0, false).
		AddItem(t.log, 0, 1, false)
	t.app.SetRoot(rows, true)
	t.app.SetInputCapture(t.input)
	return t
}

func (t *Term) Present(f *chip8.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame = *f
	t.frames++
}

func (t *Term) Tone(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if on && !t.tone {
		t.beep = true
	}
	t.tone = on
}

func (t *Term) Run(keys *chip8.Keypad, exit <-chan bool) error {
	t.mu.Lock()
	t.keys = keys
	t.mu.Unlock()

	log.SetOutput(t.log)
	defer log.SetOutput(os.Stderr)

	done := make(chan bool)
	defer close(done)
	go func() {
		tk := time.NewTicker(time.Second / TickRate)
		defer tk.Stop()
		for {
			select {
			case <-tk.C:
				t.app.QueueUpdateDraw(t.updateStatus)
			case <-exit:
				// Stop does nothing until Run has a screen, so
				// stop from the event loop.
				t.app.QueueUpdate(t.app.Stop)
				return
			case <-done:
				return
			}
		}
	}()
	if t.scr != nil {
		t.app.SetScreen(t.scr)
	}
	return t.app.Run()
}

func (t *Term) input(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.app.Stop()
		return nil
	case tcell.KeyRune:
		if k, ok := KeyForRune(ev.Rune()); ok {
			t.press(k)
			return nil
		}
	}
	return ev
}

// press holds k until no press of it has been seen for t.hold.
func (t *Term) press(k byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.keys == nil {
		return
	}
	keys := t.keys
	keys.Press(k)
	if tm := t.timers[k]; tm != nil {
		tm.Stop()
	}
	t.timers[k] = time.AfterFunc(t.hold, func() { keys.Release(k) })
}

func (t *Term) updateStatus() {
	t.mu.Lock()
	var (
		frames = t.frames
		tone   = t.tone
		keys   chip8.Keys
	)
	if t.keys != nil {
		keys = t.keys.Snapshot()
	}
	t.mu.Unlock()
	t.status.SetText(statusLine(frames, tone, keys))
}

func statusLine(frames int, tone bool, keys chip8.Keys) string {
	var b strings.Builder
	fmt.Fprintf(&b, " frames %-6d ", frames)
	if tone {
		b.WriteString("tone ")
	} else {
		b.WriteString("     ")
	}
	b.WriteString(" keys ")
	for k := byte(0); k < 16; k++ {
		if keys.Down(k) {
			fmt.Fprintf(&b, "%X", k)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func (t *Term) draw(s tcell.Screen, x, y, width, height int) (int, int, int, int) {
	t.mu.Lock()
	f := t.frame
	beep := t.beep
	t.beep = false
	t.mu.Unlock()

	if beep {
		s.Beep()
	}
	for row := 0; row < chip8.Height/2 && row < height; row++ {
		for col := 0; col < chip8.Width && col < width; col++ {
			st := tcell.StyleDefault.
				Foreground(cellColor(f[2*row][col])).
				Background(cellColor(f[2*row+1][col]))
			s.SetContent(x+col, y+row, '▀', nil, st)
		}
	}
	return x, y, width, height
}

func cellColor(on bool) tcell.Color {
	c := offColor
	if on {
		c = onColor
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

package machine

import (
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/ch8/chip8"
)

// GUI is a Frontend that shows the display in a window and reads the key
// pad from the keyboard. Escape closes the window.
type GUI struct {
	scale int

	mu    sync.Mutex
	frame chip8.Frame
	fresh bool // frame not yet drawn
}

// NewGUI returns a GUI whose window initially shows each display pixel
// as a scale×scale square.
func NewGUI(scale int) *GUI {
	if scale < 1 {
		scale = 1
	}
	return &GUI{scale: scale}
}

func (g *GUI) Present(f *chip8.Frame) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frame = *f
	g.fresh = true
}

func (g *GUI) Tone(bool) {}

// take renders the latest frame into dst and reports whether it had not
// been drawn before.
func (g *GUI) take(dst *image.RGBA) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.fresh {
		return false
	}
	renderFrame(dst, &g.frame)
	g.fresh = false
	return true
}

func (g *GUI) Run(keys *chip8.Keypad, exit <-chan bool) (err error) {
	driver.Main(func(s screen.Screen) {
		w, werr := s.NewWindow(&screen.NewWindowOptions{
			Title:  "ch8",
			Width:  chip8.Width * g.scale,
			Height: chip8.Height * g.scale,
		})
		if werr != nil {
			err = werr
			return
		}
		defer w.Release()

		type update struct{}
		go func() {
			t := time.NewTicker(time.Second / TickRate)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					w.Send(update{})
					return
				}
			}
		}()

		var (
			sz     size.Event
			buf    screen.Buffer
			img    = image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height))
			redraw bool
		)
		renderFrame(img, &chip8.Frame{})
		defer func() {
			if buf != nil {
				buf.Release()
			}
		}()

		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				if buf != nil {
					buf.Release()
					buf = nil
				}
				redraw = true

			case paint.Event:
				redraw = true

			case key.Event:
				if e.Code == key.CodeEscape && e.Direction == key.DirPress {
					return
				}
				if k, ok := keyForCode(e.Code); ok {
					switch e.Direction {
					case key.DirPress:
						keys.Press(k)
					case key.DirRelease:
						keys.Release(k)
					}
				}

			case update:
				if g.take(img) {
					redraw = true
				}

			case error:
				log.Print(e)
			}

			if redraw && sz.WidthPx > 0 && sz.HeightPx > 0 {
				if buf == nil {
					if buf, werr = s.NewBuffer(sz.Size()); werr != nil {
						err = werr
						return
					}
				}
				draw.NearestNeighbor.Scale(buf.RGBA(), buf.Bounds(), img, img.Bounds(), draw.Src, nil)
				w.Upload(image.Point{}, buf, buf.Bounds())
				w.Publish()
				redraw = false
			}
		}
	})
	return err
}

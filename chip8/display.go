package chip8

import "strings"

const (
	Width  = 64
	Height = 32
)

// Frame is the content of the CHIP-8 display, indexed by row then column.
type Frame [Height][Width]bool

// String renders the frame as text, one line per row.
func (f *Frame) String() string {
	var b strings.Builder
	for y := range f {
		for _, on := range f[y] {
			if on {
				b.WriteRune('█')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Display holds the pixel buffer and tracks whether it changed since the
// last call to MarkClean.
type Display struct {
	frame Frame
	dirty bool
}

// Clear turns every pixel off.
func (d *Display) Clear() {
	d.frame = Frame{}
	d.dirty = true
}

// Draw XORs an 8 pixel wide sprite, one byte per row with the most
// significant bit leftmost, onto the display with its top-left corner at
// (x mod Width, y mod Height). Pixels that fall past the right or bottom
// edge are dropped, or wrapped to the opposite edge if wrap is set.
// It reports whether any pixel was turned off.
func (d *Display) Draw(x, y byte, sprite []byte, wrap bool) (collision bool) {
	ox, oy := int(x)%Width, int(y)%Height
	for row, bits := range sprite {
		py := oy + row
		if py >= Height {
			if !wrap {
				break
			}
			py %= Height
		}
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := ox + col
			if px >= Width {
				if !wrap {
					break
				}
				px %= Width
			}
			if d.frame[py][px] {
				collision = true
			}
			d.frame[py][px] = !d.frame[py][px]
		}
	}
	d.dirty = true
	return collision
}

// Pixel reports whether the pixel at (x, y) is on.
func (d *Display) Pixel(x, y int) bool { return d.frame[y][x] }

// Frame returns a copy of the display content.
func (d *Display) Frame() Frame { return d.frame }

// Dirty reports whether the display changed since the last MarkClean.
func (d *Display) Dirty() bool { return d.dirty }

// MarkClean records that the current frame has been presented.
func (d *Display) MarkClean() { d.dirty = false }

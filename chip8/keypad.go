package chip8

import (
	"sync"
	"sync/atomic"
)

// Keys is a snapshot of the 16 key pad, one bit per key.
type Keys uint16

// Down reports whether key (0x0-0xf) is held.
func (k Keys) Down(key byte) bool { return k&(1<<(key&0xf)) != 0 }

// Keypad is the key state shared between a front end, which writes it as
// keys go down and up, and the machine, which reads snapshots of it.
// Writes are last-write-wins; a snapshot always sees all 16 keys as of a
// single moment. The zero value is ready to use.
type Keypad struct {
	state atomic.Uint32

	mu   sync.Mutex
	next *Press
}

// Press is a pending key press, obtained from Keypad.NextPress.
type Press struct {
	done chan struct{}
	key  byte
}

// Done returns a channel that is closed when a key goes down.
func (p *Press) Done() <-chan struct{} { return p.done }

// Key returns the key that went down. It is valid once Done is closed.
func (p *Press) Key() byte { return p.key }

// Set records key (0x0-0xf) as held or released.
func (k *Keypad) Set(key byte, down bool) {
	bit := uint32(1) << (key & 0xf)

	k.mu.Lock()
	defer k.mu.Unlock()
	old := k.state.Load()
	if down {
		k.state.Store(old | bit)
	} else {
		k.state.Store(old &^ bit)
	}
	if down && old&bit == 0 && k.next != nil {
		p := k.next
		p.key = key & 0xf
		k.next = nil
		close(p.done)
	}
}

func (k *Keypad) Press(key byte)   { k.Set(key, true) }
func (k *Keypad) Release(key byte) { k.Set(key, false) }

// Snapshot returns the state of all keys.
func (k *Keypad) Snapshot() Keys { return Keys(k.state.Load()) }

// NextPress returns a Press that completes when any key next goes from
// released to held. Callers waiting at the same time share one Press.
func (k *Keypad) NextPress() *Press {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.next == nil {
		k.next = &Press{done: make(chan struct{})}
	}
	return k.next
}

// Package chip8 provides an implementation of a CHIP-8 interpreter, called
// Machine, that can be used to execute CHIP-8 bytecode.
package chip8

import (
	"fmt"
	"math/rand"
)

const (
	MemSize      = 0x1000
	ProgramStart = 0x200
	FontBase     = 0x050

	addrMask = MemSize - 1
)

// Machine is an implementation of a CHIP-8 CPU and its display.
type Machine struct {
	Mem     [MemSize]byte
	V       [16]byte
	I       uint16
	PC      uint16
	Stack   []uint16
	Delay   byte
	Sound   byte
	Display Display

	Keys   KeySource
	Quirks Quirks
	Rand   func() byte

	waitReg byte
	waiting bool
	spin    bool
}

// KeySource provides the key state observed by the key opcodes.
type KeySource interface {
	Snapshot() Keys
}

// Quirks select between behaviours that differ across historical
// CHIP-8 interpreters. The zero value is the default behaviour.
type Quirks struct {
	ShiftVY     bool // 8XY6 and 8XYE shift VY into VX
	JumpVX      bool // BNNN adds VX rather than V0
	JumpPC      bool // BNNN jumps rather than loading I
	IncrementI  bool // FX55 and FX65 leave I after the last register
	WrapSprites bool // DXYN wraps at the display edges instead of clipping
}

// NewMachine returns a CHIP-8 CPU with the font loaded at FontBase and the
// program counter at ProgramStart. Key opcodes read from keys, which may be
// nil if the program does not use them.
func NewMachine(keys KeySource, q Quirks) *Machine {
	m := &Machine{
		PC:     ProgramStart,
		Keys:   keys,
		Quirks: q,
		Rand:   func() byte { return byte(rand.Intn(0x100)) },
	}
	copy(m.Mem[FontBase:], font[:])
	return m
}

// Nopf is a logf func that discards its input.
func Nopf(string, ...any) {}

// Exec executes the instruction at m.PC. It only returns a non-nil error,
// of type ExecError, if the instruction cannot be executed. Exec writes a
// trace line for the instruction to logf.
//
// If the machine is waiting for a key press Exec does nothing.
func (m *Machine) Exec(logf func(string, ...any)) error {
	if m.waiting {
		return nil
	}
	m.spin = false

	var (
		addr = m.PC & addrMask
		in   = Instr(short(m.Mem[addr], m.Mem[(addr+1)&addrMask]))
	)
	m.PC += 2
	logf("%.3x %.4x %-16v %v", addr, uint16(in), in, m.V)

	x, y := in.X(), in.Y()
	switch in.Op() {
	case 0x0:
		switch in {
		case 0x00e0:
			m.Display.Clear()
		case 0x00ee:
			n := len(m.Stack)
			if n == 0 {
				return ExecError{Code: ReturnWithoutCall, Instr: in, Addr: addr}
			}
			m.PC = m.Stack[n-1]
			m.Stack = m.Stack[:n-1]
		default:
			return ExecError{Code: UnknownInstruction, Instr: in, Addr: addr}
		}
	case 0x1:
		m.PC = in.NNN()
		m.spin = m.PC == addr
	case 0x2:
		m.Stack = append(m.Stack, m.PC)
		m.PC = in.NNN()
	case 0x3:
		m.skipIf(m.V[x] == in.NN())
	case 0x4:
		m.skipIf(m.V[x] != in.NN())
	case 0x5:
		if in.N() != 0 {
			return ExecError{Code: UnknownInstruction, Instr: in, Addr: addr}
		}
		m.skipIf(m.V[x] == m.V[y])
	case 0x6:
		m.V[x] = in.NN()
	case 0x7:
		m.V[x] += in.NN()
	case 0x8:
		if !m.execALU(in) {
			return ExecError{Code: UnknownInstruction, Instr: in, Addr: addr}
		}
	case 0x9:
		if in.N() != 0 {
			return ExecError{Code: UnknownInstruction, Instr: in, Addr: addr}
		}
		m.skipIf(m.V[x] != m.V[y])
	case 0xa:
		m.I = in.NNN()
	case 0xb:
		offs := m.V[0]
		if m.Quirks.JumpVX {
			offs = m.V[x]
		}
		if m.Quirks.JumpPC {
			m.PC = in.NNN() + uint16(offs)
		} else {
			m.I = in.NNN() + uint16(offs)
		}
	case 0xc:
		m.V[x] = m.Rand() & in.NN()
	case 0xd:
		n := uint16(in.N())
		sprite := make([]byte, n)
		for row := uint16(0); row < n; row++ {
			sprite[row] = m.Mem[(m.I+row)&addrMask]
		}
		m.V[0xf] = bit(m.Display.Draw(m.V[x], m.V[y], sprite, m.Quirks.WrapSprites))
	case 0xe:
		var keys Keys
		if m.Keys != nil {
			keys = m.Keys.Snapshot()
		}
		switch in.NN() {
		case 0x9e:
			m.skipIf(keys.Down(m.V[x]))
		case 0xa1:
			m.skipIf(!keys.Down(m.V[x]))
		default:
			return ExecError{Code: UnknownInstruction, Instr: in, Addr: addr}
		}
	case 0xf:
		if !m.execMisc(in) {
			return ExecError{Code: UnknownInstruction, Instr: in, Addr: addr}
		}
	}
	return nil
}

// execALU executes the 8XYN register operations,
// reporting false if N names no operation.
func (m *Machine) execALU(in Instr) bool {
	var (
		x, y   = in.X(), in.Y()
		vx, vy = m.V[x], m.V[y]
	)
	switch in.N() {
	case 0x0:
		m.V[x] = vy
	case 0x1:
		m.V[x] = vx | vy
	case 0x2:
		m.V[x] = vx & vy
	case 0x3:
		m.V[x] = vx ^ vy
	case 0x4:
		sum := uint16(vx) + uint16(vy)
		m.V[x] = byte(sum)
		m.V[0xf] = bit(sum > 0xff)
	case 0x5:
		m.V[x] = vx - vy
		m.V[0xf] = bit(vx >= vy)
	case 0x6:
		if m.Quirks.ShiftVY {
			vx = vy
		}
		m.V[x] = vx >> 1
		m.V[0xf] = vx & 1
	case 0x7:
		m.V[x] = vy - vx
		m.V[0xf] = bit(vx <= vy)
	case 0xe:
		if m.Quirks.ShiftVY {
			vx = vy
		}
		shifted := uint16(vx) << 1
		m.V[x] = byte(shifted)
		m.V[0xf] = byte(shifted>>8) & 1
	default:
		return false
	}
	return true
}

// execMisc executes the FXNN timer, key and memory operations,
// reporting false if NN names no operation.
func (m *Machine) execMisc(in Instr) bool {
	x := in.X()
	switch in.NN() {
	case 0x07:
		m.V[x] = m.Delay
	case 0x0a:
		m.waitReg = x
		m.waiting = true
	case 0x15:
		m.Delay = m.V[x]
	case 0x18:
		m.Sound = m.V[x]
	case 0x1e:
		m.I += uint16(m.V[x])
	case 0x29:
		m.I = FontBase + uint16(m.V[x])*glyphSize
	case 0x33:
		v := m.V[x]
		m.Mem[m.I&addrMask] = v / 100
		m.Mem[(m.I+1)&addrMask] = v / 10 % 10
		m.Mem[(m.I+2)&addrMask] = v % 10
	case 0x55:
		for i := uint16(0); i <= uint16(x); i++ {
			m.Mem[(m.I+i)&addrMask] = m.V[i]
		}
		if m.Quirks.IncrementI {
			m.I += uint16(x) + 1
		}
	case 0x65:
		for i := uint16(0); i <= uint16(x); i++ {
			m.V[i] = m.Mem[(m.I+i)&addrMask]
		}
		if m.Quirks.IncrementI {
			m.I += uint16(x) + 1
		}
	default:
		return false
	}
	return true
}

func (m *Machine) skipIf(cond bool) {
	if cond {
		m.PC += 2
	}
}

// WaitingForKey reports whether the last instruction executed was FX0A
// and no key has yet been passed to KeyPressed.
func (m *Machine) WaitingForKey() bool { return m.waiting }

// KeyPressed completes a pending FX0A by storing key in its register.
// It does nothing if the machine is not waiting for a key.
func (m *Machine) KeyPressed(key byte) {
	if !m.waiting {
		return
	}
	m.V[m.waitReg] = key & 0xf
	m.waiting = false
}

// Spinning reports whether the last instruction executed was a jump to its
// own address, the idiom CHIP-8 programs use to halt.
func (m *Machine) Spinning() bool { return m.spin }

// Tick advances the delay and sound timers by one 60 Hz period and
// reports whether the tone should sound.
func (m *Machine) Tick() (tone bool) {
	if m.Delay > 0 {
		m.Delay--
	}
	if m.Sound > 0 {
		m.Sound--
	}
	return m.Sound > 0
}

// ExecError is returned by Exec if an instruction cannot be executed.
type ExecError struct {
	Code  ErrorCode
	Instr Instr
	Addr  uint16
}

func (e ExecError) Error() string {
	return fmt.Sprintf("%s executing %.4x at %.3x", e.Code, uint16(e.Instr), e.Addr)
}

// ErrorCode signifies the type of condition that stopped execution.
type ErrorCode byte

const (
	UnknownInstruction ErrorCode = 0x01
	ReturnWithoutCall  ErrorCode = 0x02
)

func (c ErrorCode) String() string {
	switch c {
	case UnknownInstruction:
		return "unknown instruction"
	case ReturnWithoutCall:
		return "return without call"
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}

func short(hi, lo byte) uint16 {
	return uint16(hi)<<8 + uint16(lo)
}

func bit(b bool) byte {
	if b {
		return 1
	}
	return 0
}

package chip8

import "fmt"

// Instr represents a CHIP-8 instruction word.
type Instr uint16

// Op returns the leading nibble, which selects the operation.
func (i Instr) Op() byte { return byte(i >> 12) }

// X returns the second nibble, a register selector.
func (i Instr) X() byte { return byte(i>>8) & 0xf }

// Y returns the third nibble, a register selector.
func (i Instr) Y() byte { return byte(i>>4) & 0xf }

// N returns the lowest nibble, a count or sub-operation.
func (i Instr) N() byte { return byte(i) & 0xf }

// NN returns the low byte, an immediate value or sub-operation.
func (i Instr) NN() byte { return byte(i) }

// NNN returns the low 12 bits, an address.
func (i Instr) NNN() uint16 { return uint16(i) & 0xfff }

// String returns the instruction's mnemonic form, for trace output.
// Words that do not decode are shown as data.
func (i Instr) String() string {
	var (
		x, y = i.X(), i.Y()
		nn   = i.NN()
		nnn  = i.NNN()
	)
	switch i.Op() {
	case 0x0:
		switch i {
		case 0x00e0:
			return "CLS"
		case 0x00ee:
			return "RET"
		}
	case 0x1:
		return fmt.Sprintf("JP %.3x", nnn)
	case 0x2:
		return fmt.Sprintf("CALL %.3x", nnn)
	case 0x3:
		return fmt.Sprintf("SE V%X, %.2x", x, nn)
	case 0x4:
		return fmt.Sprintf("SNE V%X, %.2x", x, nn)
	case 0x5:
		if i.N() == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6:
		return fmt.Sprintf("LD V%X, %.2x", x, nn)
	case 0x7:
		return fmt.Sprintf("ADD V%X, %.2x", x, nn)
	case 0x8:
		if s, ok := aluMnemonics[i.N()]; ok {
			return fmt.Sprintf("%s V%X, V%X", s, x, y)
		}
	case 0x9:
		if i.N() == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xa:
		return fmt.Sprintf("LD I, %.3x", nnn)
	case 0xb:
		return fmt.Sprintf("LD I, V0+%.3x", nnn)
	case 0xc:
		return fmt.Sprintf("RND V%X, %.2x", x, nn)
	case 0xd:
		return fmt.Sprintf("DRW V%X, V%X, %X", x, y, i.N())
	case 0xe:
		switch nn {
		case 0x9e:
			return fmt.Sprintf("SKP V%X", x)
		case 0xa1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xf:
		if s, ok := miscMnemonics[nn]; ok {
			return fmt.Sprintf(s, x)
		}
	}
	return fmt.Sprintf("DW %.4x", uint16(i))
}

var aluMnemonics = map[byte]string{
	0x0: "LD",
	0x1: "OR",
	0x2: "AND",
	0x3: "XOR",
	0x4: "ADD",
	0x5: "SUB",
	0x6: "SHR",
	0x7: "SUBN",
	0xe: "SHL",
}

var miscMnemonics = map[byte]string{
	0x07: "LD V%X, DT",
	0x0a: "LD V%X, K",
	0x15: "LD DT, V%X",
	0x18: "LD ST, V%X",
	0x1e: "ADD I, V%X",
	0x29: "LD F, V%X",
	0x33: "LD B, V%X",
	0x55: "LD [I], V%X",
	0x65: "LD V%X, [I]",
}

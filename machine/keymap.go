package machine

import (
	"unicode"

	"golang.org/x/mobile/event/key"
)

// layout maps the left-hand block of a QWERTY keyboard onto the CHIP-8
// key pad, row by row:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var layout = [16]struct {
	r    rune
	code key.Code
	key  byte
}{
	{'1', key.Code1, 0x1}, {'2', key.Code2, 0x2}, {'3', key.Code3, 0x3}, {'4', key.Code4, 0xc},
	{'q', key.CodeQ, 0x4}, {'w', key.CodeW, 0x5}, {'e', key.CodeE, 0x6}, {'r', key.CodeR, 0xd},
	{'a', key.CodeA, 0x7}, {'s', key.CodeS, 0x8}, {'d', key.CodeD, 0x9}, {'f', key.CodeF, 0xe},
	{'z', key.CodeZ, 0xa}, {'x', key.CodeX, 0x0}, {'c', key.CodeC, 0xb}, {'v', key.CodeV, 0xf},
}

// KeyForRune returns the CHIP-8 key for the keyboard character r.
func KeyForRune(r rune) (byte, bool) {
	r = unicode.ToLower(r)
	for _, l := range layout {
		if l.r == r {
			return l.key, true
		}
	}
	return 0, false
}

func keyForCode(c key.Code) (byte, bool) {
	for _, l := range layout {
		if l.code == c {
			return l.key, true
		}
	}
	return 0, false
}

// Package asm assembles CHIP-8 programs written as hex text: whitespace
// separated 16-bit instruction words, with lines starting with '#' ignored.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Assemble reads hex text from r and returns the program it describes,
// each word stored big-endian.
func Assemble(r io.Reader) ([]byte, error) {
	var (
		prog []byte
		s    = bufio.NewScanner(r)
		line = 0
	)
	for s.Scan() {
		line++
		text := s.Text()
		if strings.HasPrefix(text, "#") {
			continue
		}
		for _, f := range strings.Fields(text) {
			w, err := parseWord(f)
			if err != nil {
				return nil, &Error{Line: line, Word: f, Err: err}
			}
			prog = append(prog, byte(w>>8), byte(w))
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}

func parseWord(s string) (uint16, error) {
	t := s
	if len(t) > 2 && (t[:2] == "0x" || t[:2] == "0X") {
		t = t[2:]
	}
	t = strings.ReplaceAll(t, "_", "")
	v, err := strconv.ParseUint(t, 16, 16)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok {
			return 0, ne.Err
		}
		return 0, err
	}
	return uint16(v), nil
}

// Error describes a word that is not a valid instruction.
type Error struct {
	Line int
	Word string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: invalid instruction %q: %v", e.Line, e.Word, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

package chip8

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Load copies the program read from r into memory at ProgramStart.
// Memory outside the program is left as it was, so loading twice without
// a fresh Machine overlays the second program on the first. If Load
// fails memory is unchanged.
func (m *Machine) Load(r io.Reader) error {
	b, err := io.ReadAll(io.LimitReader(r, MemSize-ProgramStart+1))
	if err != nil {
		return &LoadError{Kind: Unreadable, Err: err}
	}
	if len(b) > MemSize-ProgramStart {
		return &LoadError{Kind: TooLarge}
	}
	copy(m.Mem[ProgramStart:], b)
	return nil
}

// OpenProgram opens the named program file. An error is a *LoadError.
func OpenProgram(name string) (*os.File, error) {
	f, err := os.Open(name)
	if err != nil {
		kind := Unreadable
		if errors.Is(err, fs.ErrNotExist) {
			kind = NotFound
		}
		return nil, &LoadError{Kind: kind, Path: name, Err: err}
	}
	return f, nil
}

// ReadProgram reads the program in the named file.
func ReadProgram(name string) ([]byte, error) {
	f, err := OpenProgram(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, &LoadError{Kind: Unreadable, Path: name, Err: err}
	}
	if len(b) > MemSize-ProgramStart {
		return nil, &LoadError{Kind: TooLarge, Path: name}
	}
	return b, nil
}

// LoadError is returned when a program cannot be loaded.
type LoadError struct {
	Kind LoadErrorKind
	Path string // empty if the program was not read from a file
	Err  error
}

func (e *LoadError) Error() string {
	s := "load"
	if e.Path != "" {
		s += " " + e.Path
	}
	s += ": " + e.Kind.String()
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadErrorKind classifies a LoadError.
type LoadErrorKind byte

const (
	NotFound LoadErrorKind = iota + 1
	Unreadable
	TooLarge
)

func (k LoadErrorKind) String() string {
	switch k {
	case NotFound:
		return "program not found"
	case Unreadable:
		return "program unreadable"
	case TooLarge:
		return fmt.Sprintf("program larger than %d bytes", MemSize-ProgramStart)
	}
	return fmt.Sprintf("unknown (%d)", byte(k))
}

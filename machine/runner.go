// Package machine runs CHIP-8 programs, pacing the interpreter, driving its
// timers, and connecting it to displays, speakers and keyboards.
package machine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/nf/ch8/chip8"
)

const (
	DefaultIPS = 700
	TickRate   = 60

	tickPeriod = time.Second / TickRate
)

// Config controls how a Runner executes programs.
type Config struct {
	IPS        int   // instructions per second
	Debug      bool  // log a trace line for every instruction
	Dev        bool  // keep running after errors, waiting for Swap
	ExitOnSpin bool  // stop when the program jumps to itself
	Seed       int64 // random seed; zero seeds from the clock
	Quirks     chip8.Quirks
}

// Output receives the results of execution. Both methods are called from
// the execution goroutine once per tick, Present only when the display
// changed. Present must not retain f.
type Output interface {
	Present(f *chip8.Frame)
	Tone(on bool)
}

// Frontend is an Output that also owns an event loop, which must run on
// the main goroutine. Run writes key state to keys and returns when the
// user quits or exit is closed.
type Frontend interface {
	Output
	Run(keys *chip8.Keypad, exit <-chan bool) error
}

// Runner executes a CHIP-8 program at a fixed instruction rate.
type Runner struct {
	cfg   Config
	keys  chip8.Keypad
	outs  []Output
	clock clock

	started  atomic.Bool
	swap     chan []byte
	swapDone chan error
	done     chan bool
}

var (
	// ErrStopped is returned by Swap if the Runner is no longer running.
	ErrStopped = errors.New("runner stopped")

	// ErrStarted is returned by Run if the Runner has already run.
	ErrStarted = errors.New("runner already started")
)

func NewRunner(cfg Config, outs ...Output) *Runner {
	if cfg.IPS <= 0 {
		cfg.IPS = DefaultIPS
	}
	return &Runner{
		cfg:      cfg,
		outs:     outs,
		clock:    realClock{},
		swap:     make(chan []byte),
		swapDone: make(chan error),
		done:     make(chan bool),
	}
}

// Keys returns the key pad read by the running program.
func (r *Runner) Keys() *chip8.Keypad { return &r.keys }

// Swap replaces the running program with prog, starting it afresh.
// It may only be called in dev mode.
func (r *Runner) Swap(prog []byte) error {
	if !r.cfg.Dev {
		panic("Swap called while not running in dev mode")
	}
	select {
	case r.swap <- prog:
	case <-r.done:
		return ErrStopped
	}
	return <-r.swapDone
}

// Run executes prog until it fails, until it spins (if configured), until
// the front end quits, or until ctx is done. If fe is non-nil it runs on
// the calling goroutine and receives output alongside the Runner's outputs.
// Run returns the error that stopped execution, or nil.
// A Runner runs once; later calls to Run return ErrStarted.
func (r *Runner) Run(ctx context.Context, prog []byte, fe Frontend) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	m, err := r.newMachine(prog)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outs := r.outs[:len(r.outs):len(r.outs)]
	if fe != nil {
		outs = append(outs, fe)
	}
	s := r.newSession(ctx, m, outs)

	var execErr error
	go func() {
		defer close(r.done)
		execErr = s.run()
	}()

	if fe != nil {
		// The front end drives its event loop until the program
		// stops or the user quits.
		err := fe.Run(&r.keys, r.done)
		cancel()
		<-r.done
		if err != nil {
			return fmt.Errorf("frontend: %w", err)
		}
	} else {
		<-r.done
	}
	return execErr
}

func (r *Runner) newMachine(prog []byte) (*chip8.Machine, error) {
	m := chip8.NewMachine(&r.keys, r.cfg.Quirks)
	if r.cfg.Seed != 0 {
		rnd := rand.New(rand.NewSource(r.cfg.Seed))
		m.Rand = func() byte { return byte(rnd.Intn(0x100)) }
	}
	if err := m.Load(bytes.NewReader(prog)); err != nil {
		return nil, err
	}
	return m, nil
}

// session holds the state of one execution loop.
type session struct {
	*Runner
	ctx   context.Context
	m     *chip8.Machine
	outs  []Output
	trace backlog

	period   time.Duration
	next     time.Time // deadline for the current instruction
	lastTick time.Time
}

func (r *Runner) newSession(ctx context.Context, m *chip8.Machine, outs []Output) *session {
	return &session{
		Runner: r,
		ctx:    ctx,
		m:      m,
		outs:   outs,
		period: time.Second / time.Duration(r.cfg.IPS),
	}
}

func (s *session) run() error {
	logf := s.trace.LazyPrintf
	if s.cfg.Debug {
		logf = log.Printf
	}
	s.resetClock()
	for s.ctx.Err() == nil {
		if s.m.WaitingForKey() {
			s.waitKey()
			continue
		}
		if err := s.m.Exec(logf); err != nil {
			log.Printf("chip8: %v", err)
			if !s.cfg.Debug {
				s.trace.Emit(log.Printf)
			}
			if !s.cfg.Dev {
				return err
			}
			s.idle()
			continue
		}
		if s.cfg.ExitOnSpin && s.m.Spinning() && s.m.Sound == 0 {
			s.present()
			return nil
		}
		s.pace()

		select {
		case prog := <-s.swap:
			s.swapDone <- s.load(prog)
		default:
		}
	}
	return nil
}

// pace waits out the remainder of the instruction's time slot and runs
// any ticks that fell due.
func (s *session) pace() {
	s.next = s.next.Add(s.period)
	now := s.clock.Now()
	if d := s.next.Sub(now); d > 0 {
		s.clock.Sleep(d)
		now = s.clock.Now()
	} else if -d > tickPeriod {
		// Too far behind to catch up; drop the missed slots.
		s.next = now
	}
	for now.Sub(s.lastTick) >= tickPeriod {
		s.lastTick = s.lastTick.Add(tickPeriod)
		s.tick()
	}
}

func (s *session) resetClock() {
	s.next = s.clock.Now()
	s.lastTick = s.next
}

func (s *session) tick() {
	tone := s.m.Tick()
	for _, o := range s.outs {
		o.Tone(tone)
	}
	s.present()
}

// present hands the display to the outputs if it changed.
func (s *session) present() {
	if !s.m.Display.Dirty() {
		return
	}
	f := s.m.Display.Frame()
	for _, o := range s.outs {
		o.Present(&f)
	}
	s.m.Display.MarkClean()
}

// waitKey blocks until a key is pressed and passes it to the machine,
// ticking the timers meanwhile.
func (s *session) waitKey() {
	p := s.keys.NextPress()
	s.present()
	for {
		select {
		case <-p.Done():
			s.m.KeyPressed(p.Key())
			s.resetClock()
			return
		case <-s.clock.After(tickPeriod):
			s.tick()
		case prog := <-s.swap:
			err := s.load(prog)
			s.swapDone <- err
			if err == nil {
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// idle blocks until a program is swapped in successfully.
func (s *session) idle() {
	for {
		select {
		case prog := <-s.swap:
			err := s.load(prog)
			s.swapDone <- err
			if err == nil {
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// load replaces the session's machine with a new one running prog.
func (s *session) load(prog []byte) error {
	m, err := s.newMachine(prog)
	if err != nil {
		log.Printf("chip8: %v", err)
		return err
	}
	s.m = m
	s.trace.Reset()
	s.resetClock()
	// Show the new program's empty display.
	s.m.Display.Clear()
	s.present()
	return nil
}

// clock abstracts time so that tests can run the loop deterministically.
type clock interface {
	Now() time.Time
	Sleep(time.Duration)
	After(time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) Sleep(d time.Duration)                  { time.Sleep(d) }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

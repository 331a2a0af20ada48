// Command ch8 runs CHIP-8 programs.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"

	"github.com/nf/ch8/asm"
	"github.com/nf/ch8/chip8"
	"github.com/nf/ch8/machine"
)

func main() {
	log.SetPrefix("ch8: ")
	log.SetFlags(0)

	var (
		cliFlag   = flag.Bool("cli", false, "run without a window or audio, printing the final display")
		termFlag  = flag.Bool("term", false, "show the display in the terminal")
		devFlag   = flag.Bool("dev", false, "enable developer mode (reload the program when it changes)")
		debugFlag = flag.Bool("debug", false, "log every instruction executed")
		ipsFlag   = flag.Int("ips", machine.DefaultIPS, "execute `n` instructions per second")
		seedFlag  = flag.Int64("seed", 0, "random number `seed` (0 seeds from the clock)")
		scaleFlag = flag.Int("scale", 10, "draw each display pixel as a `n`×n square")
		wavFlag   = flag.String("wav", "", "record the tone to WAV `file`")
		spinFlag  = flag.Bool("exit_on_loop", false, "exit when the program jumps to itself (implied by -cli)")

		shiftFlag  = flag.Bool("quirk_shift", false, "8XY6 and 8XYE shift VY into VX")
		jumpVXFlag = flag.Bool("quirk_jump_vx", false, "BNNN offsets by VX instead of V0")
		jumpPCFlag = flag.Bool("quirk_jump_pc", false, "BNNN jumps instead of setting I")
		loadIFlag  = flag.Bool("quirk_load_i", false, "FX55 and FX65 advance I")
		wrapFlag   = flag.Bool("quirk_wrap", false, "sprites wrap at the display edges")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <program.ch8 | program.hex>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}
	if *ipsFlag <= 0 {
		log.Fatalf("-ips must be positive, got %d", *ipsFlag)
	}

	cfg := machine.Config{
		IPS:        *ipsFlag,
		Debug:      *debugFlag,
		Dev:        *devFlag,
		ExitOnSpin: *spinFlag || *cliFlag,
		Seed:       *seedFlag,
		Quirks: chip8.Quirks{
			ShiftVY:     *shiftFlag,
			JumpVX:      *jumpVXFlag,
			JumpPC:      *jumpPCFlag,
			IncrementI:  *loadIFlag,
			WrapSprites: *wrapFlag,
		},
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err := run(flag.Arg(0), cfg, options{
		cli:   *cliFlag,
		term:  *termFlag,
		scale: *scaleFlag,
		wav:   *wavFlag,
	})

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

type options struct {
	cli, term bool
	scale     int
	wav       string
}

func run(progFile string, cfg machine.Config, opt options) error {
	prog, err := readProgram(progFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var outs []machine.Output
	if !opt.cli {
		b, err := machine.NewBeeper()
		if err != nil {
			log.Printf("audio: %v", err)
		} else {
			defer b.Close()
			outs = append(outs, b)
		}
	}
	if opt.wav != "" {
		f, err := os.Create(opt.wav)
		if err != nil {
			return err
		}
		defer f.Close()
		wr := machine.NewWAVRecorder(f)
		defer func() {
			if err := wr.Close(); err != nil {
				log.Printf("wav: %v", err)
			}
		}()
		outs = append(outs, wr)
	}
	var rec *machine.Recorder
	if opt.cli {
		rec = new(machine.Recorder)
		outs = append(outs, rec)
	}

	var fe machine.Frontend
	switch {
	case opt.cli:
		// Headless.
	case opt.term:
		fe = machine.NewTerm()
	default:
		fe = machine.NewGUI(opt.scale)
	}

	r := machine.NewRunner(cfg, outs...)
	if cfg.Dev {
		w, err := watch(progFile, r)
		if err != nil {
			return err
		}
		defer w.Close()
	}
	err = r.Run(ctx, prog, fe)

	if rec != nil {
		f, n := rec.Last()
		if n > 0 {
			fmt.Print(f.String())
		}
	}
	return err
}

// readProgram reads the named program, assembling it first if it is a
// .hex source file.
func readProgram(name string) ([]byte, error) {
	if filepath.Ext(name) != ".hex" {
		return chip8.ReadProgram(name)
	}
	f, err := chip8.OpenProgram(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	prog, err := asm.Assemble(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return prog, nil
}

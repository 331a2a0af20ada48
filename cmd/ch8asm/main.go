// Command ch8asm assembles a hex-text CHIP-8 program into a binary ROM.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nf/ch8/asm"
)

func main() {
	log.SetPrefix("ch8asm: ")
	log.SetFlags(0)

	outFlag := flag.String("o", "out.ch8", "write the assembled program to `file`")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-o out.ch8] <program.hex>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	prog, err := asm.Assemble(f)
	f.Close()
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
	if err := os.WriteFile(*outFlag, prog, 0644); err != nil {
		log.Fatal(err)
	}
}

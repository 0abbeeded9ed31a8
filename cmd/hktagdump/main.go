// Command hktagdump parses a tagfile and prints a summary of its root node
// and any animations reachable from it.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/kungfusheep/hktagfile"
	"github.com/kungfusheep/hktagfile/animation"
)

func main() {
	var (
		path    = flag.String("in", "", "path to a tagfile to parse (required)")
		verbose = flag.Bool("v", false, "log parser diagnostics")
	)
	flag.Parse()

	if *path == "" {
		log.Fatalf("missing required -in flag")
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("reading %s: %v", *path, err)
	}

	opts := tagfile.DefaultOptions
	if *verbose {
		opts.Logger = log.New(os.Stderr, "hktagdump: ", log.LstdFlags)
	} else {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	root, err := tagfile.ParseWithOptions(data, opts)
	if err != nil {
		log.Fatalf("parsing %s: %v", *path, err)
	}

	fmt.Printf("root: %s (version %d)\n", root.Name(), root.Version())

	animations, err := animation.RootAnimations(*root)
	if err != nil {
		fmt.Printf("no animations: %v\n", err)
		return
	}

	for i, a := range animations {
		fmt.Printf("animation %d: duration=%.4f tracks=%d frames=%d\n",
			i, a.Duration(), a.NumTracks(), len(a.FrameTimes()))
	}
}

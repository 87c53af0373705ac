// Command tapinfo renders the impulse response of the effect chain for a set
// of control values and prints the derived stage parameters and tail metrics.
//
// Usage:
//
//	tapinfo [flags] [name=value ...]
//
// Parameter names and their aliases (see -list) are matched ignoring case
// and punctuation, so dry-wet, Dry/Wet and drywet are the same control.
//
// Examples:
//
//	tapinfo taps=2 delay-time=300 diffuser=0.5
//	tapinfo -rate 44100 -seconds 6 feedback=0.8 tap-1-feedback=1 taps=1
//	tapinfo -spectrum diffuser=1 dry/wet=1
//	tapinfo -wav ir.wav taps=3 feedback=0.5 tap-2-feedback=1
//	tapinfo -list
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/tapdancer/dsp/core"
	"github.com/cwbudde/tapdancer/dsp/effectchain"
	"github.com/cwbudde/tapdancer/internal/wavio"
)

func main() {
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	block := flag.Int("block", 512, "processing block size in samples")
	seconds := flag.Float64("seconds", 4, "length of the rendered response in seconds")
	list := flag.Bool("list", false, "list parameters with range and default")
	showSpectrum := flag.Bool("spectrum", false, "print the magnitude response at octave centres")
	wavPath := flag.String("wav", "", "also write the rendered response to this WAV file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tapinfo [flags] [name=value ...]\n\n")
		fmt.Fprintf(os.Stderr, "Renders the chain's impulse response and prints derived parameters\n")
		fmt.Fprintf(os.Stderr, "and tail metrics.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tapinfo taps=2 delay-time=300 diffuser=0.5\n")
		fmt.Fprintf(os.Stderr, "  tapinfo -spectrum diffuser=1 dry/wet=1\n")
		fmt.Fprintf(os.Stderr, "  tapinfo -wav ir.wav taps=3 feedback=0.5 tap-2-feedback=1\n")
		fmt.Fprintf(os.Stderr, "  tapinfo -list\n")
	}
	flag.Parse()

	if *list {
		printList()
		return
	}

	params := effectchain.NewParams()
	for _, arg := range flag.Args() {
		if err := params.Apply(arg); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
	}

	spec := core.NewProcessSpec(core.WithSampleRate(*rate), core.WithBlockSize(*block))
	if err := spec.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	length := int(*seconds * spec.SampleRate)
	if length <= 0 {
		fmt.Fprintf(os.Stderr, "error: -seconds must be > 0\n")
		os.Exit(2)
	}

	settings := params.Snapshot()
	if err := printDerived(spec, settings); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	resp, err := render(spec, params, length)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	printTail(spec.SampleRate, resp)

	if *wavPath != "" {
		if err := wavio.Write(*wavPath, int(spec.SampleRate), resp); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *wavPath)
	}

	if *showSpectrum {
		fmt.Println()
		if err := printSpectrum(spec.SampleRate, resp[0]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// Command tapdemo plays a test signal through the effect chain in real time.
//
// Usage:
//
//	tapdemo [flags] [name=value ...]
//
// On a terminal, single keys nudge parameters while audio plays. Otherwise
// name=value lines are read from stdin.
//
// Examples:
//
//	tapdemo taps=3 delay-time=330 diffuser=0.4
//	tapdemo -source tone -seconds 10 modulation=0.8
//	tapdemo -input guitar.wav taps=2 feedback=0.4 diffuser=0.3
//	echo "diffuser=1" | tapdemo -seconds 5
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/tapdancer/dsp/core"
	"github.com/cwbudde/tapdancer/dsp/effectchain"
	"github.com/cwbudde/tapdancer/internal/wavio"
)

func main() {
	rate := flag.Int("rate", 48000, "output sample rate in Hz")
	block := flag.Int("block", 512, "processing block size in samples")
	sourceKind := flag.String("source", "pluck", "test signal: pluck, click or tone")
	input := flag.String("input", "", "loop this WAV file instead of a test signal; its sample rate overrides -rate")
	seconds := flag.Float64("seconds", 0, "stop after this many seconds (0 plays until quit)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tapdemo [flags] [name=value ...]\n\n")
		fmt.Fprintf(os.Stderr, "Plays a test signal through the effect chain.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		printHelp(os.Stderr)
	}
	flag.Parse()

	src, srcRate, err := openSource(*input, *sourceKind, *rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(srcRate, *block, src, *seconds, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openSource returns the input source and the rate to run at.
func openSource(path, kind string, rate int) (source, int, error) {
	if path == "" {
		src, err := newSource(kind, float64(rate))
		return src, rate, err
	}

	channels, fileRate, err := wavio.Read(path)
	if err != nil {
		return nil, 0, err
	}

	src, err := newLoop(channels)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	return src, fileRate, nil
}

func run(rate, block int, src source, seconds float64, assignments []string) error {
	spec := core.ProcessSpec{SampleRate: float64(rate), Channels: 2, MaxBlockSize: block}

	chain := effectchain.New()
	for _, a := range assignments {
		if err := chain.Params().Apply(a); err != nil {
			return err
		}
	}

	if err := chain.Prepare(spec); err != nil {
		return err
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: spec.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(float64(block) / spec.SampleRate * 2 * float64(time.Second)),
	})
	if err != nil {
		return fmt.Errorf("tapdemo: audio: %w", err)
	}
	<-ready

	eng := newEngine(chain, src)
	player := ctx.NewPlayer(eng)
	player.Play()
	defer player.Close()

	quit := make(chan struct{})
	interactive := isTerminal(os.Stdin)

	if interactive {
		printHelp(os.Stderr)

		if err := runKeys(chain.Params(), quit); err != nil {
			return err
		}
	} else {
		runLines(chain.Params(), os.Stdin, quit)
	}

	var deadline <-chan time.Time
	if seconds > 0 {
		deadline = time.After(time.Duration(seconds * float64(time.Second)))
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	showStatus := interactive || isTerminal(os.Stderr)

	for {
		select {
		case <-quit:
			fmt.Fprintln(os.Stderr)
			return nil
		case <-deadline:
			fmt.Fprintln(os.Stderr)
			return nil
		case <-ticker.C:
			if showStatus {
				fmt.Fprintf(os.Stderr, "\r%s\x1b[K", status(chain.Params(), eng.Peak()))
			}
		}
	}
}

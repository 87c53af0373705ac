package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/cwbudde/tapdancer/dsp/effectchain"
)

// binding maps a lower/upper case key pair to a parameter step.
type binding struct {
	down, up byte
	id       effectchain.ParamID
	step     float64
}

var bindings = []binding{
	{'s', 'S', effectchain.Saturate, 0.1},
	{'o', 'O', effectchain.Tone, 1000},
	{'t', 'T', effectchain.Taps, 0.25},
	{'f', 'F', effectchain.Feedback, 0.05},
	{'e', 'E', effectchain.DelayTime, 25},
	{'r', 'R', effectchain.DelaySpread, 25},
	{'i', 'I', effectchain.Width, 0.1},
	{'d', 'D', effectchain.Diffuser, 0.05},
	{'m', 'M', effectchain.Modulation, 0.05},
	{'a', 'A', effectchain.Damping, 1000},
	{'l', 'L', effectchain.LowCut, 20},
	{'w', 'W', effectchain.DryWet, 0.05},
	{'g', 'G', effectchain.OutputGain, 0.1},
}

// handleKey applies key to params. It reports whether the key was bound
// and whether it asks to quit.
func handleKey(params *effectchain.Params, key byte) (handled, quit bool) {
	switch key {
	case 'q', 'Q', 3: // 3 is Ctrl-C in raw mode
		return true, true
	case '1', '2', '3':
		id := effectchain.Tap1Feedback + effectchain.ParamID(key-'1')
		_ = params.Set(id, 1-params.Get(id))

		return true, false
	}

	for _, b := range bindings {
		switch key {
		case b.down:
			_ = params.Set(b.id, params.Get(b.id)-b.step)
			return true, false
		case b.up:
			_ = params.Set(b.id, params.Get(b.id)+b.step)
			return true, false
		}
	}

	return false, false
}

func status(params *effectchain.Params, peak float64) string {
	s := params.Snapshot()

	return fmt.Sprintf("taps %.2f  time %.0fms  spread %.0fms  fb %.2f %v  diff %.2f  mod %.2f  mix %.2f  peak %.2f",
		s.Taps, s.DelayTime, s.DelaySpread, s.Feedback, s.TapFeedback, s.Diffuser, s.Modulation, s.DryWet, peak)
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, "keys (lower = down, upper = up):\n")

	for _, b := range bindings {
		fmt.Fprintf(w, "  %c/%c  %s\n", b.down, b.up, b.id)
	}

	fmt.Fprintf(w, "  1-3  toggle tap feedback\n  q    quit\n")
}

// runKeys reads single keys from a raw terminal until quit or done.
func runKeys(params *effectchain.Params, quit chan<- struct{}) error {
	fd := int(os.Stdin.Fd())

	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("tapdemo: raw mode: %w", err)
	}

	go func() {
		defer func() { _ = term.Restore(fd, old) }()

		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(quit)
				return
			}

			if n == 0 {
				continue
			}

			if _, q := handleKey(params, buf[0]); q {
				close(quit)
				return
			}
		}
	}()

	return nil
}

// runLines reads name=value assignments, one per line, until EOF or "quit".
func runLines(params *effectchain.Params, r io.Reader, quit chan<- struct{}) {
	go func() {
		defer close(quit)

		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			switch {
			case line == "":
				continue
			case line == "quit" || line == "q":
				return
			}

			if err := params.Apply(line); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		}
	}()
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

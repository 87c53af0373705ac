package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/tapdancer/dsp/core"
	"github.com/cwbudde/tapdancer/dsp/effectchain"
	"github.com/cwbudde/tapdancer/dsp/effects/diffusion"
	"github.com/cwbudde/tapdancer/dsp/effects/multitap"
	"github.com/cwbudde/tapdancer/dsp/spectrum"
	"github.com/cwbudde/tapdancer/measure/tail"
)

const spectrumFFTSize = 1 << 16

var octaveCentres = []float64{31.5, 63, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

func printList() {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\tAlias\tMin\tMax\tDefault\tUnit\n")
	fmt.Fprintf(tw, "----\t-----\t---\t---\t-------\t----\n")

	for _, info := range effectchain.Infos() {
		unit := info.Unit
		if info.Toggle {
			unit = "on/off"
		}

		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\t%s\n", info.Name, info.Alias, info.Min, info.Max, info.Default, unit)
	}

	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printDerived(spec core.ProcessSpec, s effectchain.Settings) error {
	taps := multitap.NewDelay(multitap.DefaultTaps)
	if err := taps.Prepare(spec); err != nil {
		return err
	}

	taps.SetTaps(s.Taps)
	taps.SetTime(s.DelayTime)
	taps.SetSpread(s.DelaySpread)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Stage\tQuantity\tValue\n")
	fmt.Fprintf(tw, "-----\t--------\t-----\n")

	gains := taps.TapGains()
	for i, g := range gains {
		d := taps.TapDelay(i)
		fb := s.TapFeedback[i]
		fmt.Fprintf(tw, "tap %d\tgain / delay / feedback\t%.3f / %.1f ms (%.0f smp) / %t\n",
			i+1, g, core.SamplesToMs(d, spec.SampleRate), d, fb)
	}

	rate, depth := s.TapModulation()
	fmt.Fprintf(tw, "taps\tmodulation\t%.2f Hz, %.1f smp\n", rate, depth)
	fmt.Fprintf(tw, "taps\tfeedback / damping\t%.2f / %.0f Hz\n", s.Feedback, s.Damping)

	if s.Diffuser > 0 {
		d := diffusion.New()
		dRate, dDepth := s.DiffuserModulation()
		d.UpdateParams(s.DiffuserDecay(), s.Damping, dRate, dDepth)
		fmt.Fprintf(tw, "diffuser\tdecay / loop gain\t%.0f smp / %.3f\n", d.Decay(), d.Feedback())
		fmt.Fprintf(tw, "diffuser\twet\t%.3f\n", s.DiffuserWet())
		fmt.Fprintf(tw, "diffuser\tmodulation\t%.2f Hz, +/-%.1f smp\n", dRate, dDepth)
	} else {
		fmt.Fprintf(tw, "diffuser\t\tbypassed\n")
	}

	fmt.Fprintf(tw, "output\tlow cut / dry-wet / gain\t%.0f Hz / %.2f / %.2f\n", s.LowCut, s.DryWet, s.OutputGain)

	return tw.Flush()
}

func render(spec core.ProcessSpec, params *effectchain.Params, length int) ([][]float64, error) {
	chain := effectchain.New(effectchain.WithParams(params))
	if err := chain.Prepare(spec); err != nil {
		return nil, err
	}

	return tail.Capture(chain, spec.Channels, length, spec.MaxBlockSize), nil
}

func printTail(sampleRate float64, resp [][]float64) {
	analyzer := tail.NewAnalyzer(sampleRate)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Channel\tOnset [ms]\tPeak\tEnergy\tEDT [s]\tRT60 [s]\tTail [ms]\tCentre [s]\n")
	fmt.Fprintf(tw, "-------\t----------\t----\t------\t-------\t--------\t---------\t----------\n")

	for ch, x := range resp {
		m, err := analyzer.Analyze(x)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "warning: channel %d: %v\n", ch, err)
			continue
		}

		fmt.Fprintf(tw, "%d\t%.2f\t%.4f\t%.4f\t%.3f\t%.3f\t%.1f\t%.3f\n",
			ch, m.OnsetMs, m.Peak, m.Energy, m.EDT, m.RT60, m.TailMs, m.CenterTime)
	}

	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printSpectrum(sampleRate float64, x []float64) error {
	bins, err := spectrum.Transform(x, spectrumFFTSize)
	if err != nil {
		return err
	}

	db := spectrum.MagnitudeDB(bins, -120)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Frequency [Hz]\tMagnitude [dB]\n")
	fmt.Fprintf(tw, "--------------\t--------------\n")

	for _, f := range octaveCentres {
		if f >= sampleRate/2 {
			break
		}

		k := int(math.Round(f * spectrumFFTSize / sampleRate))
		fmt.Fprintf(tw, "%g\t%.2f\n", spectrum.BinFrequency(k, spectrumFFTSize, sampleRate), db[k])
	}

	return tw.Flush()
}

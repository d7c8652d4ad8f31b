// Command compinfo prints gain-reduction and distortion properties of
// a dynamics compressor configuration, measured on a sine test tone.
//
// Usage:
//
//	compinfo [flags]
//
// Examples:
//
//	compinfo -threshold -20 -ratio 8
//	compinfo -freq 997 -amp -3 -attack 1ms -lookahead 5ms
//	compinfo -auto knee,attack,release,postgain
package main

import (
	"flag"
	"fmt"
	"math"
	"math/cmplx"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-rt/dsp/core"
	"github.com/cwbudde/algo-rt/dsp/dynamics"
	"github.com/cwbudde/algo-rt/dsp/signal"
)

const (
	blockLen = dynamics.BlockSize
	fftSize  = 8192
)

func main() {
	sampleRate := flag.Float64("samplerate", 48000, "sample rate in Hz")
	freq := flag.Float64("freq", 1000, "test tone frequency in Hz")
	ampDB := flag.Float64("amp", 0, "test tone amplitude in dBFS")
	threshold := flag.Float64("threshold", -20, "compression threshold in dB")
	ratio := flag.Float64("ratio", 4, "compression ratio (1 disables reduction)")
	knee := flag.Float64("knee", 6, "soft-knee width in dB")
	attack := flag.Duration("attack", 10*time.Millisecond, "attack time")
	release := flag.Duration("release", 100*time.Millisecond, "release time")
	lookAhead := flag.Duration("lookahead", 0, "look-ahead delay")
	hold := flag.Duration("hold", 0, "peak-hold time (needs look-ahead)")
	autoFlags := flag.String("auto", "", "comma-separated automation: knee,attack,release,postgain,declip")
	harmonics := flag.Int("harmonics", 5, "number of harmonics to report")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: compinfo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a sine tone through a dynamics compressor and prints the\n")
		fmt.Fprintf(os.Stderr, "steady-state gain reduction and harmonic distortion it causes.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  compinfo -threshold -20 -ratio 8\n")
		fmt.Fprintf(os.Stderr, "  compinfo -freq 997 -amp -3 -attack 1ms -lookahead 5ms\n")
		fmt.Fprintf(os.Stderr, "  compinfo -auto knee,attack,release,postgain\n")
		os.Exit(2)
	}
	flag.Parse()

	auto, err := parseAutoFlags(*autoFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	comp, err := dynamics.NewCompressor(1, *sampleRate,
		dynamics.WithThreshold(*threshold),
		dynamics.WithRatio(*ratio),
		dynamics.WithKnee(*knee),
		dynamics.WithAttack(attack.Seconds()),
		dynamics.WithRelease(release.Seconds()),
		dynamics.WithLookAhead(lookAhead.Seconds()),
		dynamics.WithHold(hold.Seconds()),
		dynamics.WithAutomation(auto))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	amp := core.DBToLinear(*ampDB)

	// Run one second to let the ballistics settle, then capture a
	// steady-state window for the spectrum.
	settleBlocks := int(math.Ceil(*sampleRate/blockLen)) + 1
	captureBlocks := (fftSize + blockLen - 1) / blockLen
	total := (settleBlocks + captureBlocks) * blockLen

	input := signal.Sine(*freq, amp, *sampleRate, total)
	output := append([]float64{}, input...)

	for b := 0; b*blockLen < total; b++ {
		comp.Process(blockLen, [][]float64{output[b*blockLen : (b+1)*blockLen]})
	}

	steadyIn := input[settleBlocks*blockLen:]
	steadyOut := output[settleBlocks*blockLen:]

	inPeak := peak(steadyIn)
	outPeak := peak(steadyOut)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Sample rate\t%.0f Hz\n", comp.SampleRate())
	fmt.Fprintf(tw, "Look-ahead\t%d samples\n", comp.LookAhead())
	fmt.Fprintf(tw, "Hold\t%d samples\n", comp.Hold())
	fmt.Fprintf(tw, "Input peak\t%+.2f dBFS\n", core.LinearToDB(inPeak))
	fmt.Fprintf(tw, "Output peak\t%+.2f dBFS\n", core.LinearToDB(outPeak))
	fmt.Fprintf(tw, "Gain reduction\t%.2f dB\n", core.LinearToDB(inPeak)-core.LinearToDB(outPeak))
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
		os.Exit(1)
	}

	if err := printHarmonics(steadyOut[:fftSize], *freq, *sampleRate, *harmonics); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseAutoFlags(s string) (dynamics.AutoFlag, error) {
	var flags dynamics.AutoFlag

	if s == "" {
		return 0, nil
	}

	for _, name := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "knee":
			flags |= dynamics.AutoKnee
		case "attack":
			flags |= dynamics.AutoAttack
		case "release":
			flags |= dynamics.AutoRelease
		case "postgain":
			flags |= dynamics.AutoPostGain
		case "declip":
			flags |= dynamics.AutoDeclip
		default:
			return 0, fmt.Errorf("unknown automation flag %q", name)
		}
	}

	return flags, nil
}

func peak(s []float64) float64 {
	p := 0.0
	for _, v := range s {
		if a := math.Abs(v); a > p {
			p = a
		}
	}

	return p
}

// printHarmonics reports the level of the fundamental and its first
// harmonics relative to full scale. Gain modulation at the tone period
// shows up here as harmonic distortion.
func printHarmonics(samples []float64, freq, sampleRate float64, count int) error {
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return fmt.Errorf("failed to create FFT plan: %w", err)
	}

	in := make([]complex128, fftSize)
	for i, s := range samples {
		// Hann window keeps leakage from swamping the harmonics.
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize))
		in[i] = complex(s*w, 0)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return fmt.Errorf("forward FFT failed: %w", err)
	}

	// Coherent gain of the Hann window is 0.5.
	scale := 2.0 / (0.5 * fftSize)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\nHarmonic\tFrequency\tLevel\n")
	fmt.Fprintf(tw, "--------\t---------\t-----\n")

	for h := 1; h <= count; h++ {
		hf := freq * float64(h)
		if hf >= sampleRate/2 {
			break
		}

		bin := int(math.Round(hf * fftSize / sampleRate))

		// Scan neighboring bins so windowing spread does not hide the
		// true peak.
		level := 0.0
		for b := bin - 2; b <= bin+2; b++ {
			if b < 0 || b >= fftSize/2 {
				continue
			}

			if m := cmplx.Abs(out[b]); m > level {
				level = m
			}
		}

		fmt.Fprintf(tw, "%d\t%.0f Hz\t%+.2f dBFS\n", h, hf, core.LinearToDB(level*scale))
	}

	return tw.Flush()
}

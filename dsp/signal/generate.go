// Package signal generates deterministic test signals.
package signal

import (
	"math"
	"math/rand/v2"
)

// Sine returns samples of a sine wave at freqHz with the given peak
// amplitude, sampled at sampleRate.
func Sine(freqHz, amplitude, sampleRate float64, samples int) []float64 {
	if samples < 0 {
		samples = 0
	}

	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// ImpulseTrain returns a signal that is zero everywhere except for a
// single-sample impulse of the given amplitude every period samples,
// starting at sample 0. A period of <= 0 yields silence.
func ImpulseTrain(period int, amplitude float64, samples int) []float64 {
	if samples < 0 {
		samples = 0
	}

	out := make([]float64, samples)
	if period <= 0 {
		return out
	}

	for i := 0; i < samples; i += period {
		out[i] = amplitude
	}

	return out
}

// WhiteNoise returns uniform white noise in [-amplitude, amplitude],
// reproducible for a given seed.
func WhiteNoise(amplitude float64, seed uint64, samples int) []float64 {
	if samples < 0 {
		samples = 0
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	out := make([]float64, samples)
	for i := range out {
		out[i] = amplitude * (2*rng.Float64() - 1)
	}

	return out
}

package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-rt/dsp/core"
)

const (
	// BlockSize is the fixed block capacity in samples. Process calls
	// handle at most this many samples per invocation.
	BlockSize = 1024

	blockMask = BlockSize - 1

	// logDBScale converts decibels to the natural-log domain the
	// gain computer operates in: ln(10)/20.
	logDBScale = math.Ln10 / 20.0

	// ampEpsilon keeps logarithm arguments away from zero.
	ampEpsilon = 0.000001

	crestTimeSec = 0.200
	adaptTimeSec = 2.0
)

// Compressor is a feed-forward dynamics processor for linked
// multichannel blocks. The control signal is the per-sample maximum
// absolute value across all channels, detected in the log domain with
// an optional sliding peak hold, smoothed by a two-stage decoupled
// peak detector, and applied as a shared gain envelope so channels
// compress coherently instead of panning under gain changes.
//
// All configuration is fixed at construction; per-block state (gain
// ballistics, crest estimates, hold tracker, delay lines) persists
// across Process calls. The steady-state Process path allocates
// nothing and has no failure modes: all arithmetic is defined for all
// inputs via clamping. A Compressor is not safe for concurrent use.
type Compressor struct {
	numChans   int
	sampleRate float64

	auto struct {
		knee     bool
		attack   bool
		release  bool
		postGain bool
		declip   bool
	}

	lookAhead  int // samples
	holdLength int // samples, 0 when no tracker

	preGain   float64 // linear
	postGain  float64 // log domain
	threshold float64 // log domain
	slope     float64
	knee      float64 // log domain
	attack    float64 // samples
	release   float64 // samples

	crestCoeff   float64
	gainEstimate float64
	adaptCoeff   float64

	hold  *slidingHold
	delay [][]float64

	// Side-chain scratch: gains for the current block occupy the
	// first BlockSize entries, the look-ahead control tail rides
	// behind them and is carried to the front after each block.
	sideChain   [2 * BlockSize]float64
	crestFactor [BlockSize]float64

	lastPeakSq  float64
	lastRmsSq   float64
	lastRelease float64
	lastAttack  float64
	lastGainDev float64
}

// NewCompressor creates a compressor for numChans channels at the
// given sample rate. Defaults: threshold -20 dB, ratio 4:1, knee
// 6 dB, attack 10 ms, release 100 ms, no automation, no look-ahead.
//
// Look-ahead and hold times are converted to samples and clamped into
// [0, BlockSize-1]. The hold tracker is only allocated when
// look-ahead is active and the hold spans more than one sample; dB
// parameters are converted to the log domain; attack and release are
// floored to one sample. When AutoKnee is set the slope is forced to
// full limiting, since knee automation models the device as a limiter
// with an internally varying effective ratio.
func NewCompressor(numChans int, sampleRate float64, opts ...Option) (*Compressor, error) {
	if numChans <= 0 {
		return nil, fmt.Errorf("dynamics: channel count must be > 0: %d", numChans)
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("dynamics: sample rate must be positive and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	lookAhead := int(core.Clamp(math.Round(cfg.lookAheadSec*sampleRate), 0, BlockSize-1))
	hold := int(core.Clamp(math.Round(cfg.holdSec*sampleRate), 0, BlockSize-1))

	c := &Compressor{
		numChans:   numChans,
		sampleRate: sampleRate,
		lookAhead:  lookAhead,
		preGain:    core.DBToLinear(cfg.preGainDB),
		postGain:   logDBScale * cfg.postGainDB,
		threshold:  logDBScale * cfg.thresholdDB,
		slope:      1.0/math.Max(1.0, cfg.ratio) - 1.0,
		knee:       math.Max(0, logDBScale*cfg.kneeDB),
		attack:     math.Max(1, cfg.attackSec*sampleRate),
		release:    math.Max(1, cfg.releaseSec*sampleRate),
	}

	c.auto.knee = cfg.autoFlags&AutoKnee != 0
	c.auto.attack = cfg.autoFlags&AutoAttack != 0
	c.auto.release = cfg.autoFlags&AutoRelease != 0
	c.auto.postGain = cfg.autoFlags&AutoPostGain != 0
	c.auto.declip = c.auto.postGain && cfg.autoFlags&AutoDeclip != 0

	// Knee automation varies the effective ratio itself, so the
	// static slope becomes full limiting.
	if c.auto.knee {
		c.slope = -1.0
	}

	if lookAhead > 0 {
		// A one-sample hold would only ever return the sample just
		// pushed; the tracker requires a longer window.
		if hold > 1 {
			c.hold = newSlidingHold(hold)
			c.holdLength = hold
		}

		c.delay = make([][]float64, numChans)
		for i := range c.delay {
			c.delay[i] = make([]float64, lookAhead)
		}
	}

	c.crestCoeff = math.Exp(-1.0 / (crestTimeSec * sampleRate))
	c.gainEstimate = c.threshold * -0.5 * c.slope
	c.adaptCoeff = math.Exp(-1.0 / (adaptTimeSec * sampleRate))

	return c, nil
}

// Channels returns the configured channel count.
func (c *Compressor) Channels() int { return c.numChans }

// SampleRate returns the configured sample rate in Hz.
func (c *Compressor) SampleRate() float64 { return c.sampleRate }

// LookAhead returns the look-ahead delay in samples.
func (c *Compressor) LookAhead() int { return c.lookAhead }

// Hold returns the effective peak-hold window in samples; 0 when no
// hold tracker is active.
func (c *Compressor) Hold() int { return c.holdLength }

// Process runs one block through the compressor, mutating channels in
// place. samplesToDo is clamped to [0, BlockSize]; each channel slice
// must hold at least that many samples. Slices beyond Channels() are
// ignored. Output is delayed by LookAhead() samples when look-ahead
// is configured.
func (c *Compressor) Process(samplesToDo int, channels [][]float64) {
	if samplesToDo <= 0 {
		return
	}

	if samplesToDo > BlockSize {
		samplesToDo = BlockSize
	}

	if len(channels) > c.numChans {
		channels = channels[:c.numChans]
	}

	n := samplesToDo

	if c.preGain != 1.0 {
		for _, ch := range channels {
			vecmath.ScaleBlock(ch[:n], ch[:n], c.preGain)
		}
	}

	c.linkChannels(n, channels)

	if c.auto.attack || c.auto.release {
		c.crestDetector(n)
	}

	if c.hold != nil {
		c.peakHoldDetector(n)
	} else {
		c.peakDetector(n)
	}

	c.gainCompressor(n)

	if len(c.delay) > 0 {
		c.signalDelay(n, channels)
	}

	gains := c.sideChain[:n]
	for _, ch := range channels {
		vecmath.MulBlockInPlace(ch[:n], gains)
	}

	// The control tail for look-ahead samples has not been consumed
	// yet; carry it to the front for the next block.
	copy(c.sideChain[:c.lookAhead], c.sideChain[n:n+c.lookAhead])
}

// linkChannels fills the side chain with the per-sample maximum
// absolute value across all channels.
func (c *Compressor) linkChannels(n int, channels [][]float64) {
	sideChain := c.sideChain[c.lookAhead : c.lookAhead+n]
	for i := range sideChain {
		sideChain[i] = 0
	}

	for _, ch := range channels {
		buf := ch[:n]
		for i, s := range buf {
			if abs := math.Abs(s); abs > sideChain[i] {
				sideChain[i] = abs
			}
		}
	}
}

// crestDetector estimates the squared crest factor of the control
// signal from instantaneous squared-peak and squared-RMS detectors,
// both released with the fixed 200 ms coefficient. The ratio drives
// the attack/release automation.
func (c *Compressor) crestDetector(n int) {
	aCrest := c.crestCoeff
	y2Peak := c.lastPeakSq
	y2Rms := c.lastRmsSq

	sideChain := c.sideChain[c.lookAhead : c.lookAhead+n]
	for i, xAbs := range sideChain {
		x2 := core.Clamp(xAbs*xAbs, 0.000001, 1000000.0)

		y2Peak = math.Max(x2, core.Lerp(x2, y2Peak, aCrest))
		y2Rms = core.Lerp(x2, y2Rms, aCrest)
		c.crestFactor[i] = y2Peak / y2Rms
	}

	c.lastPeakSq = y2Peak
	c.lastRmsSq = y2Rms
}

// peakDetector converts the control signal to the log domain, with
// the amplitude clamped to near-zero first.
func (c *Compressor) peakDetector(n int) {
	sideChain := c.sideChain[c.lookAhead : c.lookAhead+n]
	for i, s := range sideChain {
		sideChain[i] = math.Log(math.Max(ampEpsilon, s))
	}
}

// peakHoldDetector extends the peak detector with the sliding hold so
// fast transients are held long enough for the envelope to converge.
func (c *Compressor) peakHoldDetector(n int) {
	sideChain := c.sideChain[c.lookAhead : c.lookAhead+n]
	for i, s := range sideChain {
		xG := math.Log(math.Max(ampEpsilon, s))
		sideChain[i] = c.hold.update(i, xG)
	}

	c.hold.shift(n)
}

// gainCompressor is the heart of the feed-forward compressor. It
// applies the static soft-knee curve to the look-ahead control
// signal, smooths the gain-reduction target through a decoupled
// two-stage peak detector, adapts knee width and make-up gain from
// the smoothed deviation against the hot-start estimate, and writes
// the final linear gain for each sample into the side chain.
func (c *Compressor) gainCompressor(n int) {
	autoKnee := c.auto.knee
	autoAttack := c.auto.attack
	autoRelease := c.auto.release
	autoPostGain := c.auto.postGain
	autoDeclip := c.auto.declip
	threshold := c.threshold
	slope := c.slope
	attack := c.attack
	release := c.release
	cEst := c.gainEstimate
	aAdp := c.adaptCoeff
	postGain := c.postGain
	knee := c.knee
	tAtt := attack
	tRel := release - attack
	aAtt := math.Exp(-1.0 / tAtt)
	aRel := math.Exp(-1.0 / tRel)
	y1 := c.lastRelease
	yL := c.lastAttack
	cDev := c.lastGainDev

	for i := 0; i < n; i++ {
		if autoKnee {
			knee = math.Max(0, 2.5*(cDev+cEst))
		}

		kneeH := 0.5 * knee

		// Static compression curve on the control signal: no
		// reduction below the knee, linear in overshoot above it,
		// quadratic blend inside.
		input := c.sideChain[i]
		xOver := c.sideChain[c.lookAhead+i] - threshold

		var yG float64

		switch {
		case xOver <= -kneeH:
			yG = 0
		case math.Abs(xOver) < kneeH:
			yG = (xOver + kneeH) * (xOver + kneeH) / (2.0 * knee)
		default:
			yG = xOver
		}

		y2Crest := c.crestFactor[i]
		if autoAttack {
			tAtt = 2.0 * attack / y2Crest
			aAtt = math.Exp(-1.0 / tAtt)
		}

		if autoRelease {
			tRel = 2.0*release/y2Crest - tAtt
			aRel = math.Exp(-1.0 / tRel)
		}

		// Decoupled peak detector: the release stage rides the
		// instantaneous maximum of the target and its own decay, the
		// attack stage smooths toward it. The attack time was
		// subtracted from the release time above to compensate for
		// the chaining.
		xL := -slope * yG
		y1 = math.Max(xL, core.Lerp(xL, y1, aRel))
		yL = core.Lerp(y1, yL, aAtt)

		// Deviation between the gain target and the estimate, with
		// the estimate biasing the average to hot-start it.
		cDev = core.Lerp(-(yL + cEst), cDev, aAdp)

		if autoPostGain {
			// Clipping reduction further attenuates the deviation
			// when the output would exceed the threshold; the long
			// adaptation time keeps it suppressed at the same level.
			if autoDeclip {
				cDev = math.Max(cDev, input-yL-threshold-cEst)
			}

			postGain = -(cDev + cEst)
		}

		c.sideChain[i] = math.Exp(postGain - yL)
	}

	c.lastRelease = y1
	c.lastAttack = yL
	c.lastGainDev = cDev
}

// signalDelay rotates each channel block against its persistent delay
// line so the audio aligns with gain computed from the look-ahead
// control signal. In-place rotate-and-swap; no allocation.
func (c *Compressor) signalDelay(n int, channels [][]float64) {
	lookAhead := c.lookAhead

	for ci, ch := range channels {
		buf := ch[:n]
		line := c.delay[ci]

		if n >= lookAhead {
			// Swap the block tail into the delay line, then rotate
			// the stashed old line contents to the front.
			tail := buf[n-lookAhead:]
			for i := range tail {
				tail[i], line[i] = line[i], tail[i]
			}

			rotateRight(buf, lookAhead)
		} else {
			for i := range buf {
				buf[i], line[i] = line[i], buf[i]
			}

			rotateLeft(line, n)
		}
	}
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func rotateRight(s []float64, k int) {
	reverse(s)
	reverse(s[:k])
	reverse(s[k:])
}

func rotateLeft(s []float64, k int) {
	reverse(s[:k])
	reverse(s[k:])
	reverse(s)
}

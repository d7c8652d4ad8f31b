package dynamics

import (
	"fmt"
	"math"
)

const (
	defaultThresholdDB = -20.0
	defaultRatio       = 4.0
	defaultKneeDB      = 6.0
	defaultAttackSec   = 0.010
	defaultReleaseSec  = 0.100
)

// AutoFlag selects which compressor parameters are automated.
type AutoFlag uint

const (
	// AutoKnee derives the knee width from the smoothed gain
	// deviation, treating the device as a limiter with an internally
	// varying effective ratio.
	AutoKnee AutoFlag = 1 << iota
	// AutoAttack derives the attack time per sample from the crest
	// factor of the control signal.
	AutoAttack
	// AutoRelease derives the release time per sample from the crest
	// factor of the control signal.
	AutoRelease
	// AutoPostGain derives make-up gain from the smoothed deviation
	// between the gain-reduction target and a hot-start estimate.
	AutoPostGain
	// AutoDeclip biases the deviation to keep the output from
	// clipping at the current level. Only effective together with
	// AutoPostGain; ignored otherwise.
	AutoDeclip
)

type config struct {
	autoFlags    AutoFlag
	lookAheadSec float64
	holdSec      float64
	preGainDB    float64
	postGainDB   float64
	thresholdDB  float64
	ratio        float64
	kneeDB       float64
	attackSec    float64
	releaseSec   float64
}

func defaultConfig() config {
	return config{
		thresholdDB: defaultThresholdDB,
		ratio:       defaultRatio,
		kneeDB:      defaultKneeDB,
		attackSec:   defaultAttackSec,
		releaseSec:  defaultReleaseSec,
	}
}

// Option configures a [Compressor]. Physical values out of range are
// clamped at construction rather than rejected; only non-finite
// inputs fail.
type Option func(*config) error

func finiteOption(name string, v float64, set func(*config)) Option {
	return func(cfg *config) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("dynamics: %s must be finite: %f", name, v)
		}

		set(cfg)

		return nil
	}
}

// WithAutomation sets the automation flag bit set (default none).
func WithAutomation(flags AutoFlag) Option {
	return func(cfg *config) error {
		cfg.autoFlags = flags
		return nil
	}
}

// WithLookAhead sets the look-ahead time in seconds (default 0).
// Clamped to [0, BlockSize-1] samples at the configured rate.
func WithLookAhead(seconds float64) Option {
	return finiteOption("look-ahead", seconds, func(cfg *config) { cfg.lookAheadSec = seconds })
}

// WithHold sets the peak-hold time in seconds (default 0). Clamped to
// [0, BlockSize-1] samples; holds of one sample or less degenerate to
// plain peak detection. Hold requires look-ahead to take effect.
func WithHold(seconds float64) Option {
	return finiteOption("hold", seconds, func(cfg *config) { cfg.holdSec = seconds })
}

// WithPreGain sets the static input gain in dB (default 0).
func WithPreGain(db float64) Option {
	return finiteOption("pre-gain", db, func(cfg *config) { cfg.preGainDB = db })
}

// WithPostGain sets the static make-up gain in dB (default 0).
// Overridden per sample when AutoPostGain is set.
func WithPostGain(db float64) Option {
	return finiteOption("post-gain", db, func(cfg *config) { cfg.postGainDB = db })
}

// WithThreshold sets the compression threshold in dB (default -20).
func WithThreshold(db float64) Option {
	return finiteOption("threshold", db, func(cfg *config) { cfg.thresholdDB = db })
}

// WithRatio sets the compression ratio (default 4). Values below 1
// clamp to 1 (no compression); ignored when AutoKnee is set, which
// forces full limiting.
func WithRatio(ratio float64) Option {
	return finiteOption("ratio", ratio, func(cfg *config) { cfg.ratio = ratio })
}

// WithKnee sets the soft-knee width in dB (default 6). Negative
// values clamp to 0 (hard knee).
func WithKnee(db float64) Option {
	return finiteOption("knee", db, func(cfg *config) { cfg.kneeDB = db })
}

// WithAttack sets the attack time in seconds (default 0.010). Floored
// to one sample.
func WithAttack(seconds float64) Option {
	return finiteOption("attack", seconds, func(cfg *config) { cfg.attackSec = seconds })
}

// WithRelease sets the release time in seconds (default 0.100).
// Floored to one sample; should exceed the attack time, which is
// subtracted out to compensate for the chained ballistics stages.
func WithRelease(seconds float64) Option {
	return finiteOption("release", seconds, func(cfg *config) { cfg.releaseSec = seconds })
}

package dynamics

import "math"

// slidingHold follows the input level with an instant attack and a
// fixed-duration hold before an instant release to the next highest
// level. It is a sliding window maximum (descending maxima) over the
// trailing hold-length samples, based on Richard Harter's ascending
// minima algorithm, kept allocation-free with fixed circular arrays
// and two independent indices.
//
// Candidate maxima live in values[upperIndex..lowerIndex] (circular,
// inclusive), ordered from largest to smallest. Expiry indices are
// block-relative sample positions; shift rebases them after each
// block. A hold length of 1 is not supported: it would only ever
// return the sample just pushed.
type slidingHold struct {
	values     [BlockSize]float64
	expiries   [BlockSize]int
	lowerIndex int
	upperIndex int
	length     int
}

func newSlidingHold(length int) *slidingHold {
	h := &slidingHold{length: length}
	h.values[0] = math.Inf(-1)
	h.expiries[0] = length

	return h
}

// update pushes the sample at block position i and returns the
// maximum over the trailing window. Ties favor the newest sample.
func (h *slidingHold) update(i int, in float64) float64 {
	lower := h.lowerIndex
	upper := h.upperIndex

	if i >= h.expiries[upper] {
		upper = (upper + 1) & blockMask
	}

	if in >= h.values[upper] {
		// New global maximum for the window: every retained candidate
		// is obsolete.
		h.values[upper] = in
		h.expiries[upper] = i + h.length
		lower = upper
	} else {
		// Walk down from the smallest candidate, evicting everything
		// the new sample dominates. The scan wraps at the circular
		// bound and must terminate at upper, whose value is larger.
		for in >= h.values[lower] {
			if lower == 0 {
				lower = blockMask
			} else {
				lower--
			}
		}

		lower = (lower + 1) & blockMask
		h.values[lower] = in
		h.expiries[lower] = i + h.length
	}

	h.lowerIndex = lower
	h.upperIndex = upper

	return h.values[upper]
}

// shift rebases the retained expiry indices by n samples so they stay
// block-relative across Process calls. Only live candidates between
// upperIndex and lowerIndex (circular, inclusive) are adjusted.
func (h *slidingHold) shift(n int) {
	upper := h.upperIndex
	if h.lowerIndex < h.upperIndex {
		for i := upper; i < BlockSize; i++ {
			h.expiries[i] -= n
		}

		upper = 0
	}

	for i := upper; i <= h.lowerIndex; i++ {
		h.expiries[i] -= n
	}
}

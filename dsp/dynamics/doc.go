// Package dynamics provides a feed-forward compressor/limiter for
// linked multichannel audio blocks.
//
// The design follows the classic feed-forward topology: a linked
// side-chain peak detector operating in the log domain, an optional
// sliding peak hold, a soft-knee gain computer, and smooth decoupled
// attack/release ballistics. Knee width, attack and release times,
// make-up gain, and clipping reduction can each be automated from
// running signal statistics, and an optional look-ahead delay lets
// the gain envelope converge before a transient reaches the output.
//
// The per-block processing path is allocation-free and bounded-time,
// suitable for real-time audio render callbacks.
package dynamics

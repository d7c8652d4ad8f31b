// Package ringbuffer provides a lock-free single-producer,
// single-consumer circular buffer of fixed-size elements.
//
// The buffer is intended to move element streams between an audio
// callback and a control goroutine without blocking or allocating.
// All sizes and counts are in elements, not bytes. Exactly one writer
// and one reader may operate concurrently; no further synchronization
// is required, and none is provided for any other configuration.
//
// Two access styles are offered: copying ([RingBuffer.Read],
// [RingBuffer.Write], [RingBuffer.Peek]) and zero-copy via contiguous
// views ([RingBuffer.ReadVector], [RingBuffer.WriteVector]) followed
// by an explicit advance.
package ringbuffer

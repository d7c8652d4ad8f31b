// Package rtprio elevates the calling thread to a real-time
// scheduling class so audio threads meet their deadlines under load.
//
// Elevation is best effort: on unsupported platforms, or when the
// process lacks the privilege, the thread simply keeps its default
// scheduling. Callers that elevate a goroutine's thread should pin it
// with runtime.LockOSThread first, since the scheduler attribute
// applies to the OS thread, not the goroutine.
package rtprio

// Elevate requests round-robin real-time scheduling for the calling
// thread at the given priority level. Levels at or below zero leave
// the thread untouched; levels above the platform maximum are clamped.
func Elevate(level int) error {
	if level <= 0 {
		return nil
	}

	return elevate(level)
}

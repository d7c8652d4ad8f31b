package rtprio

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func elevate(level int) error {
	if level > 99 {
		level = 99
	}

	// RESET_ON_FORK keeps child processes from inheriting the
	// real-time class.
	attr := unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   unix.SCHED_RR,
		Flags:    unix.SCHED_FLAG_RESET_ON_FORK,
		Priority: uint32(level),
	}

	if err := unix.SchedSetAttr(0, &attr, 0); err != nil {
		return fmt.Errorf("rtprio: sched_setattr(SCHED_RR, %d): %w", level, err)
	}

	return nil
}

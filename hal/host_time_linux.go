//go:build linux && !tinygo

package hal

import (
	"time"

	"golang.org/x/sys/unix"
)

var processStart = time.Now()

func monoMs() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return uint64(time.Since(processStart) / time.Millisecond)
	}
	return uint64(ts.Nano() / int64(time.Millisecond))
}

//go:build !linux && !tinygo

package hal

import "time"

var processStart = time.Now()

func monoMs() uint64 {
	return uint64(time.Since(processStart) / time.Millisecond)
}

//go:build !tinygo

package hal

// hostClock reports milliseconds since it was created.
type hostClock struct {
	base uint64
}

func newHostClock() *hostClock {
	return &hostClock{base: monoMs()}
}

func (c *hostClock) nowMs() uint64 {
	now := monoMs()
	if now < c.base {
		return 0
	}
	return now - c.base
}

//go:build !tinygo

package hal

import "sync"

// fiber is a goroutine parked on its resume channel.
//
// resume has capacity 1 so the switching side never blocks: the target is
// always parked (or not yet started) when it is switched to.
type fiber struct {
	resume chan struct{}
	kill   chan struct{}
	once   sync.Once
}

func newFiber() *fiber {
	return &fiber{
		resume: make(chan struct{}, 1),
		kill:   make(chan struct{}),
	}
}

type hostContext struct {
	clock *hostClock
}

// NewContext returns a goroutine-backed execution context primitive.
func NewContext() Context {
	return &hostContext{clock: newHostClock()}
}

func (c *hostContext) Create(stack []byte, entry func()) Fiber {
	f := newFiber()
	go func() {
		select {
		case <-f.resume:
		case <-f.kill:
			return
		}
		entry()
	}()
	return f
}

func (c *hostContext) Self() Fiber {
	return newFiber()
}

func (c *hostContext) Switch(from, to Fiber) {
	src := from.(*fiber)
	dst := to.(*fiber)
	dst.resume <- struct{}{}
	<-src.resume
}

func (c *hostContext) Exit(from, to Fiber) {
	_ = from.(*fiber)
	to.(*fiber).resume <- struct{}{}
}

func (c *hostContext) Release(f Fiber) {
	fb, ok := f.(*fiber)
	if !ok || fb == nil {
		return
	}
	fb.once.Do(func() { close(fb.kill) })
}

func (c *hostContext) NowMs() uint64 {
	return c.clock.nowMs()
}

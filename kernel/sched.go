package kernel

import (
	"context"
	"time"

	"ember/hal"
)

// Kernel is a cooperative scheduler over a fixed process table.
//
// All kernel state is owned by whichever fiber currently holds the
// execution token; no locks are taken.
type Kernel struct {
	ctx hal.Context
	log hal.Logger

	pcbs    [MaxThreads]PCB
	current *PCB
	last    int

	root  hal.Fiber
	sched hal.Fiber

	intr int

	started  bool
	stopping bool
	exitErr  error

	heaps   [NumHeaps]Heap
	drivers [MaxDrivers]driverEntry
	files   [MaxDescriptors]fileEntry

	panicFn func(PanicInfo)
}

// New creates a kernel on top of an execution context primitive.
func New(ctx hal.Context, log hal.Logger) *Kernel {
	k := &Kernel{ctx: ctx, log: log, last: -1}
	for i := range k.pcbs {
		k.pcbs[i].pid = PID(i)
	}
	return k
}

// Run schedules threads until every thread has ended, a thread calls
// Shutdown, or ctx is done. It returns ErrDeadlock when nothing is runnable
// and no timer is pending. Run may only be called once.
func (k *Kernel) Run(ctx context.Context) error {
	if k.started {
		return ErrAccess
	}
	k.started = true

	k.root = k.ctx.Self()
	k.sched = k.ctx.Create(nil, func() {
		for k.schedule(ctx) {
		}
		k.ctx.Exit(k.sched, k.root)
	})
	k.ctx.Switch(k.root, k.sched)

	for i := range k.pcbs {
		if p := &k.pcbs[i]; p.fiber != nil {
			k.ctx.Release(p.fiber)
		}
	}
	return k.exitErr
}

// Shutdown makes Run return once the calling thread yields.
func (k *Kernel) Shutdown() {
	k.stopping = true
}

// schedule dispatches one thread. It returns false when Run should return.
func (k *Kernel) schedule(ctx context.Context) bool {
	for {
		if k.stopping {
			return false
		}
		if err := ctx.Err(); err != nil {
			k.exitErr = err
			return false
		}
		if next := k.nextThread(); next != nil {
			k.dispatch(next)
			return true
		}
		if k.liveThreads() == 0 {
			return false
		}
		if !k.idle(ctx) {
			k.exitErr = ErrDeadlock
			return false
		}
	}
}

// nextThread scans the table round-robin from the slot after the last
// dispatched thread, applying timers and pending signals on the way.
func (k *Kernel) nextThread() *PCB {
	now := k.ctx.NowMs()
	for n := 1; n <= MaxThreads; n++ {
		p := &k.pcbs[(k.last+n)%MaxThreads]
		if p.dead() || p.halted() {
			continue
		}
		if p.alarmAt != 0 && p.alarmAt <= now {
			p.alarmAt = 0
			_ = k.Kill(p.pid, SIGALRM)
		}
		if p.flags&FlagAsyncPending != 0 {
			if p.state != StateRunning {
				p.flags |= FlagAsyncInterrupted
			}
			p.state = StateRunning
		}
		if p.state == StateSleeping && p.sleepAt <= now {
			p.state = StateRunning
		}
		if p.state == StateRunning {
			return p
		}
	}
	return nil
}

func (k *Kernel) dispatch(p *PCB) {
	gen := p.gen
	p.runs++
	k.last = int(p.pid)
	k.current = p

	start := k.ctx.NowMs()
	k.ctx.Switch(k.sched, p.fiber)
	k.current = nil

	if p.gen == gen {
		p.runMs += k.ctx.NowMs() - start
	}
}

func (k *Kernel) liveThreads() int {
	n := 0
	for i := range k.pcbs {
		if !k.pcbs[i].dead() {
			n++
		}
	}
	return n
}

// idle waits for the earliest timer deadline, capped at idleMaxMs. It
// returns false if no thread has a timer that could make it runnable.
func (k *Kernel) idle(ctx context.Context) bool {
	var deadline uint64
	for i := range k.pcbs {
		p := &k.pcbs[i]
		if p.dead() || p.halted() {
			continue
		}
		if p.state == StateSleeping && (deadline == 0 || p.sleepAt < deadline) {
			deadline = p.sleepAt
		}
		if p.alarmAt != 0 && (deadline == 0 || p.alarmAt < deadline) {
			deadline = p.alarmAt
		}
	}
	if deadline == 0 {
		return false
	}

	now := k.ctx.NowMs()
	if deadline <= now {
		return true
	}
	wait := deadline - now
	if wait > idleMaxMs {
		wait = idleMaxMs
	}

	t := time.NewTimer(time.Duration(wait) * time.Millisecond)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
	return true
}

// disable enters a critical section and returns the depth to restore.
func (k *Kernel) disable() int {
	mask := k.intr
	k.intr++
	return mask
}

func (k *Kernel) restore(mask int) {
	k.intr = mask
}

// self returns the calling thread. Blocking calls outside of a thread are
// a programming error.
func (k *Kernel) self() *PCB {
	if k.current == nil {
		panic("kernel: blocking call outside of a thread")
	}
	return k.current
}

func (k *Kernel) lookup(pid PID) (*PCB, bool) {
	if pid < 0 || pid >= MaxThreads {
		return nil, false
	}
	return &k.pcbs[pid], true
}

package kernel

import "fmt"

// EventWait blocks until val is posted to the calling thread. A negative
// timeout waits forever. An event posted before the wait is returned at once.
func (k *Kernel) EventWait(val uint32, timeoutMs int) error {
	if val == 0 {
		return ErrInvalid
	}
	p := k.self()

	mask := k.disable()
	if p.waitVal == val && p.flags&FlagEventPending != 0 {
		p.flags &^= FlagEventPending
		k.restore(mask)
		return nil
	}
	p.flags &^= FlagEventPending
	p.waitVal = val
	p.eventWaiting = true
	if timeoutMs >= 0 {
		p.sleepAt = k.ctx.NowMs() + uint64(timeoutMs)
		p.state = StateSleeping
	} else {
		p.state = StateSuspended
	}
	k.restore(mask)

	err := k.Yield()
	p.eventWaiting = false
	if err != nil {
		return err
	}
	if p.flags&FlagEventPending == 0 {
		return ErrTimedOut
	}
	p.flags &^= FlagEventPending
	return nil
}

// EventPost marks val pending on every live thread that last waited for it
// and wakes the ones currently blocked in EventWait.
func (k *Kernel) EventPost(val uint32) error {
	if val == 0 {
		return ErrInvalid
	}
	mask := k.disable()
	defer k.restore(mask)

	for i := range k.pcbs {
		p := &k.pcbs[i]
		if p.dead() || p.waitVal != val {
			continue
		}
		p.flags |= FlagEventPending
		if p.eventWaiting {
			p.state = StateRunning
		}
	}
	return nil
}

// EventRegister installs the calling thread's signal handler.
func (k *Kernel) EventRegister(h EventHandler) error {
	if h == nil {
		return ErrInvalid
	}
	k.self().handler = h
	return nil
}

// EventSend queues val for asynchronous delivery to pid. The thread is
// forced awake at its next scheduling pass.
func (k *Kernel) EventSend(pid PID, val int32) error {
	p, ok := k.lookup(pid)
	if !ok {
		return ErrNoProc
	}
	if p.dead() {
		return ErrNotFound
	}
	mask := k.disable()
	p.asyncVal = val
	p.flags |= FlagAsyncPending
	k.restore(mask)
	return nil
}

// serviceSignal runs the handler for a pending signal on its own thread.
func (k *Kernel) serviceSignal(p *PCB) error {
	p.flags &^= FlagAsyncPending
	if h := p.handler; h != nil {
		p.state = StateSignal
		h(k, p.asyncVal)
		if p.state == StateSignal {
			p.state = StateRunning
		}
	}
	if p.flags&FlagAsyncInterrupted != 0 {
		p.flags &^= FlagAsyncInterrupted
		return ErrInterrupted
	}
	return nil
}

func defaultHandler(k *Kernel, val int32) {
	if k.log == nil {
		return
	}
	k.log.WriteLineString(fmt.Sprintf("---* %d: GOT EVENT %d *---", k.Getpid(), val))
}

// Kill delivers sig to pid. SIGTERM ends the thread, SIGSTOP suspends it and
// SIGCONT resumes a halted or suspended thread; anything else goes to the
// thread's event handler.
func (k *Kernel) Kill(pid PID, sig Signal) error {
	switch sig {
	case SIGTERM:
		return k.End(pid)
	case SIGSTOP:
		return k.SetState(pid, StateSuspended)
	case SIGCONT:
		return k.resume(pid)
	default:
		return k.EventSend(pid, int32(sig))
	}
}

func (k *Kernel) resume(pid PID) error {
	p, ok := k.lookup(pid)
	if !ok {
		return ErrInvalid
	}
	if p.dead() {
		return ErrNoProc
	}
	resumed := false
	if p.halted() {
		p.flags &^= FlagHalted
		resumed = true
	}
	if p.state == StateSuspended {
		p.state = StateRunning
		resumed = true
	}
	if !resumed {
		return ErrAccess
	}
	return nil
}

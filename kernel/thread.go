package kernel

import (
	"reflect"
	"runtime"
	"strings"
)

// StartThread creates a RUNNING thread in the first free slot.
//
// If stack is nil a stack of at least MinStackSize bytes is taken from the
// OS heap and released when the thread ends.
func (k *Kernel) StartThread(name string, stack []byte, stackSize int, fn EntryFunc, arg int) (PID, error) {
	if name == "" || fn == nil {
		return NoPID, ErrInvalid
	}
	if stack != nil {
		stackSize = len(stack)
	}
	if stackSize <= 0 {
		return NoPID, ErrInvalid
	}

	mask := k.disable()
	defer k.restore(mask)

	var p *PCB
	for i := range k.pcbs {
		if k.pcbs[i].dead() {
			p = &k.pcbs[i]
			break
		}
	}
	if p == nil {
		return NoPID, ErrNoSpace
	}

	var flags Flags
	var stackPtr Ptr
	if stack == nil {
		if stackSize < MinStackSize {
			stackSize = MinStackSize
		}
		ptr, err := k.Malloc(stackSize, AllocNoWait, HeapOS)
		if err != nil {
			return NoPID, ErrNoMem
		}
		stack = k.heaps[HeapOS].bytes(ptr)
		stackPtr = ptr
		flags |= FlagStackOwned
	}

	uistream := LLStdout
	if k.current != nil {
		uistream = k.current.uistream
	}

	*p = PCB{
		pid:       p.pid,
		gen:       p.gen + 1,
		name:      truncate(name, MaxThreadName),
		entry:     fn,
		entryName: funcName(fn),
		arg:       arg,
		stack:     stack,
		stackPtr:  stackPtr,
		stackSize: stackSize,
		state:     StateRunning,
		flags:     flags,
		handler:   defaultHandler,
		uistream:  uistream,
	}
	p.port.peer = NoPID
	_ = p.port.recv.Init(k, 0)
	_ = p.port.send.Init(k, 1)
	p.fiber = k.ctx.Create(stack, k.trampoline(p))

	return p.pid, nil
}

// trampoline runs the thread body and ends the thread when it returns or
// panics.
func (k *Kernel) trampoline(p *PCB) func() {
	gen := p.gen
	entry, arg := p.entry, p.arg
	return func() {
		fiber := p.fiber
		defer func() {
			if r := recover(); r != nil {
				k.intr = 0
				k.triggerPanic(PanicInfo{PID: p.pid, Name: p.name, Value: r})
			}
			if p.gen == gen && !p.dead() {
				_ = k.End(p.pid)
			}
			k.ctx.Exit(fiber, k.sched)
		}()
		entry(k, arg)
	}
}

// End terminates a thread, frees its kernel-owned stack and fails peers
// blocked on it. Ending the calling thread takes effect at its next yield.
func (k *Kernel) End(pid PID) error {
	p, ok := k.lookup(pid)
	if !ok {
		return ErrRange
	}
	if p.dead() {
		return nil
	}

	mask := k.disable()
	defer k.restore(mask)

	if p.semOn != nil {
		p.semOn.unlink(p)
	}
	p.state = StateDead
	p.eventWaiting = false
	p.alarmAt = 0
	k.failPeers(p)
	k.ctx.Release(p.fiber)

	if p.flags&FlagStackOwned != 0 {
		p.flags &^= FlagStackOwned
		_ = k.Free(p.stackPtr, HeapOS)
	}
	p.stack = nil
	return nil
}

// Yield hands the CPU to the scheduler. On return any pending signal is
// serviced; ErrInterrupted reports that the signal cut a wait short.
func (k *Kernel) Yield() error {
	p := k.self()
	if p.state == StateSignal {
		panic("kernel: yield from a signal handler")
	}
	if k.intr != 0 {
		panic("kernel: yield inside a critical section")
	}

	k.ctx.Switch(p.fiber, k.sched)

	if p.flags&FlagAsyncPending == 0 {
		return nil
	}
	return k.serviceSignal(p)
}

// Sleep blocks the calling thread for at least ms milliseconds. It returns
// the milliseconds left if the thread was woken early.
func (k *Kernel) Sleep(ms int) int {
	p := k.self()
	if ms < 0 {
		ms = 0
	}
	p.sleepAt = k.ctx.NowMs() + uint64(ms)
	p.state = StateSleeping
	_ = k.Yield()
	if now := k.ctx.NowMs(); p.sleepAt > now {
		return int(p.sleepAt - now)
	}
	return 0
}

// Alarm arranges for SIGALRM to be sent to the calling thread after ms
// milliseconds. ms <= 0 cancels a pending alarm. It returns the
// milliseconds that were left on the previous alarm.
func (k *Kernel) Alarm(ms int) int {
	p := k.self()
	now := k.ctx.NowMs()
	left := 0
	if p.alarmAt > now {
		left = int(p.alarmAt - now)
	}
	p.alarmAt = 0
	if ms > 0 {
		p.alarmAt = now + uint64(ms)
	}
	return left
}

// Getpid returns the calling thread's PID, or NoPID outside of a thread.
func (k *Kernel) Getpid() PID {
	if k.current == nil {
		return NoPID
	}
	return k.current.pid
}

// FindProc returns the PID of the first live thread with the given name.
func (k *Kernel) FindProc(name string) (PID, error) {
	name = truncate(name, MaxThreadName)
	for i := range k.pcbs {
		if p := &k.pcbs[i]; !p.dead() && p.name == name {
			return p.pid, nil
		}
	}
	return NoPID, ErrNotFound
}

// Name returns the name of a live thread.
func (k *Kernel) Name(pid PID) (string, error) {
	p, ok := k.lookup(pid)
	if !ok {
		return "", ErrRange
	}
	if p.dead() {
		return "", ErrNoProc
	}
	return p.name, nil
}

// SetState changes a thread's run state. States other than RUNNING,
// SLEEPING, SUSPENDED, SEMWAIT and MSGREPLY are ignored.
func (k *Kernel) SetState(pid PID, st RunState) error {
	p, ok := k.lookup(pid)
	if !ok {
		return ErrNoProc
	}
	return k.setState(p, st)
}

func (k *Kernel) setState(p *PCB, st RunState) error {
	if p == nil || p.dead() {
		return ErrInvalid
	}
	switch st {
	case StateRunning, StateSleeping, StateSuspended, StateSemWait, StateMsgReply:
		p.state = st
	}
	return nil
}

// Halt excludes a thread from scheduling until it receives SIGCONT.
func (k *Kernel) Halt(pid PID) error {
	p, ok := k.lookup(pid)
	if !ok || p.dead() {
		return ErrNoProc
	}
	p.flags |= FlagHalted
	return nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func funcName(fn EntryFunc) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "?"
	}
	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

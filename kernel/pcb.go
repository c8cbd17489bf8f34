package kernel

import "ember/hal"

// PID identifies a thread slot in the process table.
type PID int32

// NoPID is returned by Getpid outside of any thread.
const NoPID PID = -1

// RunState is the scheduling state of a thread.
type RunState uint8

const (
	StateDead RunState = iota
	StateRunning
	StateSleeping
	StateSuspended
	StateSemWait
	StateMsgReply
	StateSignal
)

func (s RunState) String() string {
	switch s {
	case StateDead:
		return "dead"
	case StateRunning:
		return "running"
	case StateSleeping:
		return "sleeping"
	case StateSuspended:
		return "suspended"
	case StateSemWait:
		return "semwait"
	case StateMsgReply:
		return "msgreply"
	case StateSignal:
		return "signal"
	default:
		return "unknown"
	}
}

// Letter is the one-character code used by process listings.
func (s RunState) Letter() byte {
	switch s {
	case StateRunning:
		return 'R'
	case StateSleeping:
		return 'S'
	case StateSuspended:
		return 'W'
	case StateSemWait:
		return 'M'
	case StateMsgReply:
		return 'Q'
	case StateSignal:
		return 'G'
	default:
		return '-'
	}
}

// Flags are attribute bits kept alongside the run state.
type Flags uint16

const (
	// FlagHalted excludes a thread from scheduling until SIGCONT.
	FlagHalted Flags = 1 << iota
	// FlagStackOwned marks a stack allocated by the kernel.
	FlagStackOwned
	FlagEventPending
	FlagAsyncPending
	// FlagAsyncInterrupted records that a signal forced a blocked thread awake.
	FlagAsyncInterrupted
)

// EntryFunc is a thread body. Returning from it ends the thread.
type EntryFunc func(k *Kernel, arg int)

// EventHandler runs on the receiving thread when a signal is serviced.
type EventHandler func(k *Kernel, val int32)

// port is the per-thread message rendezvous state.
type port struct {
	recv Semaphore
	send Semaphore
	sent *Message

	// Sender side of an outstanding MsgSend.
	peer     PID
	peerGen  uint32
	replied  bool
	replyErr error
}

// PCB is a process control block. Slots are reused; gen changes on reuse.
type PCB struct {
	pid   PID
	gen   uint32
	name  string
	fiber hal.Fiber

	entry     EntryFunc
	entryName string
	arg       int

	stack     []byte
	stackPtr  Ptr
	stackSize int

	state RunState
	flags Flags

	sleepAt uint64
	alarmAt uint64

	waitVal      uint32
	eventWaiting bool
	handler      EventHandler
	asyncVal     int32

	port port

	semOn      *Semaphore
	semNext    *PCB
	semGranted bool

	uistream FD

	runs  uint32
	runMs uint64
}

func (p *PCB) dead() bool   { return p.state == StateDead }
func (p *PCB) halted() bool { return p.flags&FlagHalted != 0 }

// Signal numbers. SIGTERM, SIGSTOP and SIGCONT are acted on by the kernel;
// the rest are delivered to the thread's event handler.
type Signal int32

const (
	SIGHUP    Signal = 1
	SIGINT    Signal = 2
	SIGQUIT   Signal = 3
	SIGILL    Signal = 4
	SIGTRAP   Signal = 5
	SIGABRT   Signal = 6
	SIGEMT    Signal = 7
	SIGFPE    Signal = 8
	SIGKILL   Signal = 9
	SIGBUS    Signal = 10
	SIGSEGV   Signal = 11
	SIGSYS    Signal = 12
	SIGPIPE   Signal = 13
	SIGALRM   Signal = 14
	SIGTERM   Signal = 15
	SIGURG    Signal = 16
	SIGSTOP   Signal = 17
	SIGTSTP   Signal = 18
	SIGCONT   Signal = 19
	SIGCHLD   Signal = 20
	SIGTTIN   Signal = 21
	SIGTTOU   Signal = 22
	SIGIO     Signal = 23
	SIGXCPU   Signal = 24
	SIGXFSZ   Signal = 25
	SIGVTALRM Signal = 26
	SIGPROF   Signal = 27
	SIGWINCH  Signal = 28
	SIGLOST   Signal = 29
	SIGUSR1   Signal = 30
	SIGUSR2   Signal = 31
)

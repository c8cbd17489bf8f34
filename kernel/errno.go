package kernel

import "fmt"

// Errno is a kernel error code.
type Errno uint8

const (
	ErrInvalid Errno = iota + 1
	ErrRange
	ErrNoSpace
	ErrNoMem
	ErrTooManyFiles
	ErrNoProc
	ErrNotFound
	ErrNoDevice
	ErrBadFile
	ErrAccess
	ErrBusy
	ErrWouldBlock
	ErrNotSupported
	ErrTimedOut
	ErrInterrupted
	ErrHostDown
	ErrFault
	ErrDeadlock
)

func (e Errno) Error() string { return e.String() }

func (e Errno) String() string {
	switch e {
	case ErrInvalid:
		return "invalid argument"
	case ErrRange:
		return "out of range"
	case ErrNoSpace:
		return "no free thread slot"
	case ErrNoMem:
		return "out of memory"
	case ErrTooManyFiles:
		return "too many open files"
	case ErrNoProc:
		return "no such process"
	case ErrNotFound:
		return "not found"
	case ErrNoDevice:
		return "no such device"
	case ErrBadFile:
		return "bad file descriptor"
	case ErrAccess:
		return "operation not permitted in this state"
	case ErrBusy:
		return "resource busy"
	case ErrWouldBlock:
		return "would block"
	case ErrNotSupported:
		return "not supported"
	case ErrTimedOut:
		return "timed out"
	case ErrInterrupted:
		return "interrupted"
	case ErrHostDown:
		return "peer is gone"
	case ErrFault:
		return "bad address"
	case ErrDeadlock:
		return "no runnable thread and no pending timer"
	default:
		return "unknown"
	}
}

// Kind groups errnos by how callers usually react to them.
type Kind uint8

const (
	KindNone Kind = iota
	KindInvalidArgument
	KindResourceExhausted
	KindNoSuchEntity
	KindStateConflict
	KindTimedOut
	KindInterrupted
	KindHostDown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidArgument:
		return "invalid argument"
	case KindResourceExhausted:
		return "resource exhausted"
	case KindNoSuchEntity:
		return "no such entity"
	case KindStateConflict:
		return "state conflict"
	case KindTimedOut:
		return "timed out"
	case KindInterrupted:
		return "interrupted"
	case KindHostDown:
		return "host down"
	default:
		return "unknown"
	}
}

func (e Errno) Kind() Kind {
	switch e {
	case ErrInvalid, ErrRange, ErrFault:
		return KindInvalidArgument
	case ErrNoSpace, ErrNoMem, ErrTooManyFiles:
		return KindResourceExhausted
	case ErrNoProc, ErrNotFound, ErrNoDevice, ErrBadFile:
		return KindNoSuchEntity
	case ErrAccess, ErrBusy, ErrWouldBlock, ErrNotSupported, ErrDeadlock:
		return KindStateConflict
	case ErrTimedOut:
		return KindTimedOut
	case ErrInterrupted:
		return KindInterrupted
	case ErrHostDown:
		return KindHostDown
	default:
		return KindNone
	}
}

// FatalError reports a boot failure the system cannot continue from.
type FatalError struct {
	Reason string
	Err    error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return "fatal: " + e.Reason
	}
	return fmt.Sprintf("fatal: %s: %v", e.Reason, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// Serial is a raw byte stream to the outside world (UART, host terminal).
//
// Read may block; the kernel never calls it directly.
type Serial interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Fiber is an opaque execution context handle created by a Context.
type Fiber any

// Context creates and switches cooperative execution contexts.
//
// Exactly one fiber executes at a time. Switch hands the execution token to
// the target and parks the caller until some other fiber switches back.
type Context interface {
	// Create returns a parked fiber that runs entry on its first Switch.
	// The stack is owned by the caller; hosts may use it for accounting only.
	Create(stack []byte, entry func()) Fiber

	// Self returns a fiber for the calling goroutine (the boot context).
	Self() Fiber

	// Switch runs to and parks from.
	Switch(from, to Fiber)

	// Exit runs to without parking from. The caller must return right after.
	Exit(from, to Fiber)

	// Release discards a fiber. A released fiber is never resumed.
	Release(f Fiber)

	// NowMs returns monotonic milliseconds.
	NowMs() uint64
}

// HAL provides the only contact point between the OS and the outside world.
type HAL interface {
	Logger() Logger
	Context() Context
	Serial() Serial
}

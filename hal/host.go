//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type hostHAL struct {
	logger *hostLogger
	ctx    Context
	serial Serial
}

// New returns a host HAL with the serial port on stdin/stdout and the
// logger on stderr.
func New() HAL {
	return NewWithIO(os.Stdin, os.Stdout, os.Stderr)
}

// NewWithIO returns a host HAL whose serial port uses r and w and whose
// logger writes to logw.
func NewWithIO(r io.Reader, w, logw io.Writer) HAL {
	return &hostHAL{
		logger: &hostLogger{w: logw},
		ctx:    NewContext(),
		serial: &hostSerial{r: r, w: w},
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Context() Context { return h.ctx }
func (h *hostHAL) Serial() Serial   { return h.serial }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

package kernel

import (
	"fmt"
	"io"
)

// SetUIStream sets the calling thread's console descriptor. Threads started
// by it inherit the descriptor.
func (k *Kernel) SetUIStream(fd FD) error {
	if fd < 0 || fd >= MaxDescriptors {
		return ErrRange
	}
	k.self().uistream = fd
	return nil
}

// UIStream returns the calling thread's console descriptor, or LLStdout
// outside of a thread.
func (k *Kernel) UIStream() FD {
	if k.current == nil {
		return LLStdout
	}
	return k.current.uistream
}

type uiWriter struct {
	k *Kernel
}

func (w uiWriter) Write(p []byte) (int, error) {
	return w.k.Write(w.k.UIStream(), p, -1)
}

// Stdout returns a writer for the calling thread's console descriptor.
func (k *Kernel) Stdout() io.Writer {
	return uiWriter{k: k}
}

// Printf formats to the calling thread's console descriptor.
func (k *Kernel) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(k.Stdout(), format, args...)
}

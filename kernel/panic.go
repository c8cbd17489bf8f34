package kernel

import (
	"fmt"
	"strings"
)

// PanicInfo contains details about a recovered thread panic or a fatal
// kernel error.
type PanicInfo struct {
	PID   PID
	Name  string
	Value any
	Stack []byte
}

// SetPanicHandler installs the handler called for thread panics and Die.
// It must not panic or block.
func (k *Kernel) SetPanicHandler(fn func(PanicInfo)) {
	k.panicFn = fn
}

func (k *Kernel) triggerPanic(info PanicInfo) {
	info.Stack = captureStack()
	if k.log != nil {
		k.log.WriteLineString(fmt.Sprintf("panic: pid %d (%s): %v", info.PID, info.Name, info.Value))
		for _, line := range strings.Split(strings.TrimSpace(string(info.Stack)), "\n") {
			k.log.WriteLineString("  " + line)
		}
	}
	if fn := k.panicFn; fn != nil {
		fn(info)
	}
}

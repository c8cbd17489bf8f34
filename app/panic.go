package app

import (
	"fmt"

	"ember/hal"
	"ember/kernel"
)

// installPanicHandler reports thread panics on the serial console so the
// operator sees them next to the prompt. The kernel logs the stack.
func installPanicHandler(k *kernel.Kernel, h hal.HAL) {
	k.SetPanicHandler(func(info kernel.PanicInfo) {
		serial := h.Serial()
		if serial == nil {
			return
		}
		name := info.Name
		if name == "" {
			name = "kernel"
		}
		_, _ = fmt.Fprintf(serial, "\n*** ember panic: pid=%d (%s) panic=%v\n", info.PID, name, info.Value)
	})
}

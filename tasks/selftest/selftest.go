// Package selftest exercises the kernel primitives from a running thread.
package selftest

import (
	"errors"
	"fmt"
	"io"

	"ember/kernel"
)

// Check is one named self test. Run is called on a kernel thread.
type Check struct {
	Name string
	Run  func(k *kernel.Kernel) error
}

// Checks is the default set run by the console "test" command.
var Checks = []Check{
	{Name: "threading", Run: threading},
	{Name: "message", Run: message},
	{Name: "signal", Run: signal},
	{Name: "heap", Run: heap},
}

// Run executes checks in order and writes one line per check to w.
func Run(k *kernel.Kernel, w io.Writer, checks []Check) error {
	failed := 0
	for _, c := range checks {
		if err := c.Run(k); err != nil {
			failed++
			fmt.Fprintf(w, "%-10s FAIL: %v\n", c.Name, err)
			continue
		}
		fmt.Fprintf(w, "%-10s ok\n", c.Name)
	}
	if failed > 0 {
		return fmt.Errorf("selftest: %d of %d checks failed", failed, len(checks))
	}
	return nil
}

// threading adds 10 and 20 to a counter of 10 from two threads under a
// mutex and waits for both with a wait group.
func threading(k *kernel.Kernel) error {
	counter := 10
	var mu kernel.Mutex
	var wg kernel.WaitGroup
	if err := mu.Init(k); err != nil {
		return err
	}
	if err := wg.Init(k, 2); err != nil {
		return err
	}

	add := func(k *kernel.Kernel, n int) {
		_ = mu.Lock()
		v := counter
		_ = k.Yield()
		counter = v + n
		_ = mu.Unlock()
		_ = wg.Done()
	}
	for _, n := range []int{10, 20} {
		if _, err := k.StartThread(fmt.Sprintf("add%d", n), nil, kernel.MinStackSize, add, n); err != nil {
			return fmt.Errorf("start adder: %w", err)
		}
	}
	if err := wg.Wait(); err != nil {
		return err
	}
	if counter != 40 {
		return fmt.Errorf("counter = %d, want 40", counter)
	}
	return nil
}

func message(k *kernel.Kernel) error {
	srv, err := k.StartThread("echo", nil, kernel.MinStackSize, func(k *kernel.Kernel, arg int) {
		var m kernel.Message
		if err := k.MsgRecv(&m); err != nil {
			return
		}
		m.Tag++
		m.Payload = fmt.Sprintf("echo:%v", m.Payload)
		_ = k.MsgReply(&m)
	}, 0)
	if err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	m := kernel.Message{Tag: 41, Payload: "ping"}
	if err := k.MsgSend(srv, &m); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if m.Tag != 42 || m.Payload != "echo:ping" {
		return fmt.Errorf("reply = %d %v, want 42 echo:ping", m.Tag, m.Payload)
	}
	return nil
}

// signal interrupts a thread blocked in EventWait and checks that its
// handler ran with the signal number.
func signal(k *kernel.Kernel) error {
	var wg kernel.WaitGroup
	if err := wg.Init(k, 1); err != nil {
		return err
	}
	var got int32
	var waitErr error
	pid, err := k.StartThread("sigwait", nil, kernel.MinStackSize, func(k *kernel.Kernel, arg int) {
		_ = k.EventRegister(func(k *kernel.Kernel, val int32) { got = val })
		waitErr = k.EventWait(uint32(arg), -1)
		_ = wg.Done()
	}, 0x5e1f)
	if err != nil {
		return fmt.Errorf("start waiter: %w", err)
	}

	for i := 0; i < kernel.MaxThreads; i++ {
		if d, err := k.Dump(pid); err == nil && d.State == kernel.StateSuspended {
			break
		}
		_ = k.Yield()
	}
	if err := k.Kill(pid, kernel.SIGUSR1); err != nil {
		return fmt.Errorf("kill: %w", err)
	}
	if err := wg.Wait(); err != nil {
		return err
	}
	if got != int32(kernel.SIGUSR1) {
		return fmt.Errorf("handler got %d, want %d", got, kernel.SIGUSR1)
	}
	if !errors.Is(waitErr, kernel.ErrInterrupted) {
		return fmt.Errorf("wait = %v, want %v", waitErr, kernel.ErrInterrupted)
	}
	return nil
}

// heap allocates and frees three neighbouring blocks and checks that the
// free space is whole again.
func heap(k *kernel.Kernel) error {
	id := kernel.HeapApp
	before, err := k.BytesFree(id)
	if err != nil {
		id = kernel.HeapOS
		if before, err = k.BytesFree(id); err != nil {
			return err
		}
	}

	var ptrs []kernel.Ptr
	for i := 0; i < 3; i++ {
		p, err := k.Malloc(64, kernel.AllocNoWait, id)
		if err != nil {
			return fmt.Errorf("malloc: %w", err)
		}
		ptrs = append(ptrs, p)
	}
	for _, i := range []int{1, 0, 2} {
		if err := k.Free(ptrs[i], id); err != nil {
			return fmt.Errorf("free: %w", err)
		}
	}
	after, _ := k.BytesFree(id)
	if after != before {
		return fmt.Errorf("free bytes = %d after free, want %d", after, before)
	}
	return nil
}

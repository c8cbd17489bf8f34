// Package console is the line-oriented command interpreter that runs as a
// kernel thread on a tty descriptor.
package console

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/google/shlex"

	"ember/internal/buildinfo"
	"ember/kernel"
)

const (
	prompt     = "\n[ember] # "
	idlePollMs = 10
)

var errUsage = errors.New("usage")

type notFoundError struct {
	name string
}

func (e *notFoundError) Error() string { return e.name + ": Command not found" }

func (e *notFoundError) Is(target error) bool { return target == kernel.ErrNotFound }

// Console reads command lines from a descriptor and runs registered
// commands on its own thread.
type Console struct {
	k   *kernel.Kernel
	fd  kernel.FD
	reg *registry

	pid    kernel.PID
	msgPID kernel.PID

	resetFn func()
}

// New creates a console on fd with the built-in commands registered.
func New(k *kernel.Kernel, fd kernel.FD) (*Console, error) {
	c := &Console{k: k, fd: fd, reg: newRegistry(), pid: kernel.NoPID, msgPID: kernel.NoPID}
	if err := c.registerBuiltins(); err != nil {
		return nil, err
	}
	return c, nil
}

// Register adds a command.
func (c *Console) Register(cmd Command) error {
	return c.reg.register(cmd)
}

// SetResetHandler installs the hook run by the reset command. Without one,
// reset reports ErrNotSupported.
func (c *Console) SetResetHandler(fn func()) {
	c.resetFn = fn
}

// Start launches the message print server and the console thread.
func (c *Console) Start() (kernel.PID, error) {
	pid, err := c.k.StartThread("msgprint", nil, kernel.MinStackSize, c.msgPrintServer, 0)
	if err != nil {
		return kernel.NoPID, fmt.Errorf("console: start msgprint: %w", err)
	}
	c.msgPID = pid

	pid, err = c.k.StartThread("console", nil, kernel.MinStackSize, c.loop, 0)
	if err != nil {
		return kernel.NoPID, fmt.Errorf("console: start: %w", err)
	}
	c.pid = pid
	return pid, nil
}

func (c *Console) printf(format string, args ...any) {
	c.k.Printf(format, args...)
}

// Printf writes to the calling thread's console descriptor. Commands
// registered from other packages use it for their output.
func (c *Console) Printf(format string, args ...any) {
	c.printf(format, args...)
}

func (c *Console) loop(k *kernel.Kernel, arg int) {
	if err := k.SetUIStream(c.fd); err != nil {
		return
	}
	c.printVersion()
	c.printf("%s", prompt)

	line := make([]byte, 0, kernel.CmdlineSize)
	buf := make([]byte, kernel.CmdlineSize)
	for {
		if len(line) >= kernel.CmdlineSize {
			c.printf("\nline too long\n%s", prompt)
			line = line[:0]
		}
		n, err := k.Read(c.fd, buf[:kernel.CmdlineSize-len(line)], 0)
		if err != nil || n == 0 {
			k.Sleep(idlePollMs)
			continue
		}
		line = append(line, buf[:n]...)

		for {
			i := bytes.IndexByte(line, '\n')
			if i < 0 {
				break
			}
			cmd := strings.TrimRight(string(line[:i]), "\r")
			line = append(line[:0], line[i+1:]...)
			if err := c.Exec(cmd); err != nil {
				c.printf("%v\n", err)
			}
			c.printf("%s", prompt)
		}
	}
}

// Exec splits line shell style and runs the named command on the calling
// thread.
func (c *Console) Exec(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	if len(args) == 0 {
		return nil
	}
	cmd, ok := c.reg.resolve(args[0])
	if !ok {
		return &notFoundError{name: args[0]}
	}
	if err := cmd.Run(c, args); err != nil {
		if errors.Is(err, errUsage) {
			return fmt.Errorf("usage: %s", cmd.Usage)
		}
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return nil
}

func (c *Console) printVersion() {
	c.printf("\n%s\n    %s\n\n", buildinfo.Title(), buildinfo.Compiled())
}

// StartScript launches the message print server and a thread that runs
// lines in order, echoing each after the prompt, then shuts the kernel down.
func (c *Console) StartScript(lines []string) (kernel.PID, error) {
	pid, err := c.k.StartThread("msgprint", nil, kernel.MinStackSize, c.msgPrintServer, 0)
	if err != nil {
		return kernel.NoPID, fmt.Errorf("console: start msgprint: %w", err)
	}
	c.msgPID = pid

	pid, err = c.k.StartThread("script", nil, kernel.MinStackSize, func(k *kernel.Kernel, arg int) {
		if err := k.SetUIStream(c.fd); err != nil {
			return
		}
		for _, line := range lines {
			c.printf("%s%s\n", strings.TrimPrefix(prompt, "\n"), line)
			if err := c.Exec(line); err != nil {
				c.printf("%v\n", err)
			}
		}
		k.Shutdown()
	}, 0)
	if err != nil {
		return kernel.NoPID, fmt.Errorf("console: start script: %w", err)
	}
	c.pid = pid
	return pid, nil
}

package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"ember/drivers/tty"
	"ember/hal"
	"ember/kernel"
)

type fakeSerial struct {
	r   io.Reader
	out bytes.Buffer
}

func (s *fakeSerial) Read(p []byte) (int, error)  { return s.r.Read(p) }
func (s *fakeSerial) Write(p []byte) (int, error) { return s.out.Write(p) }

func boot(t *testing.T, input string) (*kernel.Kernel, *Console, *tty.Device, *fakeSerial) {
	t.Helper()
	s := &fakeSerial{r: strings.NewReader(input)}
	d := tty.New(s)
	k := kernel.New(hal.NewContext(), nil)
	if err := k.HeapInit(make([]byte, 512*1024), kernel.HeapOS); err != nil {
		t.Fatalf("HeapInit() = %v", err)
	}
	if err := k.LoadDrivers([]kernel.DriverInit{{Minor: 0, Init: d.Init()}}); err != nil {
		t.Fatalf("LoadDrivers() = %v", err)
	}
	c, err := New(k, kernel.LLStdout)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if _, err := c.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	return k, c, d, s
}

func run(t *testing.T, k *kernel.Kernel) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := k.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
}

func TestConsoleReadsLines(t *testing.T) {
	k, _, d, s := boot(t, "cmdtest a 'b c'\r\nnosuch\nps\nhalt\n")
	if err := d.Pump(context.Background()); err != nil {
		t.Fatalf("Pump() = %v", err)
	}
	run(t, k)

	out := s.out.String()
	for _, want := range []string{
		"Welcome to ember",
		"[ember] # ",
		"argv[0] = cmdtest\nargv[1] = a\nargv[2] = b c\n",
		"nosuch: Command not found\n",
		"PID NAME STATE\n",
		"msgprint M\n",
		"console R\n",
		"halting\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleLineTooLong(t *testing.T) {
	k, _, d, s := boot(t, strings.Repeat("x", kernel.CmdlineSize+10)+"\nhalt\n")
	if err := d.Pump(context.Background()); err != nil {
		t.Fatalf("Pump() = %v", err)
	}
	run(t, k)

	if out := s.out.String(); !strings.Contains(out, "line too long") || !strings.Contains(out, "halting") {
		t.Fatalf("output = %q", out)
	}
}

// execAll runs lines through Exec on a separate thread, then stops the
// kernel.
func execAll(t *testing.T, k *kernel.Kernel, c *Console, lines ...string) []error {
	t.Helper()
	errs := make([]error, len(lines))
	_, err := k.StartThread("driver", nil, kernel.MinStackSize, func(k *kernel.Kernel, arg int) {
		for i, line := range lines {
			errs[i] = c.Exec(line)
		}
		k.Shutdown()
	}, 0)
	if err != nil {
		t.Fatalf("StartThread() = %v", err)
	}
	run(t, k)
	return errs
}

func TestExecMsg(t *testing.T) {
	k, c, _, s := boot(t, "")
	errs := execAll(t, k, c, "msg hello world")
	if errs[0] != nil {
		t.Fatalf("Exec(msg) = %v", errs[0])
	}
	out := s.out.String()
	i := strings.Index(out, "..world..\n..hello..\n..msg..\n")
	if i < 0 || !strings.Contains(out[:i], "Msg test [WORKER]") {
		t.Fatalf("output = %q", out)
	}
}

func TestExecKill(t *testing.T) {
	k, c, _, s := boot(t, "")
	sleeper, err := k.StartThread("sleeper", nil, kernel.MinStackSize, func(k *kernel.Kernel, arg int) {
		for {
			k.Sleep(1000)
		}
	}, 0)
	if err != nil {
		t.Fatalf("StartThread() = %v", err)
	}

	errs := execAll(t, k, c,
		fmt.Sprintf("kill -W %d", sleeper),
		"ps",
		fmt.Sprintf("kill -C %d", sleeper),
		fmt.Sprintf("kill -D %d 60", sleeper),
		"kill",
		"kill -X 1",
	)
	for i := 0; i < 4; i++ {
		if errs[i] != nil {
			t.Fatalf("Exec(%d) = %v", i, errs[i])
		}
	}
	usage := "usage: kill [-C|D|W|I] <pid pid...>"
	if errs[4] == nil || errs[4].Error() != usage {
		t.Fatalf("Exec(kill) = %v, want %q", errs[4], usage)
	}
	if errs[5] == nil || errs[5].Error() != usage {
		t.Fatalf("Exec(kill -X) = %v, want %q", errs[5], usage)
	}

	out := s.out.String()
	for _, want := range []string{
		fmt.Sprintf("Sent signal 17 to pid %d. Result = ok\n", sleeper),
		"sleeper W\n",
		fmt.Sprintf("Sent signal 19 to pid %d. Result = ok\n", sleeper),
		fmt.Sprintf("Sent signal 15 to pid %d. Result = ok\n", sleeper),
		"Sent signal 15 to pid 60. Result = ok\n",
		"Unknown switch: -X\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if _, err := k.Name(sleeper); err != kernel.ErrNoProc {
		t.Fatalf("Name(killed) = %v, want %v", err, kernel.ErrNoProc)
	}
}

func TestExecInspection(t *testing.T) {
	k, c, _, s := boot(t, "")
	errs := execAll(t, k, c,
		"pdump 1",
		"pdump 99",
		"pdump",
		"free",
		"mem",
		"drivers",
		"fds",
		"help",
		"top",
		"sigtest 1 30",
		"version",
	)
	for i, err := range errs {
		if i == 2 {
			if err == nil || err.Error() != "usage: pdump <pid>" {
				t.Fatalf("Exec(pdump) = %v", err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Exec(%d) = %v", i, err)
		}
	}

	out := s.out.String()
	for _, want := range []string{
		"Pdump console - PID 1",
		"Fnc = ",
		"Stk = 16384 bytes (kernel heap)\n",
		"PID 99 not found\n",
		"Mem[0]: Total=524288  Free=",
		"Memory 0 (os)\n",
		"DRV# Name Table\n============\n0 tty0 ocrwi\n",
		"FD# Name Data\n============\n0 tty0 -\n",
		"cmdtest ",
		"PID NAME STATE\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExecErrors(t *testing.T) {
	k, c, _, _ := boot(t, "")
	errs := execAll(t, k, c, `cmdtest "open`, "nosuch a b", "", "sigtest 55 1")

	if errs[0] == nil || !strings.HasPrefix(errs[0].Error(), "console: ") {
		t.Fatalf("Exec(unbalanced) = %v, want console parse error", errs[0])
	}
	if !errors.Is(errs[1], kernel.ErrNotFound) || errs[1].Error() != "nosuch: Command not found" {
		t.Fatalf("Exec(nosuch) = %v", errs[1])
	}
	if errs[2] != nil {
		t.Fatalf("Exec(empty) = %v, want nil", errs[2])
	}
	if !errors.Is(errs[3], kernel.ErrNotFound) {
		t.Fatalf("Exec(sigtest dead) = %v, want %v", errs[3], kernel.ErrNotFound)
	}
}

func TestExecSelfTest(t *testing.T) {
	k, c, _, s := boot(t, "")
	errs := execAll(t, k, c, "test", "test heap")
	for i, err := range errs {
		if err != nil {
			t.Fatalf("Exec(test %d) = %v\n%s", i, err, s.out.String())
		}
	}
	if n := strings.Count(s.out.String(), " ok\n"); n != 5 {
		t.Fatalf("ok lines = %d, want 5:\n%s", n, s.out.String())
	}
}

func TestRegisterCustomCommand(t *testing.T) {
	k, c, _, s := boot(t, "")
	if err := c.Register(Command{Name: "hello", Run: func(c *Console, args []string) error {
		c.printf("hi %s\n", strings.Join(args[1:], ","))
		return nil
	}}); err != nil {
		t.Fatalf("Register() = %v", err)
	}
	if err := c.Register(Command{Name: "ps", Run: nopCmd}); err == nil {
		t.Fatalf("Register(ps) = nil, want duplicate error")
	}
	errs := execAll(t, k, c, "hello a b")
	if errs[0] != nil || !strings.Contains(s.out.String(), "hi a,b\n") {
		t.Fatalf("Exec(hello) = %v, output %q", errs[0], s.out.String())
	}
}

func TestStartScript(t *testing.T) {
	s := &fakeSerial{r: strings.NewReader("")}
	d := tty.New(s)
	k := kernel.New(hal.NewContext(), nil)
	if err := k.HeapInit(make([]byte, 256*1024), kernel.HeapOS); err != nil {
		t.Fatalf("HeapInit() = %v", err)
	}
	if err := k.LoadDrivers([]kernel.DriverInit{{Init: d.Init()}}); err != nil {
		t.Fatalf("LoadDrivers() = %v", err)
	}
	c, err := New(k, kernel.LLStdout)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if _, err := c.StartScript([]string{"cmdtest x", "msg hi", "bogus"}); err != nil {
		t.Fatalf("StartScript() = %v", err)
	}
	run(t, k)

	out := s.out.String()
	for _, want := range []string{
		"[ember] # cmdtest x\nargv[0] = cmdtest\nargv[1] = x\n",
		"..hi..\n..msg..\n",
		"bogus: Command not found\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExecReset(t *testing.T) {
	k, c, _, s := boot(t, "")
	errs := execAll(t, k, c, "reset")
	if !errors.Is(errs[0], kernel.ErrNotSupported) {
		t.Fatalf("Exec(reset) without handler = %v, want %v", errs[0], kernel.ErrNotSupported)
	}

	k, c, _, s = boot(t, "")
	resets := 0
	c.SetResetHandler(func() { resets++ })
	errs = execAll(t, k, c, "reset")
	if errs[0] != nil || resets != 1 {
		t.Fatalf("Exec(reset) = %v, resets = %d, want nil, 1", errs[0], resets)
	}
	if !strings.Contains(s.out.String(), "resetting\n") {
		t.Fatalf("output = %q", s.out.String())
	}
}

package console

import (
	"strconv"

	"ember/kernel"
)

func cmdPs(c *Console, args []string) error {
	c.printf("PID NAME STATE\n")
	for _, p := range c.k.Procs() {
		c.printf("%d %s %c\n", p.PID, p.Name, p.Letter())
	}
	return nil
}

var killSwitches = map[string]kernel.Signal{
	"-I": kernel.SIGINT,
	"-C": kernel.SIGCONT,
	"-D": kernel.SIGTERM,
	"-W": kernel.SIGSTOP,
}

func cmdKill(c *Console, args []string) error {
	if len(args) < 3 || len(args[1]) == 0 || args[1][0] != '-' {
		return errUsage
	}
	sig, ok := killSwitches[args[1]]
	if !ok {
		c.printf("Unknown switch: %s\n", args[1])
		return errUsage
	}
	for _, s := range args[2:] {
		pid, err := strconv.Atoi(s)
		if err != nil {
			c.printf("bad pid %q\n", s)
			continue
		}
		res := "ok"
		if err := c.k.Kill(kernel.PID(pid), sig); err != nil {
			res = err.Error()
		}
		c.printf("Sent signal %d to pid %d. Result = %s\n", sig, pid, res)
	}
	return nil
}

func cmdPdump(c *Console, args []string) error {
	if len(args) < 2 || args[1] == "" || args[1][0] == '-' {
		return errUsage
	}
	pid, err := strconv.Atoi(args[1])
	if err != nil {
		return errUsage
	}
	d, err := c.k.Dump(kernel.PID(pid))
	if err != nil {
		c.printf("PID %d not found\n", pid)
		return nil
	}

	owned := ""
	if d.StackOwned {
		owned = " (kernel heap)"
	}
	c.printf("Pdump %s - PID %d gen %d\n\n", d.Name, d.PID, d.Gen)
	c.printf("Fnc = %s ( arg:%d )\n", d.Entry, d.Arg)
	c.printf("Stk = %d bytes%s\n", d.StackSize, owned)
	c.printf("Attr = 0x%X\n", uint16(d.Flags))
	c.printf("NTR  = %d\n", d.Runs)
	c.printf("Time = %d ms (avg %d ms)\n", d.RunMs, d.AvgMs)
	c.printf("Wait Value = %d\n", d.WaitVal)
	c.printf("UI = %d\n", d.UIStream)
	c.printf("Msgs = %d\n", d.Pending)
	c.printf("State = %c (%s)\n", d.Letter(), d.State)
	return nil
}

func cmdSigtest(c *Console, args []string) error {
	if len(args) < 3 {
		return errUsage
	}
	pid, err := strconv.Atoi(args[1])
	if err != nil {
		return errUsage
	}
	sig, err := strconv.Atoi(args[2])
	if err != nil {
		return errUsage
	}
	return c.k.EventSend(kernel.PID(pid), int32(sig))
}

package console

import (
	"strings"

	"ember/kernel"
	"ember/tasks/selftest"
)

func cmdHelp(c *Console, args []string) error {
	names := c.reg.names()
	for i, name := range names {
		c.printf("%s ", name)
		if i%8 == 7 {
			c.printf("\n")
		}
	}
	c.printf("\n")
	return nil
}

func cmdVersion(c *Console, args []string) error {
	c.printVersion()
	return nil
}

func cmdCmdtest(c *Console, args []string) error {
	for i, arg := range args {
		c.printf("argv[%d] = %s\n", i, arg)
	}
	return nil
}

func cmdHalt(c *Console, args []string) error {
	c.printf("halting\n")
	c.k.Shutdown()
	return nil
}

func cmdReset(c *Console, args []string) error {
	if c.resetFn == nil {
		return kernel.ErrNotSupported
	}
	c.printf("resetting\n")
	c.resetFn()
	return nil
}

func cmdTest(c *Console, args []string) error {
	checks := selftest.Checks
	if len(args) > 1 {
		checks = nil
		for _, name := range args[1:] {
			for _, chk := range selftest.Checks {
				if strings.EqualFold(chk.Name, name) {
					checks = append(checks, chk)
				}
			}
		}
	}
	return selftest.Run(c.k, c.k.Stdout(), checks)
}

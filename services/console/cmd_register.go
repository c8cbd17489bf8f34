package console

func (c *Console) registerBuiltins() error {
	for _, cmd := range []Command{
		{Name: "help", Aliases: []string{"ls"}, Usage: "help", Desc: "List commands.", Run: cmdHelp},
		{Name: "version", Usage: "version", Desc: "Show the build banner.", Run: cmdVersion},
		{Name: "cmdtest", Usage: "cmdtest [args...]", Desc: "Print the parsed arguments.", Run: cmdCmdtest},
		{Name: "halt", Usage: "halt", Desc: "Stop the scheduler.", Run: cmdHalt},
		{Name: "reset", Usage: "reset", Desc: "Reboot the kernel.", Run: cmdReset},
		{Name: "test", Usage: "test", Desc: "Run the kernel self test.", Run: cmdTest},

		{Name: "ps", Aliases: []string{"top"}, Usage: "ps", Desc: "List threads.", Run: cmdPs},
		{Name: "kill", Usage: "kill [-C|D|W|I] <pid pid...>", Desc: "Signal threads.", Run: cmdKill},
		{Name: "pdump", Usage: "pdump <pid>", Desc: "Dump a thread.", Run: cmdPdump},
		{Name: "sigtest", Usage: "sigtest <pid> <signal>", Desc: "Send an event to a thread.", Run: cmdSigtest},

		{Name: "free", Usage: "free", Desc: "Show heap usage.", Run: cmdFree},
		{Name: "mem", Usage: "mem", Desc: "Walk the heap free lists.", Run: cmdMem},

		{Name: "drivers", Usage: "drivers", Desc: "List drivers.", Run: cmdDrivers},
		{Name: "fds", Usage: "fds", Desc: "List open descriptors.", Run: cmdFds},

		{Name: "msg", Usage: "msg <words...>", Desc: "Send words to the print server.", Run: cmdMsg},
	} {
		if err := c.reg.register(cmd); err != nil {
			return err
		}
	}
	return nil
}

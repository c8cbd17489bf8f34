package console

func cmdDrivers(c *Console, args []string) error {
	c.printf("DRV# Name Table\n============\n")
	for i, d := range c.k.Drivers() {
		c.printf("%d %s %s\n", i, d.Name, d.Can)
	}
	return nil
}

func cmdFds(c *Console, args []string) error {
	c.printf("FD# Name Data\n============\n")
	for _, f := range c.k.Files() {
		state := "-"
		if f.State != nil {
			state = "set"
		}
		c.printf("%d %s %s\n", f.FD, f.Driver, state)
	}
	return nil
}

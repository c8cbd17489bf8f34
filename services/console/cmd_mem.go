package console

import "ember/kernel"

func cmdFree(c *Console, args []string) error {
	for id := kernel.HeapID(0); id < kernel.NumHeaps; id++ {
		size, err := c.k.HeapSize(id)
		if err != nil {
			continue
		}
		free, _ := c.k.BytesFree(id)
		c.printf("Mem[%d]: Total=%d  Free=%d\n", id, size, free)
	}
	return nil
}

func cmdMem(c *Console, args []string) error {
	for id := kernel.HeapID(0); id < kernel.NumHeaps; id++ {
		blocks, err := c.k.Blocks(id)
		if err != nil {
			continue
		}
		c.printf("Memory %d (%s)\n", id, id)
		for _, b := range blocks {
			c.printf("p 0x%X - z %d\n", b.Offset, b.Size)
		}
	}
	return nil
}

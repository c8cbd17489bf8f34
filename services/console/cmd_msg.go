package console

import (
	"fmt"

	"ember/kernel"
)

func cmdMsg(c *Console, args []string) error {
	if c.msgPID == kernel.NoPID {
		return fmt.Errorf("print server not running")
	}
	c.printf(" - - Msg test [WORKER] - - \n")
	for i := len(args) - 1; i >= 0; i-- {
		m := kernel.Message{Tag: 1, Payload: args[i]}
		if err := c.k.MsgSend(c.msgPID, &m); err != nil {
			return err
		}
	}
	return nil
}

// msgPrintServer prints every message it receives as ..text.. and replies.
func (c *Console) msgPrintServer(k *kernel.Kernel, arg int) {
	_ = k.SetUIStream(c.fd)
	for {
		var m kernel.Message
		if err := k.MsgRecv(&m); err != nil {
			continue
		}
		k.Printf("..%v..\n", m.Payload)
		_ = k.MsgReply(&m)
	}
}

package kernel

import (
	"fmt"
	"testing"
)

func TestMsgRendezvous(t *testing.T) {
	k, _ := newTestKernel(t)
	var served []PID

	srv := mustStart(t, k, "srv", func(k *Kernel, arg int) {
		for i := 0; i < 2; i++ {
			var m Message
			if err := k.MsgRecv(&m); err != nil {
				t.Errorf("MsgRecv() = %v", err)
				return
			}
			served = append(served, m.Source)
			m.Tag *= 2
			m.Payload = fmt.Sprintf("ack %v", m.Payload)
			if err := k.MsgReply(&m); err != nil {
				t.Errorf("MsgReply() = %v", err)
			}
		}
	}, 0)

	replies := map[PID]Message{}
	client := func(k *Kernel, tag int) {
		m := Message{Tag: int32(tag), Payload: k.Getpid()}
		if err := k.MsgSend(srv, &m); err != nil {
			t.Errorf("MsgSend() = %v", err)
		}
		replies[k.Getpid()] = m
	}
	c1 := mustStart(t, k, "c1", client, 3)
	c2 := mustStart(t, k, "c2", func(k *Kernel, tag int) {
		if n := k.PendingMessages(srv); n != 1 {
			t.Errorf("PendingMessages() = %d, want 1", n)
		}
		client(k, tag)
	}, 5)

	if err := runKernel(t, k); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if fmt.Sprint(served) != fmt.Sprint([]PID{c1, c2}) {
		t.Fatalf("served = %v, want [%d %d]", served, c1, c2)
	}
	if r := replies[c1]; r.Tag != 6 || r.Payload != fmt.Sprintf("ack %d", c1) || r.Source != c1 {
		t.Fatalf("reply to c1 = %+v", r)
	}
	if r := replies[c2]; r.Tag != 10 || r.Payload != fmt.Sprintf("ack %d", c2) {
		t.Fatalf("reply to c2 = %+v", r)
	}
}

func TestMsgSendErrors(t *testing.T) {
	k, _ := newTestKernel(t)
	mustStart(t, k, "sender", func(k *Kernel, arg int) {
		var m Message
		if err := k.MsgSend(k.Getpid(), &m); err != ErrFault {
			t.Errorf("MsgSend(self) = %v, want %v", err, ErrFault)
		}
		if err := k.MsgSend(MaxThreads+1, &m); err != ErrNoProc {
			t.Errorf("MsgSend(bad pid) = %v, want %v", err, ErrNoProc)
		}
		if err := k.MsgSend(30, &m); err != ErrHostDown {
			t.Errorf("MsgSend(dead) = %v, want %v", err, ErrHostDown)
		}
		if err := k.MsgSend(30, nil); err != ErrInvalid {
			t.Errorf("MsgSend(nil) = %v, want %v", err, ErrInvalid)
		}
		if err := k.MsgReply(&m); err != ErrInvalid {
			t.Errorf("MsgReply() without message = %v, want %v", err, ErrInvalid)
		}
	}, 0)

	if err := runKernel(t, k); err != nil {
		t.Fatalf("Run() = %v", err)
	}
}

func TestMsgHostDown(t *testing.T) {
	k, _ := newTestKernel(t)
	srv := mustStart(t, k, "srv", func(k *Kernel, arg int) {
		_ = k.EventWait(1, -1)
	}, 0)

	errs := map[PID]error{}
	client := func(k *Kernel, arg int) {
		m := Message{Tag: 1}
		errs[k.Getpid()] = k.MsgSend(srv, &m)
	}
	c1 := mustStart(t, k, "c1", client, 0)
	c2 := mustStart(t, k, "c2", client, 0)
	mustStart(t, k, "killer", func(k *Kernel, arg int) {
		k.Sleep(5)
		if d, _ := k.Dump(c1); d.Letter() != 'Q' {
			t.Errorf("c1 letter = %c, want Q", d.Letter())
		}
		if d, _ := k.Dump(c2); d.Letter() != 'M' {
			t.Errorf("c2 letter = %c, want M", d.Letter())
		}
		_ = k.Kill(srv, SIGTERM)
	}, 0)

	if err := runKernel(t, k); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	for _, pid := range []PID{c1, c2} {
		if errs[pid] != ErrHostDown {
			t.Fatalf("MsgSend() from %d = %v, want %v", pid, errs[pid], ErrHostDown)
		}
	}
}

func TestMsgReplyToEndedSender(t *testing.T) {
	k, _ := newTestKernel(t)
	var replyErr error
	var client PID
	srv := mustStart(t, k, "srv", func(k *Kernel, arg int) {
		var m Message
		_ = k.MsgRecv(&m)
		_ = k.Kill(client, SIGTERM)
		replyErr = k.MsgReply(&m)
		if n := k.PendingMessages(k.Getpid()); n != 0 {
			t.Errorf("PendingMessages() = %d, want 0", n)
		}
	}, 0)
	client = mustStart(t, k, "client", func(k *Kernel, arg int) {
		var m Message
		_ = k.MsgSend(srv, &m)
		t.Errorf("ended sender resumed")
	}, 0)

	if err := runKernel(t, k); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if replyErr != ErrHostDown {
		t.Fatalf("MsgReply() = %v, want %v", replyErr, ErrHostDown)
	}
}

package kernel

// Message is a synchronous IPC envelope. Source is filled in by MsgSend.
type Message struct {
	Source  PID
	Tag     int32
	Payload any
}

// MsgSend delivers m to dest and blocks until dest replies. The reply's Tag
// and Payload are copied back into m. A second sender to the same
// destination blocks until the first has been answered.
func (k *Kernel) MsgSend(dest PID, m *Message) error {
	if m == nil {
		return ErrInvalid
	}
	p := k.self()
	if dest == p.pid {
		return ErrFault
	}
	srv, ok := k.lookup(dest)
	if !ok {
		return ErrNoProc
	}
	if srv.dead() {
		return ErrHostDown
	}
	gen := srv.gen

	if err := srv.port.send.Wait(); err != nil {
		return err
	}
	if srv.gen != gen || srv.dead() {
		return ErrHostDown
	}

	m.Source = p.pid
	srv.port.sent = m
	p.port.peer = dest
	p.port.peerGen = gen
	p.port.replied = false
	p.port.replyErr = nil
	_ = srv.port.recv.Post()

	for !p.port.replied {
		p.state = StateMsgReply
		_ = k.Yield()
	}
	p.port.peer = NoPID
	return p.port.replyErr
}

// MsgRecv blocks until a message arrives and copies it into m.
func (k *Kernel) MsgRecv(m *Message) error {
	if m == nil {
		return ErrInvalid
	}
	p := k.self()
	if err := p.port.recv.Wait(); err != nil {
		return err
	}
	*m = *p.port.sent
	return nil
}

// MsgReply answers the message last received by the calling thread with
// m's Tag and Payload, wakes the sender and yields.
func (k *Kernel) MsgReply(m *Message) error {
	if m == nil {
		return ErrInvalid
	}
	p := k.self()
	sent := p.port.sent
	if sent == nil {
		return ErrInvalid
	}

	var err error
	src, ok := k.lookup(m.Source)
	switch {
	case !ok:
		err = ErrNoProc
	case src.dead() || src.port.replied || src.port.peer != p.pid || src.port.peerGen != p.gen:
		err = ErrHostDown
	default:
		sent.Tag = m.Tag
		sent.Payload = m.Payload
		src.port.replied = true
		src.state = StateRunning
	}

	p.port.sent = nil
	_ = p.port.send.Post()
	_ = k.Yield()
	return err
}

// PendingMessages reports how many senders hold or wait for pid's send
// permit.
func (k *Kernel) PendingMessages(pid PID) int {
	p, ok := k.lookup(pid)
	if !ok || p.dead() {
		return 0
	}
	return int(1 - p.port.send.Value())
}

// failPeers releases every thread blocked on a rendezvous with p.
func (k *Kernel) failPeers(p *PCB) {
	for p.port.send.Waiting() > 0 {
		_ = p.port.send.Post()
	}
	for i := range k.pcbs {
		q := &k.pcbs[i]
		if q.dead() || q.port.replied || q.port.peer != p.pid || q.port.peerGen != p.gen {
			continue
		}
		q.port.replied = true
		q.port.replyErr = ErrHostDown
		q.state = StateRunning
	}
}

package kernel

// waitQueue is an intrusive FIFO of PCBs linked through semNext.
type waitQueue struct {
	head, tail *PCB
	n          int
}

func (q *waitQueue) push(p *PCB) {
	p.semNext = nil
	if q.tail == nil {
		q.head = p
	} else {
		q.tail.semNext = p
	}
	q.tail = p
	q.n++
}

func (q *waitQueue) pop() *PCB {
	p := q.head
	if p == nil {
		return nil
	}
	q.head = p.semNext
	if q.head == nil {
		q.tail = nil
	}
	p.semNext = nil
	q.n--
	return p
}

func (q *waitQueue) remove(p *PCB) bool {
	var prev *PCB
	for cur := q.head; cur != nil; prev, cur = cur, cur.semNext {
		if cur != p {
			continue
		}
		if prev == nil {
			q.head = cur.semNext
		} else {
			prev.semNext = cur.semNext
		}
		if q.tail == cur {
			q.tail = prev
		}
		cur.semNext = nil
		q.n--
		return true
	}
	return false
}

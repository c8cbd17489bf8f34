package kernel

// Semaphore is a counting semaphore with a FIFO wait queue.
//
// A negative value is the number of queued waiters. Waiters are woken one
// per Post in arrival order.
type Semaphore struct {
	k     *Kernel
	value int32
	q     waitQueue
}

// Init binds the semaphore to a kernel with an initial value. A semaphore
// can only be initialized again after Reset.
func (s *Semaphore) Init(k *Kernel, value int32) error {
	if s == nil || k == nil || value < 0 {
		return ErrInvalid
	}
	if s.k != nil {
		return ErrAccess
	}
	s.k = k
	s.value = value
	s.q = waitQueue{}
	return nil
}

// Reset returns the semaphore to its uninitialized state.
func (s *Semaphore) Reset() error {
	if s == nil {
		return ErrInvalid
	}
	if s.q.n > 0 {
		return ErrBusy
	}
	*s = Semaphore{}
	return nil
}

// Destroy is not supported; use Reset.
func (s *Semaphore) Destroy() error {
	return ErrNotSupported
}

// Value returns the current count.
func (s *Semaphore) Value() int32 {
	if s == nil {
		return 0
	}
	return s.value
}

// Waiting returns the number of queued waiters.
func (s *Semaphore) Waiting() int {
	if s == nil {
		return 0
	}
	return s.q.n
}

// Wait decrements the count, blocking the calling thread while it is
// negative. Signals delivered while blocked are serviced and the wait resumes.
func (s *Semaphore) Wait() error {
	if s == nil || s.k == nil {
		return ErrInvalid
	}
	k := s.k

	mask := k.disable()
	s.value--
	if s.value >= 0 {
		k.restore(mask)
		return nil
	}
	p := k.current
	if p == nil {
		s.value++
		k.restore(mask)
		return ErrWouldBlock
	}
	p.semGranted = false
	p.semOn = s
	s.q.push(p)
	p.state = StateSemWait
	k.restore(mask)

	for !p.semGranted {
		_ = k.Yield()
		if !p.semGranted && p.state == StateRunning {
			p.state = StateSemWait
		}
	}
	return nil
}

// TryWait decrements the count only if that would not block.
func (s *Semaphore) TryWait() error {
	if s == nil || s.k == nil {
		return ErrInvalid
	}
	mask := s.k.disable()
	defer s.k.restore(mask)
	if s.value <= 0 {
		return ErrWouldBlock
	}
	s.value--
	return nil
}

// Post increments the count and wakes the longest waiting thread, if any.
func (s *Semaphore) Post() error {
	if s == nil || s.k == nil {
		return ErrInvalid
	}
	k := s.k
	mask := k.disable()
	defer k.restore(mask)

	if s.value >= SemValueMax {
		return ErrRange
	}
	s.value++
	if s.value <= 0 {
		if p := s.q.pop(); p != nil {
			p.semOn = nil
			p.semGranted = true
			p.state = StateRunning
		}
	}
	return nil
}

// unlink drops a thread that ended while queued and gives back its count.
func (s *Semaphore) unlink(p *PCB) {
	if s.q.remove(p) {
		s.value++
	}
	p.semOn = nil
}

// Mutex is a semaphore initialized to one.
type Mutex struct {
	sem Semaphore
}

// Init binds the mutex to k, unlocked.
func (m *Mutex) Init(k *Kernel) error {
	if m == nil {
		return ErrInvalid
	}
	return m.sem.Init(k, 1)
}

// Lock blocks until the mutex is free. Waiters acquire it in FIFO order.
func (m *Mutex) Lock() error { return m.sem.Wait() }

// TryLock takes the mutex if it is free and returns ErrWouldBlock otherwise.
func (m *Mutex) TryLock() error { return m.sem.TryWait() }

// Unlock releases the mutex and wakes the longest waiting thread.
func (m *Mutex) Unlock() error { return m.sem.Post() }

// Reset returns the mutex to its uninitialized state.
func (m *Mutex) Reset() error { return m.sem.Reset() }

// Destroy is not supported; use Reset.
func (m *Mutex) Destroy() error { return m.sem.Destroy() }

// WaitGroup waits for a fixed number of Done calls.
type WaitGroup struct {
	sem   Semaphore
	count int
}

// Init prepares the group to wait for count Done calls.
func (wg *WaitGroup) Init(k *Kernel, count int) error {
	if wg == nil || count < 0 {
		return ErrInvalid
	}
	if err := wg.sem.Init(k, 0); err != nil {
		return err
	}
	wg.count = count
	return nil
}

// Done marks one member of the group finished.
func (wg *WaitGroup) Done() error { return wg.sem.Post() }

// Wait blocks until every member has called Done.
func (wg *WaitGroup) Wait() error {
	for i := 0; i < wg.count; i++ {
		if err := wg.sem.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// Reset returns the group to its uninitialized state.
func (wg *WaitGroup) Reset() error {
	if err := wg.sem.Reset(); err != nil {
		return err
	}
	wg.count = 0
	return nil
}

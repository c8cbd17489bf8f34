package kernel

// ProcInfo is one row of a process listing.
type ProcInfo struct {
	PID   PID
	Name  string
	State RunState
	Flags Flags
}

// Letter returns the listing code: H for halted threads, otherwise the
// run state letter.
func (p ProcInfo) Letter() byte {
	if p.Flags&FlagHalted != 0 {
		return 'H'
	}
	return p.State.Letter()
}

// Procs lists the live threads in slot order.
func (k *Kernel) Procs() []ProcInfo {
	var out []ProcInfo
	for i := range k.pcbs {
		p := &k.pcbs[i]
		if p.dead() {
			continue
		}
		out = append(out, ProcInfo{PID: p.pid, Name: p.name, State: p.state, Flags: p.flags})
	}
	return out
}

// ProcDump is the full state of one thread.
type ProcDump struct {
	ProcInfo
	Gen        uint32
	Entry      string
	Arg        int
	StackSize  int
	StackOwned bool
	WaitVal    uint32
	UIStream   FD
	Runs       uint32
	RunMs      uint64
	AvgMs      uint64
	SleepAt    uint64
	AlarmAt    uint64
	Pending    int
}

// Dump returns the state of a live thread.
func (k *Kernel) Dump(pid PID) (ProcDump, error) {
	p, ok := k.lookup(pid)
	if !ok {
		return ProcDump{}, ErrRange
	}
	if p.dead() {
		return ProcDump{}, ErrNoProc
	}
	d := ProcDump{
		ProcInfo:   ProcInfo{PID: p.pid, Name: p.name, State: p.state, Flags: p.flags},
		Gen:        p.gen,
		Entry:      p.entryName,
		Arg:        p.arg,
		StackSize:  p.stackSize,
		StackOwned: p.flags&FlagStackOwned != 0,
		WaitVal:    p.waitVal,
		UIStream:   p.uistream,
		Runs:       p.runs,
		RunMs:      p.runMs,
		SleepAt:    p.sleepAt,
		AlarmAt:    p.alarmAt,
		Pending:    k.PendingMessages(pid),
	}
	if p.runs > 0 {
		d.AvgMs = p.runMs / uint64(p.runs)
	}
	return d, nil
}

package kernel

import "math"

const (
	MaxThreads     = 64
	MaxThreadName  = 8
	MinStackSize   = 16 * 1024
	MaxDescriptors = 64
	MaxDrivers     = 10
	CmdlineSize    = 128

	// Driver names are the first maxDriverName bytes of the device name
	// followed by at most maxDriverMinor decimal digits.
	maxDriverName  = 3
	maxDriverMinor = 2

	SemValueMax = math.MaxInt32

	// idleMaxMs caps how long the scheduler sleeps when nothing is runnable.
	idleMaxMs = 10
)

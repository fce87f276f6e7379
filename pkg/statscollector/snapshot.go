package statscollector

// Snapshot is a point-in-time copy of a thread's cumulative accounting fields.
type Snapshot struct {
	TID  int
	Name string

	// CPU time in clock ticks
	UserTicks uint64
	SysTicks  uint64

	// IOWaitTicks is nil when the kernel does not provide block IO delay accounting.
	IOWaitTicks *uint64

	MajorFaults uint64
	MinorFaults uint64
}

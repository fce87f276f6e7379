package statscollector

import (
	"emperror.dev/errors"
)

// ErrIOAccountingUnavailable is returned when a snapshot carries no IO-wait ticks.
const ErrIOAccountingUnavailable = errors.Sentinel("blkio delay accounting unavailable")

// ThreadStats holds the running-mean counters of a single registry entry.
type ThreadStats struct {
	Name        string
	UserTime    Counter
	SysTime     Counter
	IOTime      Counter
	MajorFaults Counter
	MinorFaults Counter

	mode Mode
	seen map[int]struct{}
	// last raw snapshot per thread id, only used in delta mode
	previous map[int]Snapshot
}

func newThreadStats(name string, mode Mode) *ThreadStats {
	return &ThreadStats{
		Name:     name,
		mode:     mode,
		seen:     make(map[int]struct{}),
		previous: make(map[int]Snapshot),
	}
}

// Threads returns the number of distinct thread ids folded into these stats.
func (ts *ThreadStats) Threads() int {
	return len(ts.seen)
}

// UpdateFromSnapshot feeds one snapshot into all five counters. System and
// user time are sampled before the IO-wait field is checked, so when
// ErrIOAccountingUnavailable is returned those two counters have already been
// updated while the fault counters have not.
func (ts *ThreadStats) UpdateFromSnapshot(s Snapshot) error {
	if ts.seen == nil {
		ts.seen = make(map[int]struct{})
	}
	ts.seen[s.TID] = struct{}{}

	if ts.mode == ModeDelta {
		return ts.updateDelta(s)
	}

	ts.SysTime.Sample(s.SysTicks)
	ts.UserTime.Sample(s.UserTicks)
	if s.IOWaitTicks == nil {
		return ioAccountingError(s)
	}
	ts.IOTime.Sample(*s.IOWaitTicks)
	ts.MajorFaults.Sample(s.MajorFaults)
	ts.MinorFaults.Sample(s.MinorFaults)
	return nil
}

func (ts *ThreadStats) updateDelta(s Snapshot) error {
	if ts.previous == nil {
		ts.previous = make(map[int]Snapshot)
	}

	prev, seen := ts.previous[s.TID]
	if !seen {
		// First sight of this thread only sets the baseline.
		if s.IOWaitTicks == nil {
			return ioAccountingError(s)
		}
		ts.previous[s.TID] = s
		return nil
	}

	ts.SysTime.Sample(delta(prev.SysTicks, s.SysTicks))
	ts.UserTime.Sample(delta(prev.UserTicks, s.UserTicks))
	if s.IOWaitTicks == nil || prev.IOWaitTicks == nil {
		return ioAccountingError(s)
	}
	ts.IOTime.Sample(delta(*prev.IOWaitTicks, *s.IOWaitTicks))
	ts.MajorFaults.Sample(delta(prev.MajorFaults, s.MajorFaults))
	ts.MinorFaults.Sample(delta(prev.MinorFaults, s.MinorFaults))

	ts.previous[s.TID] = s
	return nil
}

// delta saturates at zero when a counter went backwards (tid reuse).
func delta(prev, cur uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

func ioAccountingError(s Snapshot) error {
	return errors.WithDetails(ErrIOAccountingUnavailable, "thread", s.Name, "tid", s.TID)
}

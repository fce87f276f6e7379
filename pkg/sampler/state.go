package sampler

type State int

const (
	StateInit State = iota
	StateSampling
	StateStoppedByBoundary
	StateStoppedByAbsence
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateSampling:
		return "sampling"
	case StateStoppedByBoundary:
		return "stopped-by-boundary"
	case StateStoppedByAbsence:
		return "stopped-by-absence"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateStoppedByBoundary || s == StateStoppedByAbsence || s == StateFailed
}

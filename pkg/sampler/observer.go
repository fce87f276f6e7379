package sampler

// ProgressObserver receives the fraction of the run that is complete, in [0, 1].
type ProgressObserver interface {
	ObserveProgress(fraction float64)
}

// ObserverFunc adapts a function to ProgressObserver.
type ObserverFunc func(fraction float64)

func (f ObserverFunc) ObserveProgress(fraction float64) {
	f(fraction)
}

func completion(remaining float64) float64 {
	return max(0, min(1, 1-remaining))
}

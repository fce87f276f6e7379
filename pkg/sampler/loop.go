package sampler

import (
	"context"
	"fmt"
	"time"

	"emperror.dev/errors"
	log "github.com/sirupsen/logrus"

	"github.com/voluzi/epochstat/pkg/oracle"
	"github.com/voluzi/epochstat/pkg/procstat"
	"github.com/voluzi/epochstat/pkg/statscollector"
)

// ErrThreadEnumeration is returned when the threads of the target process cannot be listed.
const ErrThreadEnumeration = errors.Sentinel("failed to enumerate threads")

// ThreadSource lists the threads of the target process and reads their stats.
type ThreadSource interface {
	Threads(ctx context.Context) ([]int, error)
	Snapshot(ctx context.Context, tid int) (statscollector.Snapshot, error)
}

// Result describes how a run ended.
type Result struct {
	State      State
	Start      float64
	EndPoint   float64
	Progress   float64
	Iterations int

	// Collector is only set when the run stopped at the boundary.
	Collector *statscollector.Collector
}

// Loop samples thread stats until the oracle reports progress past the end point.
type Loop struct {
	oracle    oracle.Oracle
	source    ThreadSource
	opts      *Options
	collector *statscollector.Collector

	state    State
	start    float64
	endPoint float64
	progress float64
}

func New(o oracle.Oracle, source ThreadSource, opts ...Option) *Loop {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Loop{
		oracle:    o,
		source:    source,
		opts:      options,
		collector: statscollector.NewCollector(options.CollectorOptions...),
		state:     StateInit,
	}
}

// State returns the current state of the loop.
func (l *Loop) State() State {
	return l.state
}

// Run blocks until the loop reaches a terminal state. A nil error is only
// returned when the boundary was reached; the collected stats are discarded
// in every other case.
func (l *Loop) Run(ctx context.Context) (*Result, error) {
	if l.state != StateInit {
		return nil, fmt.Errorf("loop already ran (state %s)", l.state)
	}

	iterations, err := l.run(ctx)
	result := &Result{
		State:      l.state,
		Start:      l.start,
		EndPoint:   l.endPoint,
		Progress:   l.progress,
		Iterations: iterations,
	}
	if err != nil {
		return result, err
	}
	result.Collector = l.collector
	return result, nil
}

func (l *Loop) run(ctx context.Context) (int, error) {
	start, err := l.oracle.Progress(ctx)
	if err != nil {
		return 0, l.fail(errors.WrapIf(err, "failed to get initial progress"))
	}
	l.start = start
	l.progress = start
	l.endPoint = oracle.EndPoint(start)
	l.state = StateSampling

	log.WithFields(map[string]interface{}{
		"start":     l.start,
		"end-point": l.endPoint,
		"interval":  l.opts.Interval,
	}).Info("start sampling")

	iterations := 0
	for {
		if err := ctx.Err(); err != nil {
			return iterations, l.fail(err)
		}

		progress, err := l.oracle.Progress(ctx)
		if err != nil {
			return iterations, l.fail(err)
		}
		l.progress = progress

		remaining := l.endPoint - progress
		if remaining <= 0 {
			l.state = StateStoppedByBoundary
			log.WithFields(map[string]interface{}{
				"progress":   progress,
				"iterations": iterations,
			}).Info("boundary reached")
			return iterations, nil
		}
		if l.opts.Observer != nil {
			l.opts.Observer.ObserveProgress(completion(remaining))
		}

		if err := l.sample(ctx); err != nil {
			if errors.Is(err, procstat.ErrProcessGone) {
				l.state = StateStoppedByAbsence
				log.WithField("iterations", iterations).Warn("target process is gone")
				return iterations, err
			}
			return iterations, l.fail(err)
		}
		iterations++

		if err := wait(ctx, l.opts.Interval); err != nil {
			return iterations, l.fail(err)
		}
	}
}

func (l *Loop) sample(ctx context.Context) error {
	tids, err := l.source.Threads(ctx)
	if err != nil {
		if errors.Is(err, procstat.ErrProcessGone) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrThreadEnumeration, err)
	}

	log.WithField("threads", len(tids)).Trace("sampling threads")
	for _, tid := range tids {
		snapshot, err := l.source.Snapshot(ctx, tid)
		if err != nil {
			return err
		}
		if err := l.collector.Observe(snapshot.Name, snapshot); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) fail(err error) error {
	l.state = StateFailed
	return err
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

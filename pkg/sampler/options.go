package sampler

import (
	"time"

	"github.com/voluzi/epochstat/pkg/statscollector"
)

const DefaultInterval = 400 * time.Millisecond

func defaultOptions() *Options {
	return &Options{
		Interval: 0,
		Observer: nil,
	}
}

type Options struct {
	// Interval is the pause between iterations. Zero polls without delay.
	Interval         time.Duration
	Observer         ProgressObserver
	CollectorOptions []statscollector.Option
}

type Option func(*Options)

func WithInterval(d time.Duration) Option {
	return func(opts *Options) {
		opts.Interval = d
	}
}

func WithObserver(o ProgressObserver) Option {
	return func(opts *Options) {
		opts.Observer = o
	}
}

func WithCollectorOptions(opts ...statscollector.Option) Option {
	return func(o *Options) {
		o.CollectorOptions = append(o.CollectorOptions, opts...)
	}
}
